package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

const logPrefix = "manifest:loader"

// EnvManifestFile names the environment variable holding a manifest path.
const EnvManifestFile = "TOOL_MANIFEST_FILE"

// SupportedVersions is the manifest version range this build understands.
const SupportedVersions = "^1"

// EmbeddedSource is the Source of the built-in manifest.
const EmbeddedSource = "embedded"

// LoadManifest loads the tool manifest. Paths are tried in order: the ones
// passed in, then TOOL_MANIFEST_FILE, then config/tools.json and tools.json.
// The first readable, valid file is merged over the built-in default; if
// none is found the default is returned.
func LoadManifest(paths ...string) (*Manifest, error) {
	all := make([]string, 0, len(paths)+3)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv(EnvManifestFile); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/tools.json", "tools.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		m, err := Parse(data)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - Skipping manifest file %s: %v", logPrefix, p, err))
			continue
		}

		merged := MergeManifests(GetDefaultManifest(), m)
		merged.Source = p
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("%s - manifest %s is invalid: %w", logPrefix, p, err)
		}
		slog.Info(fmt.Sprintf("%s - Loaded tool manifest %s v%s from %s", logPrefix, merged.Name, merged.Version, p))
		return merged, nil
	}

	slog.Info(fmt.Sprintf("%s - Using embedded tool manifest", logPrefix))
	return GetDefaultManifest(), nil
}

// Parse decodes a manifest document and checks its version.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s - failed to parse manifest: %w", logPrefix, err)
	}
	if err := checkVersion(m.Version); err != nil {
		return nil, err
	}
	return &m, nil
}

func checkVersion(v string) error {
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%s - invalid manifest version %q: %w", logPrefix, v, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("%s - invalid constraint: %w", logPrefix, err)
	}
	if !c.Check(ver) {
		return fmt.Errorf("%s - manifest version %s does not satisfy %s", logPrefix, ver, SupportedVersions)
	}
	return nil
}

// Validate checks that every required tool is described and names a known category.
func (m *Manifest) Validate() error {
	if len(m.RequiredTools) == 0 {
		return fmt.Errorf("%s - manifest lists no required tools", logPrefix)
	}
	for _, name := range m.RequiredTools {
		spec, ok := m.Tools[name]
		if !ok {
			return fmt.Errorf("%s - required tool %s has no entry in tools", logPrefix, name)
		}
		switch registry.Category(spec.Category) {
		case registry.CategoryTasks, registry.CategoryMasjid, registry.CategoryPrayer, registry.CategoryHadith:
		default:
			return fmt.Errorf("%s - tool %s has unknown category %q", logPrefix, name, spec.Category)
		}
	}
	return nil
}

// MergeManifests merges override into base. Required tools are unioned so
// an override can add requirements but never drop the built-in ones.
func MergeManifests(base, override *Manifest) *Manifest {
	merged := *base
	merged.Tools = make(map[string]ToolSpec, len(base.Tools)+len(override.Tools))
	for name, spec := range base.Tools {
		merged.Tools[name] = spec
	}
	for name, spec := range override.Tools {
		merged.Tools[name] = spec
	}

	seen := make(map[string]bool)
	merged.RequiredTools = nil
	for _, list := range [][]string{base.RequiredTools, override.RequiredTools} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				merged.RequiredTools = append(merged.RequiredTools, name)
			}
		}
	}

	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	if override.Description != "" {
		merged.Description = override.Description
	}
	return &merged
}

// ByCategory returns the required tools grouped by category, each group sorted.
func (m *Manifest) ByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, name := range m.RequiredTools {
		c := m.Tools[name].Category
		out[c] = append(out[c], name)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}

// GetDefaultManifest returns the built-in manifest of the twelve tools.
func GetDefaultManifest() *Manifest {
	tasks := string(registry.CategoryTasks)
	masjid := string(registry.CategoryMasjid)
	prayer := string(registry.CategoryPrayer)
	hadith := string(registry.CategoryHadith)

	return &Manifest{
		Name:          "salaatflow-tools",
		Version:       "1.0.0",
		Description:   "Tools the assistant can route intents to",
		RequiredTools: registry.AllToolNames(),
		Tools: map[string]ToolSpec{
			registry.ToolCreateTask:       {Category: tasks, Method: "POST", Path: "/tasks", Description: "Create a spiritual task"},
			registry.ToolListTasks:        {Category: tasks, Method: "GET", Path: "/tasks", Description: "List the caller's tasks with optional filters"},
			registry.ToolUpdateTask:       {Category: tasks, Method: "PUT", Path: "/tasks/{id}", Description: "Update a task"},
			registry.ToolDeleteTask:       {Category: tasks, Method: "DELETE", Path: "/tasks/{id}", Description: "Delete a task"},
			registry.ToolCompleteTask:     {Category: tasks, Method: "PATCH", Path: "/tasks/{id}/complete", Description: "Mark a task completed"},
			registry.ToolListMasjids:      {Category: masjid, Method: "GET", Path: "/masjids", Description: "List masjids, optionally by area or city"},
			registry.ToolGetMasjidDetails: {Category: masjid, Method: "GET", Path: "/masjids/{id}", Description: "Get a masjid with its prayer schedule"},
			registry.ToolSearchMasjids:    {Category: masjid, Method: "GET", Path: "/masjids/search", Description: "Search masjids by name, area or city"},
			registry.ToolGetPrayerTimes:   {Category: prayer, Method: "GET", Path: "/masjids/{id}", Description: "Get the five prayer times and Jummah for a masjid"},
			registry.ToolGetCurrentPrayer: {Category: prayer, Method: "GET", Path: "/masjids/{id}/current-prayer", Description: "Get the next prayer at a masjid"},
			registry.ToolGetDailyHadith:   {Category: hadith, Method: "GET", Path: "/hadith/daily", Description: "Get today's hadith in English and Urdu"},
			registry.ToolGetRandomHadith:  {Category: hadith, Method: "GET", Path: "/hadith/random", Description: "Get a random hadith"},
		},
		Source: EmbeddedSource,
	}
}
