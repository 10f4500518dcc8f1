package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/morezero/salaatflow-assistant/internal/config"
	"github.com/morezero/salaatflow-assistant/pkg/backend"
	"github.com/morezero/salaatflow-assistant/pkg/events"
	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/manifest"
	"github.com/morezero/salaatflow-assistant/pkg/orchestrator"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
	"github.com/morezero/salaatflow-assistant/pkg/tools"
)

// Components are the validated pieces the assistant serves with.
type Components struct {
	Manifest     *manifest.Manifest
	Registry     *registry.Registry
	Generator    *genclient.Client
	Orchestrator *orchestrator.Orchestrator
}

// BuildRegistry loads the tool manifest, binds the tool handlers to the
// backend and validates the registry against the manifest's required tools.
// A missing tool is a startup failure.
func BuildRegistry(cfg *config.Config) (*registry.Registry, *manifest.Manifest, error) {
	m, err := manifest.LoadManifest(cfg.ToolManifestFile)
	if err != nil {
		return nil, nil, fmt.Errorf("%s - failed to load tool manifest: %w", logPrefix, err)
	}

	client, err := backend.NewClient(cfg.Backend())
	if err != nil {
		return nil, nil, fmt.Errorf("%s - failed to create backend client: %w", logPrefix, err)
	}

	reg := registry.NewRegistry(registry.NewRegistryParams{Required: m.RequiredTools})
	if err := tools.Register(reg, client, tools.Options{DefaultMasjidID: cfg.DefaultMasjidID}); err != nil {
		return nil, nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s - tool registry failed validation: %w", logPrefix, err)
	}

	checkManifest(reg, m)
	slog.Info(fmt.Sprintf("%s - Tool registry validated: %d tools from manifest %s (%s), backend %s",
		logPrefix, len(reg.Names()), m.Name, m.Source, client.BaseURL()))
	return reg, m, nil
}

// checkManifest reports every place a registered tool disagrees with the
// manifest: a missing spec, a different category, or a backend route the
// handler does not call. Each drift is logged as a warning.
func checkManifest(reg *registry.Registry, m *manifest.Manifest) []string {
	routes := tools.Routes()
	var drift []string
	for _, info := range reg.Describe() {
		spec, ok := m.Spec(info.Name)
		if !ok {
			drift = append(drift, fmt.Sprintf("tool %s is registered but not described by manifest %s", info.Name, m.Name))
			continue
		}
		if spec.Category != string(info.Category) {
			drift = append(drift, fmt.Sprintf("tool %s has category %s, manifest says %s", info.Name, info.Category, spec.Category))
		}
		r, ok := routes[info.Name]
		if !ok {
			continue
		}
		if (spec.Method != "" && !strings.EqualFold(spec.Method, r.Method)) || (spec.Path != "" && spec.Path != r.Path) {
			drift = append(drift, fmt.Sprintf("tool %s calls %s %s, manifest says %s %s", info.Name, r.Method, r.Path, spec.Method, spec.Path))
		}
	}
	for _, d := range drift {
		slog.Warn(fmt.Sprintf("%s - %s", logPrefix, d))
	}
	for cat, names := range reg.ToolsByCategory() {
		slog.Debug(fmt.Sprintf("%s - %s tools: %s", logPrefix, cat, strings.Join(names, ", ")))
	}
	return drift
}

// BuildComponents wires the registry, the generation client and the
// orchestrator. publisher may be nil.
func BuildComponents(ctx context.Context, cfg *config.Config, publisher events.EventPublisher) (*Components, error) {
	reg, m, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := genclient.New(ctx, cfg.Generation())
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create generation client: %w", logPrefix, err)
	}

	orch := orchestrator.New(reg, gen, orchestrator.Options{
		Publisher:    publisher,
		HistoryLimit: cfg.HistoryLimit,
	})

	return &Components{Manifest: m, Registry: reg, Generator: gen, Orchestrator: orch}, nil
}
