// Package tools implements the twelve backend-facing tool handlers.
package tools

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/morezero/salaatflow-assistant/pkg/backend"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

const logPrefix = "tools:tools"

// Argument keys understood by the handlers.
const (
	ArgTitle        = "title"
	ArgDescription  = "description"
	ArgCategory     = "category"
	ArgPriority     = "priority"
	ArgLinkedPrayer = "linked_prayer"
	ArgDueDatetime  = "due_datetime"
	ArgTaskID       = "task_id"
	ArgCompleted    = "completed"
	ArgMasjidID     = "masjid_id"
	ArgArea         = "area"
	ArgCity         = "city"
	ArgName         = "name"
	ArgPrayer       = "prayer"
)

// Doer performs one backend call. *backend.Client implements it.
type Doer interface {
	Do(ctx context.Context, call backend.Call) registry.Result
}

// Options configures the handlers.
type Options struct {
	// DefaultMasjidID is used by masjid lookups that name no masjid; zero means none.
	DefaultMasjidID int
}

// Set holds the handlers bound to one backend.
type Set struct {
	backend Doer
	opts    Options
}

// New returns the handler set for b.
func New(b Doer, opts Options) *Set {
	return &Set{backend: b, opts: opts}
}

// Tools returns the descriptors for all twelve tools.
func (s *Set) Tools() []registry.Tool {
	return []registry.Tool{
		{Name: registry.ToolCreateTask, Category: registry.CategoryTasks, Description: "Create a spiritual task", Handler: s.CreateTask},
		{Name: registry.ToolListTasks, Category: registry.CategoryTasks, Description: "List the caller's tasks", Handler: s.ListTasks},
		{Name: registry.ToolUpdateTask, Category: registry.CategoryTasks, Description: "Update a task", Handler: s.UpdateTask},
		{Name: registry.ToolDeleteTask, Category: registry.CategoryTasks, Description: "Delete a task", Handler: s.DeleteTask},
		{Name: registry.ToolCompleteTask, Category: registry.CategoryTasks, Description: "Mark a task completed", Handler: s.CompleteTask},
		{Name: registry.ToolListMasjids, Category: registry.CategoryMasjid, Description: "List masjids", Handler: s.ListMasjids},
		{Name: registry.ToolGetMasjidDetails, Category: registry.CategoryMasjid, Description: "Get masjid details", Handler: s.GetMasjidDetails},
		{Name: registry.ToolSearchMasjids, Category: registry.CategoryMasjid, Description: "Search masjids by name, area or city", Handler: s.SearchMasjids},
		{Name: registry.ToolGetPrayerTimes, Category: registry.CategoryPrayer, Description: "Get prayer times for a masjid", Handler: s.GetPrayerTimes},
		{Name: registry.ToolGetCurrentPrayer, Category: registry.CategoryPrayer, Description: "Get the next prayer at a masjid", Handler: s.GetCurrentPrayer},
		{Name: registry.ToolGetDailyHadith, Category: registry.CategoryHadith, Description: "Get today's hadith", Handler: s.GetDailyHadith},
		{Name: registry.ToolGetRandomHadith, Category: registry.CategoryHadith, Description: "Get a random hadith", Handler: s.GetRandomHadith},
	}
}

// Route is the backend endpoint a tool calls. Path may hold an {id} placeholder.
type Route struct {
	Method string
	Path   string
}

var routes = map[string]Route{
	registry.ToolCreateTask:       {http.MethodPost, "/tasks"},
	registry.ToolListTasks:        {http.MethodGet, "/tasks"},
	registry.ToolUpdateTask:       {http.MethodPut, "/tasks/{id}"},
	registry.ToolDeleteTask:       {http.MethodDelete, "/tasks/{id}"},
	registry.ToolCompleteTask:     {http.MethodPatch, "/tasks/{id}/complete"},
	registry.ToolListMasjids:      {http.MethodGet, "/masjids"},
	registry.ToolGetMasjidDetails: {http.MethodGet, "/masjids/{id}"},
	registry.ToolSearchMasjids:    {http.MethodGet, "/masjids/search"},
	registry.ToolGetPrayerTimes:   {http.MethodGet, "/masjids/{id}"},
	registry.ToolGetCurrentPrayer: {http.MethodGet, "/masjids/{id}/current-prayer"},
	registry.ToolGetDailyHadith:   {http.MethodGet, "/hadith/daily"},
	registry.ToolGetRandomHadith:  {http.MethodGet, "/hadith/random"},
}

// Routes returns a copy of the route table keyed by tool name.
func Routes() map[string]Route {
	out := make(map[string]Route, len(routes))
	for k, v := range routes {
		out[k] = v
	}
	return out
}

// call builds the backend call for tool, filling the {id} placeholder with id.
func call(tool string, id int, callerID string) backend.Call {
	r := routes[tool]
	return backend.Call{
		Method:   r.Method,
		Path:     strings.Replace(r.Path, "{id}", strconv.Itoa(id), 1),
		CallerID: callerID,
	}
}

// Register adds every tool in the set to reg.
func Register(reg *registry.Registry, b Doer, opts Options) error {
	for _, t := range New(b, opts).Tools() {
		if err := reg.Register(t); err != nil {
			return fmt.Errorf("%s - failed to register %s: %w", logPrefix, t.Name, err)
		}
	}
	return nil
}

func requireCaller(callerID string) (registry.Result, bool) {
	if callerID == "" {
		return registry.Fail(registry.ErrAuthRequired, "a signed-in user is required"), false
	}
	return registry.Result{}, true
}
