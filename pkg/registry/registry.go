package registry

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/morezero/salaatflow-assistant/pkg/observability"
)

const logPrefix = "registry:registry"

// NewRegistryParams holds the inputs for NewRegistry.
type NewRegistryParams struct {
	// Required lists the tool names that must be registered before Validate succeeds.
	// Empty means every canonical tool name.
	Required []string
}

// Registry maps tool names to handlers. Registration happens during
// startup; a successful Validate seals it and it is read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	required []string
	sealed   bool
}

// NewRegistry creates an empty, unsealed Registry.
func NewRegistry(params NewRegistryParams) *Registry {
	required := params.Required
	if len(required) == 0 {
		required = AllToolNames()
	}
	req := make([]string, len(required))
	copy(req, required)

	return &Registry{
		tools:    make(map[string]Tool, len(req)),
		required: req,
	}
}

// Register adds or replaces a tool. Replacing an existing name is allowed
// until the registry is sealed and is logged as a warning.
func (r *Registry) Register(t Tool) error {
	if strings.TrimSpace(t.Name) == "" {
		return &RegistryError{Code: CodeInvalidTool, Message: "tool name is required"}
	}
	if t.Handler == nil {
		return &RegistryError{Code: CodeInvalidTool, Message: fmt.Sprintf("tool %s has no handler", t.Name)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &RegistryError{Code: CodeSealed, Message: fmt.Sprintf("cannot register %s after validation", t.Name)}
	}
	if _, exists := r.tools[t.Name]; exists {
		slog.Warn(fmt.Sprintf("%s - Tool %s re-registered, replacing previous handler", logPrefix, t.Name))
	}
	r.tools[t.Name] = t
	slog.Debug(fmt.Sprintf("%s - Registered tool %s (%s)", logPrefix, t.Name, t.Category))
	return nil
}

// MissingTools returns the required names that have no handler, sorted.
func (r *Registry) MissingTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.missingLocked()
}

func (r *Registry) missingLocked() []string {
	var missing []string
	for _, name := range r.required {
		if _, ok := r.tools[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate checks every required name is registered. On success the
// registry is sealed; on failure nothing changes and the caller must not serve.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	missing := r.missingLocked()
	if len(missing) > 0 {
		slog.Error(fmt.Sprintf("%s - Registry validation failed, missing tools: %s", logPrefix, strings.Join(missing, ", ")))
		return &RegistryError{
			Code:    CodeMissingTools,
			Message: fmt.Sprintf("%d required tool(s) not registered: %s", len(missing), strings.Join(missing, ", ")),
			Missing: missing,
		}
	}
	r.sealed = true
	slog.Info(fmt.Sprintf("%s - Registry validated with %d tools (%d required)", logPrefix, len(r.tools), len(r.required)))
	return nil
}

// Validated reports whether Validate has succeeded.
func (r *Registry) Validated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named tool. It never panics: an unknown name yields
// tool_not_found and a panicking handler yields tool_execution_error.
func (r *Registry) Execute(ctx context.Context, name, callerID string, args Args) (res Result) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		slog.ErrorContext(ctx, fmt.Sprintf("%s - Tool %s not registered; startup validation was bypassed", logPrefix, name))
		observability.ToolExecutionsTotal.WithLabelValues(name, string(ErrToolNotFound)).Inc()
		return Fail(ErrToolNotFound, "tool %s is not registered", name)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, fmt.Sprintf("%s - Tool %s panicked: %v", logPrefix, name, p),
				"tool", name, "stack", string(debug.Stack()))
			res = Fail(ErrToolExecution, "tool %s failed unexpectedly", name)
		}
		outcome := "success"
		if !res.Success {
			outcome = string(res.Error)
		}
		observability.ToolExecutionsTotal.WithLabelValues(name, outcome).Inc()
	}()

	slog.DebugContext(ctx, fmt.Sprintf("%s - Executing tool %s", logPrefix, name), "tool", name, "args", fmt.Sprintf("%v", args))

	res = tool.Handler(ctx, callerID, args)
	if !res.Success && res.Error == "" {
		slog.WarnContext(ctx, fmt.Sprintf("%s - Tool %s failed without an error kind", logPrefix, name))
		res.Error = ErrToolExecution
		if res.ErrorMessage == "" {
			res.ErrorMessage = fmt.Sprintf("tool %s failed", name)
		}
	}

	if res.Success {
		slog.InfoContext(ctx, fmt.Sprintf("%s - Tool %s succeeded", logPrefix, name), "tool", name)
	} else {
		slog.WarnContext(ctx, fmt.Sprintf("%s - Tool %s failed: %s: %s", logPrefix, name, res.Error, res.ErrorMessage), "tool", name)
	}
	return res
}
