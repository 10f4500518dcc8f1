// Package registry provides the startup-validated map from tool name to handler.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Canonical tool names.
const (
	ToolCreateTask       = "create_task"
	ToolListTasks        = "list_tasks"
	ToolUpdateTask       = "update_task"
	ToolDeleteTask       = "delete_task"
	ToolCompleteTask     = "complete_task"
	ToolListMasjids      = "list_masjids"
	ToolGetMasjidDetails = "get_masjid_details"
	ToolSearchMasjids    = "search_masjids"
	ToolGetPrayerTimes   = "get_prayer_times"
	ToolGetCurrentPrayer = "get_current_prayer"
	ToolGetDailyHadith   = "get_daily_hadith"
	ToolGetRandomHadith  = "get_random_hadith"
)

// Category groups tools by the backend resource they touch.
type Category string

const (
	CategoryTasks  Category = "task_management"
	CategoryMasjid Category = "masjid"
	CategoryPrayer Category = "prayer"
	CategoryHadith Category = "hadith"
)

// AllToolNames returns the twelve canonical tool names in category order.
func AllToolNames() []string {
	return []string{
		ToolCreateTask, ToolListTasks, ToolUpdateTask, ToolDeleteTask, ToolCompleteTask,
		ToolListMasjids, ToolGetMasjidDetails, ToolSearchMasjids,
		ToolGetPrayerTimes, ToolGetCurrentPrayer,
		ToolGetDailyHadith, ToolGetRandomHadith,
	}
}

// ErrorKind classifies a failed tool result.
type ErrorKind string

const (
	ErrAuthRequired   ErrorKind = "auth_required"
	ErrNotFound       ErrorKind = "not_found"
	ErrInvalidRequest ErrorKind = "invalid_request"
	ErrServerError    ErrorKind = "server_error"
	ErrNetworkError   ErrorKind = "network_error"
	ErrToolNotFound   ErrorKind = "tool_not_found"
	ErrToolExecution  ErrorKind = "tool_execution_error"
)

// Result is the only value a handler may return. A failed Result always
// carries a non-empty Error.
type Result struct {
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data,omitempty"`
	Error        ErrorKind      `json:"error,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StatusCode   int            `json:"-"`
}

// OK returns a successful Result.
func OK(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// Fail returns a failed Result of the given kind.
func Fail(kind ErrorKind, format string, a ...any) Result {
	return Result{Success: false, Error: kind, ErrorMessage: fmt.Sprintf(format, a...)}
}

// Args are the named arguments passed to a handler.
type Args map[string]any

// String returns a trimmed, non-empty string argument.
func (a Args) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case fmt.Stringer:
		s := strings.TrimSpace(v.String())
		return s, s != ""
	default:
		return "", false
	}
}

// Int returns an integer argument, accepting numeric strings and JSON numbers.
func (a Args) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns a boolean argument.
func (a Args) Bool(key string) (bool, bool) {
	switch v := a[key].(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// Handler executes one tool for callerID. callerID is empty for anonymous callers.
type Handler func(ctx context.Context, callerID string, args Args) Result

// Tool is a registered tool descriptor.
type Tool struct {
	Name        string
	Category    Category
	Description string
	Handler     Handler
}

// ToolInfo is the handler-free view of a Tool.
type ToolInfo struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
}

// RegistryError is a structured error from the registry.
type RegistryError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func (e *RegistryError) Error() string {
	return e.Code + ": " + e.Message
}

// Registry error codes.
const (
	CodeMissingTools = "MISSING_TOOLS"
	CodeSealed       = "REGISTRY_SEALED"
	CodeInvalidTool  = "INVALID_TOOL"
)
