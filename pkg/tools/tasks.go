package tools

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

// Task categories accepted by the backend.
var taskCategories = []string{"Farz", "Sunnah", "Nafl", "Deed", "Other"}

// backendEnum title-cases a value the backend stores as an enum ("high" -> "High").
func backendEnum(v string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(v)))
}

func normalizePriority(v string) (string, bool) {
	p := backendEnum(v)
	switch p {
	case "High", "Medium", "Low":
		return p, true
	default:
		return "", false
	}
}

func normalizeCategory(v string) (string, bool) {
	c := backendEnum(v)
	for _, known := range taskCategories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// taskFields copies the optional writable task fields from args into body.
func taskFields(args registry.Args, body map[string]any) *registry.Result {
	if v, ok := args.String(ArgDescription); ok {
		body["description"] = v
	}
	if v, ok := args.String(ArgPriority); ok {
		p, valid := normalizePriority(v)
		if !valid {
			r := registry.Fail(registry.ErrInvalidRequest, "unknown priority %q", v)
			return &r
		}
		body["priority"] = p
	}
	if v, ok := args.String(ArgCategory); ok {
		c, valid := normalizeCategory(v)
		if !valid {
			r := registry.Fail(registry.ErrInvalidRequest, "unknown category %q", v)
			return &r
		}
		body["category"] = c
	}
	if v, ok := args.String(ArgLinkedPrayer); ok {
		body["linked_prayer"] = backendEnum(v)
	}
	if v, ok := args.String(ArgDueDatetime); ok {
		body["due_datetime"] = v
	}
	return nil
}

func taskID(args registry.Args) (int, *registry.Result) {
	id, ok := args.Int(ArgTaskID)
	if !ok || id <= 0 {
		r := registry.Fail(registry.ErrInvalidRequest, "a task id is required")
		return 0, &r
	}
	return id, nil
}

// CreateTask issues POST /tasks.
func (s *Set) CreateTask(ctx context.Context, callerID string, args registry.Args) registry.Result {
	if r, ok := requireCaller(callerID); !ok {
		return r
	}
	title, ok := args.String(ArgTitle)
	if !ok {
		return registry.Fail(registry.ErrInvalidRequest, "a task title is required")
	}

	body := map[string]any{"title": title, "priority": "Medium", "category": "Other"}
	if r := taskFields(args, body); r != nil {
		return *r
	}
	c := call(registry.ToolCreateTask, 0, callerID)
	c.Body = body
	return s.backend.Do(ctx, c)
}

// ListTasks issues GET /tasks with optional category, priority and completed filters.
func (s *Set) ListTasks(ctx context.Context, callerID string, args registry.Args) registry.Result {
	if r, ok := requireCaller(callerID); !ok {
		return r
	}
	q := url.Values{}
	if v, ok := args.String(ArgCategory); ok {
		if c, valid := normalizeCategory(v); valid {
			q.Set("category", c)
		}
	}
	if v, ok := args.String(ArgPriority); ok {
		if p, valid := normalizePriority(v); valid {
			q.Set("priority", p)
		}
	}
	if v, ok := args.Bool(ArgCompleted); ok {
		q.Set("completed", strconv.FormatBool(v))
	}
	c := call(registry.ToolListTasks, 0, callerID)
	c.Query = q
	return s.backend.Do(ctx, c)
}

// UpdateTask issues PUT /tasks/{id} with the supplied fields.
func (s *Set) UpdateTask(ctx context.Context, callerID string, args registry.Args) registry.Result {
	if r, ok := requireCaller(callerID); !ok {
		return r
	}
	id, errRes := taskID(args)
	if errRes != nil {
		return *errRes
	}

	body := map[string]any{}
	if v, ok := args.String(ArgTitle); ok {
		body["title"] = v
	}
	if r := taskFields(args, body); r != nil {
		return *r
	}
	if v, ok := args.Bool(ArgCompleted); ok {
		body["completed"] = v
	}
	if len(body) == 0 {
		return registry.Fail(registry.ErrInvalidRequest, "nothing to update")
	}
	c := call(registry.ToolUpdateTask, id, callerID)
	c.Body = body
	return s.backend.Do(ctx, c)
}

// DeleteTask issues DELETE /tasks/{id}.
func (s *Set) DeleteTask(ctx context.Context, callerID string, args registry.Args) registry.Result {
	if r, ok := requireCaller(callerID); !ok {
		return r
	}
	id, errRes := taskID(args)
	if errRes != nil {
		return *errRes
	}
	res := s.backend.Do(ctx, call(registry.ToolDeleteTask, id, callerID))
	if res.Success {
		if res.Data == nil {
			res.Data = map[string]any{}
		}
		res.Data["task_id"] = id
		res.Data["deleted"] = true
	}
	return res
}

// CompleteTask issues PATCH /tasks/{id}/complete.
func (s *Set) CompleteTask(ctx context.Context, callerID string, args registry.Args) registry.Result {
	if r, ok := requireCaller(callerID); !ok {
		return r
	}
	id, errRes := taskID(args)
	if errRes != nil {
		return *errRes
	}
	return s.backend.Do(ctx, call(registry.ToolCompleteTask, id, callerID))
}
