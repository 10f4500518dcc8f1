package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morezero/salaatflow-assistant/pkg/backend"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

type fakeBackend struct {
	calls  []backend.Call
	result registry.Result
}

func (f *fakeBackend) Do(ctx context.Context, call backend.Call) registry.Result {
	f.calls = append(f.calls, call)
	if f.result.Success || f.result.Error != "" {
		return f.result
	}
	return registry.OK(map[string]any{})
}

func TestRegister_ValidatesAgainstAllNames(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryParams{})
	if err := Register(reg, &fakeBackend{}, Options{}); err != nil {
		t.Fatalf("tools:tools_test - Register: %v", err)
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("tools:tools_test - Validate: %v", err)
	}
	byCat := reg.ToolsByCategory()
	if len(byCat[registry.CategoryTasks]) != 5 || len(byCat[registry.CategoryMasjid]) != 3 ||
		len(byCat[registry.CategoryPrayer]) != 2 || len(byCat[registry.CategoryHadith]) != 2 {
		t.Errorf("tools:tools_test - categories = %v", byCat)
	}
}

func TestHandlers_BackendContract(t *testing.T) {
	tests := []struct {
		tool   string
		args   registry.Args
		method string
		path   string
	}{
		{registry.ToolCreateTask, registry.Args{ArgTitle: "Fajr"}, http.MethodPost, "/tasks"},
		{registry.ToolListTasks, registry.Args{}, http.MethodGet, "/tasks"},
		{registry.ToolUpdateTask, registry.Args{ArgTaskID: 3, ArgPriority: "high"}, http.MethodPut, "/tasks/3"},
		{registry.ToolDeleteTask, registry.Args{ArgTaskID: "4"}, http.MethodDelete, "/tasks/4"},
		{registry.ToolCompleteTask, registry.Args{ArgTaskID: float64(5)}, http.MethodPatch, "/tasks/5/complete"},
		{registry.ToolListMasjids, registry.Args{}, http.MethodGet, "/masjids"},
		{registry.ToolGetMasjidDetails, registry.Args{ArgMasjidID: 2}, http.MethodGet, "/masjids/2"},
		{registry.ToolSearchMasjids, registry.Args{ArgArea: "DHA"}, http.MethodGet, "/masjids/search"},
		{registry.ToolGetPrayerTimes, registry.Args{ArgMasjidID: 2}, http.MethodGet, "/masjids/2"},
		{registry.ToolGetCurrentPrayer, registry.Args{ArgMasjidID: 2}, http.MethodGet, "/masjids/2/current-prayer"},
		{registry.ToolGetDailyHadith, nil, http.MethodGet, "/hadith/daily"},
		{registry.ToolGetRandomHadith, nil, http.MethodGet, "/hadith/random"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			fb := &fakeBackend{result: registry.OK(map[string]any{"fajr_time": "05:00"})}
			reg := registry.NewRegistry(registry.NewRegistryParams{})
			Register(reg, fb, Options{})

			reg.Execute(context.Background(), tt.tool, "42", tt.args)
			if len(fb.calls) != 1 {
				t.Fatalf("tools:tools_test - %s made %d calls, want 1", tt.tool, len(fb.calls))
			}
			c := fb.calls[0]
			if c.Method != tt.method || c.Path != tt.path {
				t.Errorf("tools:tools_test - %s called %s %s, want %s %s", tt.tool, c.Method, c.Path, tt.method, tt.path)
			}
			if c.CallerID != "42" {
				t.Errorf("tools:tools_test - %s CallerID = %q", tt.tool, c.CallerID)
			}
		})
	}
}

func TestCreateTask_Body(t *testing.T) {
	fb := &fakeBackend{}
	s := New(fb, Options{})
	s.CreateTask(context.Background(), "42", registry.Args{
		ArgTitle: "Fajr", ArgPriority: "high", ArgLinkedPrayer: "fajr", ArgCategory: "farz",
		ArgDescription: "Fajr ka task bana do",
	})

	body := fb.calls[0].Body.(map[string]any)
	want := map[string]any{"title": "Fajr", "priority": "High", "linked_prayer": "Fajr", "category": "Farz", "description": "Fajr ka task bana do"}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("tools:tools_test - body[%s] = %v, want %v", k, body[k], v)
		}
	}

	fb = &fakeBackend{}
	New(fb, Options{}).CreateTask(context.Background(), "42", registry.Args{ArgTitle: "Read"})
	body = fb.calls[0].Body.(map[string]any)
	if body["priority"] != "Medium" || body["category"] != "Other" {
		t.Errorf("tools:tools_test - defaults = %v", body)
	}
}

func TestHandlers_InputValidation(t *testing.T) {
	tests := []struct {
		name string
		call func(s *Set) registry.Result
		kind registry.ErrorKind
	}{
		{"create without caller", func(s *Set) registry.Result {
			return s.CreateTask(context.Background(), "", registry.Args{ArgTitle: "x"})
		}, registry.ErrAuthRequired},
		{"create without title", func(s *Set) registry.Result {
			return s.CreateTask(context.Background(), "1", registry.Args{})
		}, registry.ErrInvalidRequest},
		{"create with bad priority", func(s *Set) registry.Result {
			return s.CreateTask(context.Background(), "1", registry.Args{ArgTitle: "x", ArgPriority: "asap"})
		}, registry.ErrInvalidRequest},
		{"delete without id", func(s *Set) registry.Result {
			return s.DeleteTask(context.Background(), "1", registry.Args{})
		}, registry.ErrInvalidRequest},
		{"update with nothing", func(s *Set) registry.Result {
			return s.UpdateTask(context.Background(), "1", registry.Args{ArgTaskID: 1})
		}, registry.ErrInvalidRequest},
		{"details without masjid", func(s *Set) registry.Result {
			return s.GetMasjidDetails(context.Background(), "", registry.Args{})
		}, registry.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			res := tt.call(New(fb, Options{}))
			if res.Success || res.Error != tt.kind {
				t.Errorf("tools:tools_test - result = %+v, want %s", res, tt.kind)
			}
			if len(fb.calls) != 0 {
				t.Errorf("tools:tools_test - rejected input still reached the backend")
			}
		})
	}
}

func TestListTasks_Filters(t *testing.T) {
	fb := &fakeBackend{}
	New(fb, Options{}).ListTasks(context.Background(), "1", registry.Args{ArgCategory: "farz", ArgPriority: "low", ArgCompleted: false})
	q := fb.calls[0].Query
	if q.Get("category") != "Farz" || q.Get("priority") != "Low" || q.Get("completed") != "false" {
		t.Errorf("tools:tools_test - query = %v", q)
	}
}

func TestDefaultMasjid(t *testing.T) {
	fb := &fakeBackend{}
	New(fb, Options{DefaultMasjidID: 9}).GetCurrentPrayer(context.Background(), "", registry.Args{})
	if len(fb.calls) != 1 || fb.calls[0].Path != "/masjids/9/current-prayer" {
		t.Errorf("tools:tools_test - default masjid not used: %+v", fb.calls)
	}
}

func TestGetPrayerTimes_Reduces(t *testing.T) {
	fb := &fakeBackend{result: registry.OK(map[string]any{
		"id": 2, "name": "Masjid Noor", "area_name": "DHA",
		"fajr_time": "05:15", "dhuhr_time": "13:15", "asr_time": "16:45",
		"maghrib_time": "18:20", "isha_time": "19:45", "jummah_time": nil,
		"address": "Phase 5",
	})}
	res := New(fb, Options{}).GetPrayerTimes(context.Background(), "", registry.Args{ArgMasjidID: 2, ArgPrayer: "maghrib"})
	if !res.Success {
		t.Fatalf("tools:tools_test - result = %+v", res)
	}
	times := res.Data["prayer_times"].(map[string]any)
	if len(times) != 5 || times["Fajr"] != "05:15" {
		t.Errorf("tools:tools_test - prayer_times = %v", times)
	}
	if res.Data["prayer"] != "Maghrib" || res.Data["prayer_time"] != "18:20" {
		t.Errorf("tools:tools_test - selected prayer = %v %v", res.Data["prayer"], res.Data["prayer_time"])
	}
	if _, leaked := res.Data["address"]; leaked {
		t.Error("tools:tools_test - unrelated fields should be dropped")
	}

	fb = &fakeBackend{result: registry.OK(map[string]any{"name": "Empty"})}
	res = New(fb, Options{}).GetPrayerTimes(context.Background(), "", registry.Args{ArgMasjidID: 3})
	if res.Error != registry.ErrNotFound {
		t.Errorf("tools:tools_test - masjid without times = %+v", res)
	}
}

func TestDeleteTask_AnnotatesResult(t *testing.T) {
	fb := &fakeBackend{}
	res := New(fb, Options{}).DeleteTask(context.Background(), "1", registry.Args{ArgTaskID: 8})
	if res.Data["task_id"] != 8 || res.Data["deleted"] != true {
		t.Errorf("tools:tools_test - delete data = %v", res.Data)
	}
}

func TestHandlers_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/tasks/999" && r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Task not found"}`))
			return
		}
		w.Write([]byte(`{"hadith_text_en":"Actions are by intentions","source":"Bukhari"}`))
	}))
	defer srv.Close()

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL + "/api/v1", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	s := New(client, Options{})

	res := s.DeleteTask(context.Background(), "42", registry.Args{ArgTaskID: 999})
	if res.Error != registry.ErrNotFound || res.ErrorMessage != "Task not found" {
		t.Errorf("tools:tools_test - delete #999 = %+v", res)
	}
	res = s.GetDailyHadith(context.Background(), "", nil)
	if !res.Success || res.Data["source"] != "Bukhari" {
		t.Errorf("tools:tools_test - daily hadith = %+v", res)
	}
}

func TestRecords(t *testing.T) {
	data := map[string]any{"tasks": []any{map[string]any{"id": 1}, "junk"}}
	if got := Records(data, "tasks"); len(got) != 1 {
		t.Errorf("tools:tools_test - Records(tasks) = %v", got)
	}
	if got := Records(map[string]any{"items": []any{map[string]any{}}}, "masjids"); len(got) != 1 {
		t.Errorf("tools:tools_test - Records(items) = %v", got)
	}
	if got := Records(map[string]any{}, "tasks"); got != nil {
		t.Errorf("tools:tools_test - Records(empty) = %v", got)
	}
}

func TestRoutes_CoverEveryTool(t *testing.T) {
	routes := Routes()
	for _, tool := range New(&fakeBackend{}, Options{}).Tools() {
		r, ok := routes[tool.Name]
		if !ok || r.Method == "" || !strings.HasPrefix(r.Path, "/") {
			t.Errorf("tools:tools_test - %s has route %+v", tool.Name, r)
		}
	}
	routes[registry.ToolCreateTask] = Route{Method: http.MethodGet, Path: "/changed"}
	if Routes()[registry.ToolCreateTask].Method != http.MethodPost {
		t.Error("tools:tools_test - Routes must return a copy")
	}
}
