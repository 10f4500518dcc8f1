// Package orchestrator is the single entry point for chat requests. It
// classifies the utterance, gates identity-requiring intents, then routes
// to a registered tool or to the generation client and assembles the
// public response.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/morezero/salaatflow-assistant/pkg/events"
	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/intent"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
	"github.com/morezero/salaatflow-assistant/pkg/params"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
	"github.com/morezero/salaatflow-assistant/pkg/tools"
)

const logPrefix = "orchestrator:orchestrator"

// DefaultHistoryLimit is the number of trailing turns sent to the generation client.
const DefaultHistoryLimit = 10

// dueLayout is the local datetime format the task backend accepts.
const dueLayout = "2006-01-02T15:04:05"

// Request paths, used as the duration metric label.
const (
	pathRejected   = "rejected"
	pathBlocked    = "blocked"
	pathTool       = "tool"
	pathGeneration = "generation"
)

// ToolExecutor runs a registered tool. *registry.Registry implements it.
type ToolExecutor interface {
	Execute(ctx context.Context, name, callerID string, args registry.Args) registry.Result
}

// Generator produces a conversational reply. *genclient.Client implements it.
type Generator interface {
	Generate(ctx context.Context, req genclient.Request) (string, error)
}

// Options configures an Orchestrator. Zero values use defaults.
type Options struct {
	Classifier   *intent.Classifier
	Publisher    events.EventPublisher
	HistoryLimit int
	Now          func() time.Time
}

// Orchestrator handles chat requests. It keeps no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	tools        ToolExecutor
	gen          Generator
	classifier   *intent.Classifier
	publisher    events.EventPublisher
	historyLimit int
	now          func() time.Time
}

// New returns an Orchestrator routing tool intents to t and conversation to g.
func New(t ToolExecutor, g Generator, opts Options) *Orchestrator {
	o := &Orchestrator{
		tools:        t,
		gen:          g,
		classifier:   opts.Classifier,
		publisher:    opts.Publisher,
		historyLimit: opts.HistoryLimit,
		now:          opts.Now,
	}
	if o.classifier == nil {
		o.classifier = intent.NewClassifier(nil)
	}
	if o.publisher == nil {
		o.publisher = &events.NoOpPublisher{}
	}
	if o.historyLimit <= 0 {
		o.historyLimit = DefaultHistoryLimit
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Classifier returns the classifier in use.
func (o *Orchestrator) Classifier() *intent.Classifier {
	return o.classifier
}

// requestState is local to one Handle call.
type requestState struct {
	requestID string
	intent    string
	language  intent.Language
	path      string
}

// Handle processes one chat request. It always returns a response carrying
// the request's correlation id; failures are reported in the response,
// never as a panic or error.
func (o *Orchestrator) Handle(ctx context.Context, req ChatRequest) (resp *ChatResponse) {
	ctx, requestID := observability.EnsureRequestID(ctx)
	start := time.Now()

	st := &requestState{requestID: requestID, intent: "unknown", language: intent.English, path: pathRejected}
	if lang, ok := intent.ParseLanguage(req.Language); ok {
		st.language = lang
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, fmt.Sprintf("%s - Unexpected panic while handling request: %v", logPrefix, p),
				"stack", string(debug.Stack()))
			resp = o.failure(st, KindInternalError, "", "")
		}
		o.finish(ctx, st, resp, time.Since(start))
	}()

	slog.InfoContext(ctx, fmt.Sprintf("%s - Chat request received", logPrefix),
		"message_length", len(req.Message), "history_turns", len(req.History), "identified", req.UserID != "", "metadata_keys", len(req.Metadata))

	if err := Validate(&req); err != nil {
		slog.WarnContext(ctx, fmt.Sprintf("%s - Rejected request: %v", logPrefix, err))
		return o.failure(st, KindInvalidRequest, strings.TrimPrefix(err.Error(), "orchestrator:types - "), "")
	}

	cls := o.classifier.Classify(req.Message, req.Language)
	st.intent, st.language = string(cls.Intent), cls.Language
	slog.InfoContext(ctx, fmt.Sprintf("%s - Classified as %s (language=%s, rules=%s)", logPrefix, cls.Intent, cls.Language, cls.RulesVersion))

	if cls.Intent.RequiresIdentity() && req.UserID == "" {
		st.path = pathBlocked
		slog.WarnContext(ctx, fmt.Sprintf("%s - %s requires a signed-in user; no identity supplied", logPrefix, cls.Intent))
		return o.failure(st, KindAuthenticationRequired, "", "")
	}

	if cls.Intent == intent.Conversation {
		st.path = pathGeneration
		return o.converse(ctx, st, req)
	}
	st.path = pathTool
	return o.runTool(ctx, st, req, cls.Intent)
}

func (o *Orchestrator) runTool(ctx context.Context, st *requestState, req ChatRequest, in intent.Intent) *ChatResponse {
	p := params.Extract(req.Message, in)
	callerID := req.UserID.String()
	toolName := string(in)
	args := o.buildArgs(in, p)

	slog.DebugContext(ctx, fmt.Sprintf("%s - Extracted parameters for %s: %+v", logPrefix, in, p))

	if in.IsTaskMutation() && !p.HasTaskReference() {
		id, res := o.resolveTask(ctx, callerID, p.Keywords)
		if !res.Success {
			return o.toolFailure(ctx, st, "", res)
		}
		args[tools.ArgTaskID] = id
	}

	res := o.tools.Execute(ctx, toolName, callerID, args)
	if !res.Success {
		return o.toolFailure(ctx, st, toolName, res)
	}

	slog.InfoContext(ctx, fmt.Sprintf("%s - Tool %s succeeded", logPrefix, toolName))
	return &ChatResponse{
		Success:   true,
		Message:   formatReply(toolName, res.Data, st.language),
		ToolUsed:  strPtr(toolName),
		Data:      res.Data,
		RequestID: st.requestID,
	}
}

func (o *Orchestrator) toolFailure(ctx context.Context, st *requestState, toolName string, res registry.Result) *ChatResponse {
	kind := publicKind(res.Error)
	slog.WarnContext(ctx, fmt.Sprintf("%s - Tool %s failed: %s: %s", logPrefix, st.intent, res.Error, res.ErrorMessage),
		"status", res.StatusCode)

	detail := ""
	if kind == KindInvalidRequest {
		detail = res.ErrorMessage
	}
	return o.failure(st, kind, detail, toolName)
}

func (o *Orchestrator) converse(ctx context.Context, st *requestState, req ChatRequest) *ChatResponse {
	if o.gen == nil {
		slog.ErrorContext(ctx, fmt.Sprintf("%s - No generation client configured", logPrefix))
		return o.failure(st, KindInternalError, "", "")
	}

	history := trailingHistory(req.History, o.historyLimit)
	text, err := o.gen.Generate(ctx, genclient.Request{
		Prompt:            req.Message,
		SystemInstruction: systemInstruction(st.language),
		History:           history,
	})
	if err != nil {
		kind := generationKind(err)
		slog.ErrorContext(ctx, fmt.Sprintf("%s - Generation failed: %s: %v", logPrefix, kind, err))
		return o.failure(st, kind, "", "")
	}

	return &ChatResponse{
		Success:   true,
		Message:   text,
		RequestID: st.requestID,
	}
}

func (o *Orchestrator) failure(st *requestState, kind, detail, toolName string) *ChatResponse {
	resp := &ChatResponse{
		Success:      false,
		Error:        strPtr(kind),
		ErrorMessage: strPtr(errorMessage(kind, st.language, st.requestID, detail)),
		RequestID:    st.requestID,
	}
	if toolName != "" {
		resp.ToolUsed = strPtr(toolName)
	}
	return resp
}

// finish records metrics, publishes the completion event and logs the outcome.
func (o *Orchestrator) finish(ctx context.Context, st *requestState, resp *ChatResponse, elapsed time.Duration) {
	outcome := "success"
	if !resp.Success {
		outcome = resp.ErrorKind()
	}
	observability.ChatRequestsTotal.WithLabelValues(st.intent, outcome).Inc()
	observability.ChatRequestDuration.WithLabelValues(st.path).Observe(elapsed.Seconds())

	event := &events.ChatCompletedEvent{
		RequestID:  st.requestID,
		Intent:     st.intent,
		Language:   string(st.language),
		ToolUsed:   resp.Tool(),
		Success:    resp.Success,
		ErrorKind:  resp.ErrorKind(),
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  o.now().UTC().Format(time.RFC3339),
	}
	if err := o.publisher.PublishChatCompleted(ctx, event); err != nil {
		slog.WarnContext(ctx, fmt.Sprintf("%s - Failed to publish chat event: %v", logPrefix, err))
	}

	slog.InfoContext(ctx, fmt.Sprintf("%s - Chat request completed: outcome=%s path=%s duration=%s", logPrefix, outcome, st.path, elapsed.Round(time.Millisecond)))
}

// buildArgs turns extracted slots into tool arguments.
func (o *Orchestrator) buildArgs(in intent.Intent, p params.Params) registry.Args {
	args := registry.Args{}
	set := func(key, v string) {
		if v != "" {
			args[key] = v
		}
	}

	switch in {
	case intent.CreateTask:
		set(tools.ArgTitle, p.Title)
		set(tools.ArgDescription, p.Description)
		set(tools.ArgPriority, p.Priority)
		set(tools.ArgLinkedPrayer, p.LinkedPrayer)
		set(tools.ArgCategory, p.Category)
		set(tools.ArgDueDatetime, dueDatetime(o.now(), p.Time, p.Tomorrow))

	case intent.ListTasks:
		set(tools.ArgPriority, p.Priority)
		set(tools.ArgCategory, p.Category)
		if p.Completed != nil {
			args[tools.ArgCompleted] = *p.Completed
		}

	case intent.UpdateTask, intent.DeleteTask, intent.CompleteTask:
		if p.HasTaskReference() {
			args[tools.ArgTaskID] = p.TaskID
		}
		if in == intent.UpdateTask {
			set(tools.ArgTitle, p.Title)
			set(tools.ArgPriority, p.Priority)
			set(tools.ArgLinkedPrayer, p.LinkedPrayer)
			set(tools.ArgDueDatetime, dueDatetime(o.now(), p.Time, false))
		}

	case intent.GetMasjidDetails, intent.GetPrayerTimes, intent.GetCurrentPrayer:
		if p.MasjidID > 0 {
			args[tools.ArgMasjidID] = p.MasjidID
		}
		if in == intent.GetPrayerTimes {
			set(tools.ArgPrayer, p.LinkedPrayer)
		}

	case intent.ListMasjids, intent.SearchMasjids:
		set(tools.ArgArea, p.Area)
		set(tools.ArgCity, p.City)
		set(tools.ArgName, p.Name)
	}
	return args
}

// dueDatetime places an "HH:MM" clock time on today's date, or tomorrow's.
// It returns "" when no time was given.
func dueDatetime(now time.Time, clock string, tomorrow bool) string {
	if clock == "" {
		return ""
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return ""
	}
	day := now
	if tomorrow {
		day = day.AddDate(0, 0, 1)
	}
	due := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	return due.Format(dueLayout)
}
