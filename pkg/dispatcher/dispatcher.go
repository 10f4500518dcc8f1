package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/salaatflow-assistant/pkg/commsutil"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
	"github.com/morezero/salaatflow-assistant/pkg/orchestrator"
)

const logPrefix = "dispatcher:dispatch"

// ChatHandler answers one chat request.
type ChatHandler interface {
	Handle(ctx context.Context, req orchestrator.ChatRequest) *orchestrator.ChatResponse
}

// Dispatcher routes COMMS requests to the assistant.
type Dispatcher struct {
	chat   ChatHandler
	health HealthChecker
	tools  ToolCatalog
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(chat ChatHandler, health HealthChecker, tools ToolCatalog) *Dispatcher {
	return &Dispatcher{chat: chat, health: health, tools: tools}
}

// Dispatch routes a request to the matching method and returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *AssistantRequest) *AssistantResponse {
	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", logPrefix, req.Method, req.ID))

	switch req.Method {
	case MethodChat:
		return d.handleChat(ctx, req)
	case MethodHealth:
		return d.handleHealth(ctx, req)
	case MethodTools:
		return d.handleTools(req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown method: %s", req.Method), false)
	}
}

func (d *Dispatcher) handleChat(ctx context.Context, req *AssistantRequest) *AssistantResponse {
	if d.chat == nil {
		return errorResponse(req.ID, CodeInternal, "Chat is not available", true)
	}
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidArgument, "Missing chat params", false)
	}
	var input orchestrator.ChatRequest
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, CodeInvalidArgument, "Failed to parse chat params", false)
	}

	if req.Ctx != nil {
		if input.UserID == "" && req.Ctx.UserID != "" {
			input.UserID = orchestrator.Identity(req.Ctx.UserID)
		}
		if input.Language == "" {
			input.Language = req.Ctx.Language
		}
	}
	if id := req.Ctx.correlationID(); id != "" {
		ctx = observability.WithRequestID(ctx, id)
	} else if req.ID != "" {
		ctx = observability.WithRequestID(ctx, req.ID)
	}

	if err := orchestrator.Validate(&input); err != nil {
		slog.WarnContext(ctx, fmt.Sprintf("%s - rejected chat params: %v", logPrefix, err))
		return errorResponse(req.ID, CodeInvalidArgument, strings.TrimPrefix(err.Error(), "orchestrator:types - "), false)
	}

	return &AssistantResponse{ID: req.ID, Ok: true, Result: d.chat.Handle(ctx, input)}
}

func (d *Dispatcher) handleHealth(ctx context.Context, req *AssistantRequest) *AssistantResponse {
	if d.health == nil {
		return errorResponse(req.ID, CodeInternal, "Health check is not available", true)
	}
	return &AssistantResponse{ID: req.ID, Ok: true, Result: CheckHealth(ctx, d.health, d.tools)}
}

func (d *Dispatcher) handleTools(req *AssistantRequest) *AssistantResponse {
	if d.tools == nil {
		return errorResponse(req.ID, CodeInternal, "Tool catalog is not available", true)
	}
	return &AssistantResponse{ID: req.ID, Ok: true, Result: map[string]any{"tools": d.tools.Describe()}}
}

func errorResponse(id, code, message string, retryable bool) *AssistantResponse {
	return &AssistantResponse{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}

// requestTimeout returns the caller's deadline when it is shorter than limit.
func requestTimeout(invCtx *InvocationContext, limit time.Duration) time.Duration {
	if invCtx == nil {
		return limit
	}
	ms := invCtx.DeadlineMs
	if ms <= 0 {
		ms = invCtx.TimeoutMs
	}
	if ms > 0 && time.Duration(ms)*time.Millisecond < limit {
		return time.Duration(ms) * time.Millisecond
	}
	return limit
}

// Subscribe serves the dispatcher on subject until the subscription is drained.
// Each request runs under ctx bounded by timeout or the caller's shorter deadline.
func (d *Dispatcher) Subscribe(ctx context.Context, nc *comms.Conn, subject string, timeout time.Duration) (*comms.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var req AssistantRequest
		if err := commsutil.DecodePayload(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
			d.respond(msg, errorResponse("", CodeInvalidRequest, "Failed to decode request", false))
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout(req.Ctx, timeout))
		defer cancel()

		d.respond(msg, d.Dispatch(reqCtx, &req))
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, subject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, subject))
	return sub, nil
}

func (d *Dispatcher) respond(msg *comms.Msg, resp *AssistantResponse) {
	data, err := commsutil.EncodePayload(resp)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to respond: %v", logPrefix, err))
	}
}
