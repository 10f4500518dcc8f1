package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request bounds.
const (
	MaxMessageLength = 2000
	MaxHistoryTurns  = 50
	MaxTurnLength    = 8000
)

// Public error kinds carried in ChatResponse.Error.
const (
	KindAuthenticationRequired = "authentication_required"
	KindAuthenticationFailed   = "authentication_failed"
	KindQuotaExceeded          = "quota_exceeded"
	KindNetworkError           = "network_error"
	KindToolNotFound           = "tool_not_found"
	KindToolExecutionError     = "tool_execution_error"
	KindNotFound               = "not_found"
	KindInvalidRequest         = "invalid_request"
	KindServerError            = "server_error"
	KindInternalError          = "internal_error"
)

// Identity is an opaque caller id. It accepts a JSON string or number.
type Identity string

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identity(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("orchestrator:types - user_id must be a string or number")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("orchestrator:types - user_id must be an integer, got %s", n)
	}
	*id = Identity(n.String())
	return nil
}

// String returns the identity as passed to tools.
func (id Identity) String() string {
	return string(id)
}

// Turn is one prior message in the conversation.
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant model"`
	Content string `json:"content" validate:"max=8000"`
}

// ChatRequest is the inbound chat message.
type ChatRequest struct {
	Message  string         `json:"message" validate:"required,max=2000"`
	UserID   Identity       `json:"user_id,omitempty" validate:"max=64"`
	History  []Turn         `json:"conversation_history,omitempty" validate:"max=50,dive"`
	Language string         `json:"language,omitempty" validate:"omitempty,oneof=en ur"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChatResponse is the only shape Handle returns.
type ChatResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Error        *string        `json:"error"`
	ErrorMessage *string        `json:"error_message"`
	ToolUsed     *string        `json:"tool_used"`
	Data         map[string]any `json:"data"`
	RequestID    string         `json:"request_id"`
}

// ErrorKind returns the error kind or "".
func (r *ChatResponse) ErrorKind() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}

// Tool returns the tool used or "".
func (r *ChatResponse) Tool() string {
	if r == nil || r.ToolUsed == nil {
		return ""
	}
	return *r.ToolUsed
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects requests whose shape or size is out of bounds.
func Validate(req *ChatRequest) error {
	if req == nil {
		return fmt.Errorf("orchestrator:types - request is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("orchestrator:types - message must not be blank")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("orchestrator:types - %s failed %q validation", fieldName(fe.Namespace()), fe.Tag())
		}
		return fmt.Errorf("orchestrator:types - invalid request: %w", err)
	}
	return nil
}

// fieldName maps "ChatRequest.History[0].Role" to "History[0].Role".
func fieldName(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func strPtr(s string) *string {
	return &s
}
