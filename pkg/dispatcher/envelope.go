// Package dispatcher routes incoming COMMS messages to the assistant.
package dispatcher

import "encoding/json"

// Methods served on the assistant subject.
const (
	MethodChat   = "chat"
	MethodHealth = "health"
	MethodTools  = "tools"
)

// Error codes carried in ErrorDetail.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeMethodNotFound  = "METHOD_NOT_FOUND"
	CodeInternal        = "INTERNAL"
)

// AssistantRequest is the JSON envelope for incoming COMMS assistant requests.
type AssistantRequest struct {
	ID     string             `json:"id"`
	Type   string             `json:"type"`
	Cap    string             `json:"cap"`
	Method string             `json:"method"`
	Params json.RawMessage    `json:"params"`
	Ctx    *InvocationContext `json:"ctx,omitempty"`
}

// AssistantResponse is the JSON envelope for COMMS assistant responses.
type AssistantResponse struct {
	ID     string       `json:"id"`
	Ok     bool         `json:"ok"`
	Result any          `json:"result,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

// InvocationContext holds context from the caller. UserID and Language fill
// the matching chat fields when the params leave them empty.
type InvocationContext struct {
	UserID        string `json:"userId,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	Language      string `json:"language,omitempty"`
	DeadlineMs    int    `json:"deadlineMs,omitempty"`
	TimeoutMs     int    `json:"timeoutMs,omitempty"`
}

// correlationID prefers the request id over the correlation id.
func (c *InvocationContext) correlationID() string {
	if c == nil {
		return ""
	}
	if c.RequestID != "" {
		return c.RequestID
	}
	return c.CorrelationID
}
