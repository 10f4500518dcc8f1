// Package events defines the chat completion event and its publishers.
package events

// ChatCompletedEvent is emitted once per handled chat request.
type ChatCompletedEvent struct {
	RequestID  string `json:"requestId"`
	Intent     string `json:"intent"`
	Language   string `json:"language"`
	ToolUsed   string `json:"toolUsed,omitempty"`
	Success    bool   `json:"success"`
	ErrorKind  string `json:"errorKind,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Timestamp  string `json:"timestamp"`
}
