package events

import "context"

// EventPublisher publishes chat completion events.
type EventPublisher interface {
	PublishChatCompleted(ctx context.Context, event *ChatCompletedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (used when COMMS is disabled).
type NoOpPublisher struct{}

// PublishChatCompleted is a no-op.
func (p *NoOpPublisher) PublishChatCompleted(_ context.Context, _ *ChatCompletedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *ChatCompletedEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *ChatCompletedEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishChatCompleted calls the callback.
func (p *CallbackPublisher) PublishChatCompleted(ctx context.Context, event *ChatCompletedEvent) error {
	return p.callback(ctx, event)
}
