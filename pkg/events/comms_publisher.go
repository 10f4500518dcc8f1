package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/salaatflow-assistant/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// EventSubject overrides the global chat event subject (ASSISTANT_EVENT_SUBJECT).
	EventSubject string
}

// CommsPublisher publishes chat events to COMMS subjects.
type CommsPublisher struct {
	nc           *comms.Conn
	eventSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	subject := commsutil.SubjectChatEvent
	if opts != nil && opts.EventSubject != "" {
		subject = opts.EventSubject
	}
	return &CommsPublisher{nc: nc, eventSubject: subject}
}

// PublishChatCompleted publishes the event to the per-intent subject and
// the global event subject.
func (p *CommsPublisher) PublishChatCompleted(ctx context.Context, event *ChatCompletedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	intentSubject := commsutil.BuildIntentSubject(p.eventSubject, event.Intent)
	if err := p.nc.Publish(intentSubject, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, intentSubject, err))
		return err
	}

	if err := p.nc.Publish(p.eventSubject, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.eventSubject, err))
		return err
	}

	slog.DebugContext(ctx, fmt.Sprintf("%s - Published chat event for request %s (intent=%s)", commsPublisherLogPrefix, event.RequestID, event.Intent))
	return nil
}
