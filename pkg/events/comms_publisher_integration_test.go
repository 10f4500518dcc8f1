package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"
)

// startTestServer starts an in-process NATS server for testing.
func startTestServer(t *testing.T, port int) (*comms.Conn, func()) {
	t.Helper()

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - failed to create server: %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("events:comms_publisher_integration_test - server failed to start")
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("events:comms_publisher_integration_test - failed to connect: %v", err)
	}

	cleanup := func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	}

	return nc, cleanup
}

func subscribeOnce(t *testing.T, nc *comms.Conn, subject string) (<-chan *ChatCompletedEvent, func()) {
	t.Helper()
	received := make(chan *ChatCompletedEvent, 1)
	sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var event ChatCompletedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		received <- &event
	})
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - failed to subscribe: %v", err)
	}
	return received, func() { sub.Unsubscribe() }
}

func TestCommsPublisher_PublishesToIntentAndGlobalSubjects(t *testing.T) {
	nc, cleanup := startTestServer(t, 14330)
	defer cleanup()

	intentCh, unsubIntent := subscribeOnce(t, nc, "assistant.events.create_task")
	defer unsubIntent()
	globalCh, unsubGlobal := subscribeOnce(t, nc, "assistant.events")
	defer unsubGlobal()

	publisher := NewCommsPublisher(nc, nil)
	event := &ChatCompletedEvent{
		RequestID:  "req-1",
		Intent:     "create_task",
		Language:   "ur",
		ToolUsed:   "create_task",
		Success:    true,
		DurationMs: 12,
		Timestamp:  "2026-01-01T00:00:00Z",
	}
	if err := publisher.PublishChatCompleted(context.Background(), event); err != nil {
		t.Fatalf("events:comms_publisher_integration_test - PublishChatCompleted failed: %v", err)
	}
	nc.Flush()

	for name, ch := range map[string]<-chan *ChatCompletedEvent{"intent": intentCh, "global": globalCh} {
		select {
		case got := <-ch:
			if got.RequestID != "req-1" || got.ToolUsed != "create_task" || !got.Success {
				t.Errorf("events:comms_publisher_integration_test - %s event = %+v", name, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("events:comms_publisher_integration_test - timeout waiting for %s event", name)
		}
	}
}

func TestCommsPublisher_CustomSubject(t *testing.T) {
	nc, cleanup := startTestServer(t, 14331)
	defer cleanup()

	ch, unsub := subscribeOnce(t, nc, "custom.chat.conversation")
	defer unsub()

	publisher := NewCommsPublisher(nc, &CommsPublisherOpts{EventSubject: "custom.chat"})
	err := publisher.PublishChatCompleted(context.Background(), &ChatCompletedEvent{
		RequestID: "req-2",
		Intent:    "conversation",
		Success:   false,
		ErrorKind: "network_error",
	})
	if err != nil {
		t.Fatalf("events:comms_publisher_integration_test - PublishChatCompleted failed: %v", err)
	}
	nc.Flush()

	select {
	case got := <-ch:
		if got.ErrorKind != "network_error" {
			t.Errorf("events:comms_publisher_integration_test - ErrorKind = %q", got.ErrorKind)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events:comms_publisher_integration_test - timeout waiting for custom subject event")
	}
}

func TestCommsPublisher_ClosedConnection(t *testing.T) {
	nc, cleanup := startTestServer(t, 14332)
	defer cleanup()

	publisher := NewCommsPublisher(nc, nil)
	nc.Close()

	if err := publisher.PublishChatCompleted(context.Background(), &ChatCompletedEvent{RequestID: "r", Intent: "list_tasks"}); err == nil {
		t.Error("events:comms_publisher_integration_test - expected error on closed connection")
	}
}
