package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectAssistant = "cap.salaatflow.assistant.v1"
	SubjectChatEvent = "assistant.events"
)

// BuildIntentSubject builds the per-intent chat event subject under base.
// An empty base uses SubjectChatEvent.
func BuildIntentSubject(base, intent string) string {
	if base == "" {
		base = SubjectChatEvent
	}
	intent = strings.TrimSpace(intent)
	if intent == "" {
		intent = "unknown"
	}
	return fmt.Sprintf("%s.%s", base, strings.ReplaceAll(intent, ".", "_"))
}

// BuildServiceSubject builds a request/reply subject for a service.
func BuildServiceSubject(app, name string, major int) string {
	safe := strings.ReplaceAll(name, ".", "_")
	return fmt.Sprintf("cap.%s.%s.v%d", app, safe, major)
}
