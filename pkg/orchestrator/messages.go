package orchestrator

import (
	"fmt"

	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/intent"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

type bilingual struct {
	en, ur string
	// withRef appends the request id so support can find the server log.
	withRef bool
}

var errorMessages = map[string]bilingual{
	KindAuthenticationRequired: {
		en: "Please log in to perform this action. You need to be signed in to create or manage tasks.",
		ur: "Yeh action karne ke liye login karein. Tasks banane ya manage karne ke liye sign in hona zaroori hai.",
	},
	KindAuthenticationFailed: {
		en:      "The assistant is temporarily unavailable due to a configuration issue. Please contact support.",
		ur:      "Assistant abhi available nahi hai (configuration issue). Support se contact karein.",
		withRef: true,
	},
	KindQuotaExceeded: {
		en: "The assistant is experiencing high demand right now. Please try again in a few moments.",
		ur: "Assistant abhi bohat busy hai. Kuch der baad dobara try karein.",
	},
	KindNetworkError: {
		en: "Unable to reach the service right now. Please check your connection and try again.",
		ur: "Service se connection nahi ho raha. Apna internet check karein aur dobara try karein.",
	},
	KindNotFound: {
		en: "I couldn't find that. Please check the task or masjid number and try again.",
		ur: "Yeh nahi mila. Task ya masjid ka number check karke dobara try karein.",
	},
	KindInvalidRequest: {
		en: "I couldn't process that request. Please rephrase and try again.",
		ur: "Yeh request process nahi ho saki. Dobara likh kar try karein.",
	},
	KindServerError: {
		en:      "The task service ran into a problem. Please try again later.",
		ur:      "Task service mein masla aaya. Thori der baad try karein.",
		withRef: true,
	},
	KindToolNotFound: {
		en:      "This action is not available right now.",
		ur:      "Yeh action abhi available nahi hai.",
		withRef: true,
	},
	KindToolExecutionError: {
		en:      "Something went wrong while performing that action. Please try again.",
		ur:      "Yeh action karte hue koi masla aaya. Dobara try karein.",
		withRef: true,
	},
	KindInternalError: {
		en:      "An unexpected error occurred. Please try again.",
		ur:      "Ek unexpected error aaya. Dobara try karein.",
		withRef: true,
	},
}

// errorMessage returns the user-facing text for kind. detail is appended
// for invalid_request, where the backend's reason is actionable.
func errorMessage(kind string, lang intent.Language, requestID, detail string) string {
	m, ok := errorMessages[kind]
	if !ok {
		m = errorMessages[KindInternalError]
	}
	text := m.en
	if lang == intent.Urdu {
		text = m.ur
	}
	if kind == KindInvalidRequest && detail != "" {
		text = fmt.Sprintf("%s (%s)", text, detail)
	}
	if m.withRef {
		text = fmt.Sprintf("%s Reference ID: %s", text, requestID)
	}
	return text
}

// Reject builds the invalid_request response for a body that could not be
// decoded into a ChatRequest.
func Reject(requestID, language, detail string) *ChatResponse {
	lang, ok := intent.ParseLanguage(language)
	if !ok {
		lang = intent.English
	}
	return &ChatResponse{
		Success:      false,
		Error:        strPtr(KindInvalidRequest),
		ErrorMessage: strPtr(errorMessage(KindInvalidRequest, lang, requestID, detail)),
		RequestID:    requestID,
	}
}

// publicKind maps a tool result kind to the public error kind.
func publicKind(k registry.ErrorKind) string {
	switch k {
	case registry.ErrAuthRequired:
		return KindAuthenticationRequired
	case registry.ErrNotFound:
		return KindNotFound
	case registry.ErrInvalidRequest:
		return KindInvalidRequest
	case registry.ErrServerError:
		return KindServerError
	case registry.ErrNetworkError:
		return KindNetworkError
	case registry.ErrToolNotFound:
		return KindToolNotFound
	case registry.ErrToolExecution:
		return KindToolExecutionError
	default:
		return KindInternalError
	}
}

// generationKind maps a generation failure to the public error kind.
// Failures outside the three typed ones are internal errors.
func generationKind(err error) string {
	switch genclient.Kind(err) {
	case "authentication_failed":
		return KindAuthenticationFailed
	case "quota_exceeded":
		return KindQuotaExceeded
	case "network_error":
		return KindNetworkError
	default:
		return KindInternalError
	}
}
