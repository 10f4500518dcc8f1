package genclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// AuthError means the provider rejected the credential. Never retried.
type AuthError struct {
	Status int
	Cause  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("generation provider rejected credentials (status %d)", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// QuotaError means a rate or usage limit was hit. Never retried.
type QuotaError struct {
	Status int
	Cause  error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("generation provider quota exceeded (status %d)", e.Status)
}

func (e *QuotaError) Unwrap() error { return e.Cause }

// NetworkError means the provider was unreachable, timed out or failed
// transiently. Retried up to the configured attempts.
type NetworkError struct {
	Attempts int
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("generation provider unreachable after %d attempt(s): %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("generation provider unreachable: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// Error is any other provider failure, such as an unknown model. Never retried.
type Error struct {
	Status int
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation provider error (status %d): %v", e.Status, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Classify converts a provider error into one of the typed errors above.
// Already typed errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		authErr  *AuthError
		quotaErr *QuotaError
		netErr   *NetworkError
		genErr   *Error
	)
	if errors.As(err, &authErr) || errors.As(err, &quotaErr) || errors.As(err, &netErr) || errors.As(err, &genErr) {
		return err
	}

	if code, status, msg, ok := apiError(err); ok {
		return classifyStatus(code, status, msg, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return &NetworkError{Cause: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &NetworkError{Cause: err}
	}

	return classifyMessage(err)
}

func apiError(err error) (int, string, string, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, v.Status, v.Message, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, p.Status, p.Message, true
	}
	return 0, "", "", false
}

func classifyStatus(code int, status, msg string, cause error) error {
	lowerMsg := strings.ToLower(msg)
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden, status == "UNAUTHENTICATED", status == "PERMISSION_DENIED":
		return &AuthError{Status: code, Cause: cause}
	case code == http.StatusBadRequest && strings.Contains(lowerMsg, "api key"):
		return &AuthError{Status: code, Cause: cause}
	case code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED":
		return &QuotaError{Status: code, Cause: cause}
	case code == http.StatusRequestTimeout, code >= 500, status == "UNAVAILABLE", status == "DEADLINE_EXCEEDED":
		return &NetworkError{Cause: cause}
	default:
		return &Error{Status: code, Cause: cause}
	}
}

// classifyMessage is the fallback for untyped errors, keyed on common
// provider phrases.
func classifyMessage(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key not valid", "invalid api key", "unauthenticated", "permission denied", "401", "403"):
		return &AuthError{Cause: err}
	case containsAny(msg, "quota", "rate limit", "resource exhausted", "429", "too many requests"):
		return &QuotaError{Cause: err}
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "connection refused", "connection reset", "no such host", "eof", "unavailable", "502", "503", "504"):
		return &NetworkError{Cause: err}
	default:
		return &Error{Cause: err}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Kind returns the public error kind for a generation error.
func Kind(err error) string {
	var (
		authErr  *AuthError
		quotaErr *QuotaError
		netErr   *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr):
		return "authentication_failed"
	case errors.As(err, &quotaErr):
		return "quota_exceeded"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "generation_error"
	}
}
