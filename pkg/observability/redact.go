package observability

import (
	"regexp"
	"strings"
)

// RedactionMarker replaces explicitly registered secret values.
const RedactionMarker = "[REDACTED]"

// minSecretLength keeps short values (e.g. "on", "1") from being scrubbed everywhere.
const minSecretLength = 8

type redactPattern struct {
	re          *regexp.Regexp
	replacement string
}

// Patterns are applied in order; bearer tokens run before the generic
// authorization rule so the header name survives.
var defaultPatterns = []redactPattern{
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), "[REDACTED_GEMINI_KEY]"},
	{regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9_\-\.=]+`), "${1}[REDACTED_TOKEN]"},
	{regexp.MustCompile(`(?i)(x-goog-api-key["'\s:=]+)[^\s,}\]"']+`), "${1}[REDACTED_KEY]"},
	{regexp.MustCompile(`(?i)(api[_-]?key["'\s:=]+)[A-Za-z0-9_\-]+`), "${1}[REDACTED_KEY]"},
	{regexp.MustCompile(`(?i)(password["'\s:=]+)[^\s,}\]]+`), "${1}[REDACTED_PASSWORD]"},
	{regexp.MustCompile(`(?i)((?:postgres|postgresql|mysql|nats)://[^:/\s@]+:)[^@\s]+(@)`), "${1}[REDACTED_DB_PASS]${2}"},
	{regexp.MustCompile(`(?i)(authorization["'\s:=]+)([^\s,}\]]+)`), "${1}[REDACTED_AUTH]"},
}

// sensitiveKeys marks attribute keys whose values are always dropped.
var sensitiveKeys = []string{"api_key", "apikey", "token", "password", "secret", "authorization", "credential"}

// Redactor scrubs credential-shaped substrings and known secret values.
// It is immutable after construction.
type Redactor struct {
	patterns []redactPattern
	secrets  []string
}

// NewRedactor returns a Redactor with the default patterns plus the given
// secret values. Values shorter than eight characters are ignored.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{patterns: defaultPatterns}
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) >= minSecretLength {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

// Redact returns s with secrets replaced.
func (r *Redactor) Redact(s string) string {
	if r == nil || s == "" {
		return s
	}
	for _, secret := range r.secrets {
		if strings.Contains(s, secret) {
			s = strings.ReplaceAll(s, secret, RedactionMarker)
		}
	}
	for _, p := range r.patterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

// IsSensitiveKey reports whether an attribute key names a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
