// Package genclient wraps the text-generation provider with eager
// configuration checks, typed errors, bounded retry and a health probe.
package genclient

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second

	MinTimeout     = 5 * time.Second
	MaxTimeout     = 300 * time.Second
	MaxAttemptsCap = 6
	MinRetryDelay  = 100 * time.Millisecond
	MaxRetryDelay  = 10 * time.Second

	apiKeyPrefix    = "AIza"
	minAPIKeyLength = 35
)

var placeholderKeys = []string{"your-gemini-api-key", "your-api-key-here", "placeholder", "xxx"}

// Config holds generation client settings.
type Config struct {
	APIKey string
	Model  string
	// Timeout bounds a single provider attempt.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int
	// RetryDelay is multiplied by the attempt number between retries.
	RetryDelay time.Duration
	// BaseURL overrides the provider endpoint; empty uses the default.
	BaseURL string
}

// DefaultConfig returns the defaults without a credential.
func DefaultConfig() Config {
	return Config{
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// WithDefaults returns c with zero fields filled from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	return c
}

// Validate checks the credential shape and the timing bounds. Error
// messages never include the credential.
func (c Config) Validate() error {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return fmt.Errorf("genclient:config - GEMINI_API_KEY is required")
	}
	lower := strings.ToLower(key)
	for _, p := range placeholderKeys {
		if strings.Contains(lower, p) {
			return fmt.Errorf("genclient:config - GEMINI_API_KEY is a placeholder; set a real key")
		}
	}
	if !strings.HasPrefix(key, apiKeyPrefix) {
		return fmt.Errorf("genclient:config - GEMINI_API_KEY has an unexpected format (expected prefix %q)", apiKeyPrefix)
	}
	if len(key) < minAPIKeyLength {
		return fmt.Errorf("genclient:config - GEMINI_API_KEY is too short (%d < %d characters)", len(key), minAPIKeyLength)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("genclient:config - model is required")
	}
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("genclient:config - timeout %s outside [%s, %s]", c.Timeout, MinTimeout, MaxTimeout)
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > MaxAttemptsCap {
		return fmt.Errorf("genclient:config - max attempts %d outside [1, %d]", c.MaxAttempts, MaxAttemptsCap)
	}
	if c.RetryDelay < MinRetryDelay || c.RetryDelay > MaxRetryDelay {
		return fmt.Errorf("genclient:config - retry delay %s outside [%s, %s]", c.RetryDelay, MinRetryDelay, MaxRetryDelay)
	}
	return nil
}
