package genclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morezero/salaatflow-assistant/pkg/observability"
)

const logPrefix = "genclient:client"

// HealthProbePrompt is the fixed minimal prompt used by HealthCheck.
const HealthProbePrompt = "Hello from SalaatFlow health check. Respond with 'OK'."

// HealthRequestID tags health probe log lines.
const HealthRequestID = "health-check"

// ServiceName is reported by HealthCheck.
const ServiceName = "gemini"

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of HealthCheck.
type HealthStatus struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Healthy reports whether the probe succeeded.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == StatusHealthy
}

// Client is the retrying generation client. Its configuration is
// immutable after construction and it is safe for concurrent use.
type Client struct {
	cfg      Config
	provider Provider
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// New validates cfg and builds a client backed by the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := NewGenAIProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(cfg, p), nil
}

// NewWithProvider validates cfg and builds a client over p.
func NewWithProvider(cfg Config, p Provider) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%s - provider is required", logPrefix)
	}
	return newClient(cfg, p), nil
}

func newClient(cfg Config, p Provider) *Client {
	slog.Info(fmt.Sprintf("%s - Generation client ready: model=%s timeout=%s attempts=%d", logPrefix, cfg.Model, cfg.Timeout, cfg.MaxAttempts))
	return &Client{cfg: cfg, provider: p, sleep: sleepCtx, now: time.Now}
}

// Model returns the configured model id.
func (c *Client) Model() string {
	return c.cfg.Model
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate returns the model's reply. Failures are *AuthError, *QuotaError,
// *NetworkError or, for anything unclassifiable, *Error. Only network
// failures are retried, waiting RetryDelay*attempt between attempts. Each
// attempt is bounded by the configured timeout and is not cancelled when
// ctx is.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	base := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		text, err := c.attempt(base, req)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err == nil {
			observability.GenerationAttemptsTotal.WithLabelValues("success").Inc()
			slog.InfoContext(ctx, fmt.Sprintf("%s - Generation succeeded on attempt %d/%d in %s (%d chars)", logPrefix, attempt, c.cfg.MaxAttempts, elapsed, len(text)),
				"attempt", attempt)
			return text, nil
		}

		err = Classify(err)
		lastErr = err
		observability.GenerationAttemptsTotal.WithLabelValues(Kind(err)).Inc()

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			slog.ErrorContext(ctx, fmt.Sprintf("%s - Generation failed on attempt %d/%d: %v", logPrefix, attempt, c.cfg.MaxAttempts, err),
				"attempt", attempt, "will_retry", false, "error_kind", Kind(err))
			return "", err
		}

		willRetry := attempt < c.cfg.MaxAttempts
		slog.WarnContext(ctx, fmt.Sprintf("%s - Generation network failure on attempt %d/%d after %s: %v", logPrefix, attempt, c.cfg.MaxAttempts, elapsed, err),
			"attempt", attempt, "will_retry", willRetry, "error_kind", Kind(err))
		if !willRetry {
			break
		}

		delay := c.cfg.RetryDelay * time.Duration(attempt)
		slog.DebugContext(ctx, fmt.Sprintf("%s - Retrying in %s", logPrefix, delay), "attempt", attempt)
		if err := c.sleep(base, delay); err != nil {
			break
		}
	}

	slog.ErrorContext(ctx, fmt.Sprintf("%s - Generation gave up after %d attempt(s)", logPrefix, c.cfg.MaxAttempts))
	var netErr *NetworkError
	if errors.As(lastErr, &netErr) {
		return "", &NetworkError{Attempts: c.cfg.MaxAttempts, Cause: netErr.Cause}
	}
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, req Request) (text string, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			err = &Error{Cause: fmt.Errorf("provider panic: %v", p)}
		}
	}()
	return c.provider.Generate(ctx, c.cfg.Model, req)
}

// HealthCheck sends the fixed probe prompt once, without retry, and reports
// upstream reachability. The check is bounded by the earlier of the caller's
// deadline and the configured timeout. It never includes the credential.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	ctx = observability.WithRequestID(ctx, HealthRequestID)
	out := &HealthStatus{
		Service:   ServiceName,
		Model:     c.cfg.Model,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}

	checkCtx := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithDeadline(checkCtx, dl)
		defer cancel()
	}
	_, err := c.attempt(checkCtx, Request{Prompt: HealthProbePrompt})
	if err == nil {
		out.Status = StatusHealthy
		slog.InfoContext(ctx, fmt.Sprintf("%s - Health check passed for model %s", logPrefix, c.cfg.Model))
		return out
	}

	err = Classify(err)
	out.Status = StatusUnhealthy
	out.Error, out.Message = healthError(err)
	slog.ErrorContext(ctx, fmt.Sprintf("%s - Health check failed: %s: %v", logPrefix, out.Error, err))
	return out
}

func healthError(err error) (string, string) {
	kind := Kind(err)
	switch kind {
	case "authentication_failed":
		return kind, "The generation service rejected the configured API key."
	case "quota_exceeded":
		return kind, "The generation service quota is exhausted. Try again later."
	case "network_error":
		return kind, "The generation service is unreachable or timed out."
	default:
		return kind, "The generation service returned an unexpected error."
	}
}
