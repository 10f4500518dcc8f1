// Package backend is the HTTP client for the CRUD service that owns tasks,
// masjids and hadith.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/morezero/salaatflow-assistant/pkg/observability"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

const logPrefix = "backend:client"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Headers sent on every call.
const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// Config holds backend client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit caps outbound calls per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client; its Timeout is left as is.
	HTTPClient *http.Client
}

// Client issues one bounded call per tool invocation.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Call is a single backend request.
type Call struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any
	CallerID string
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s - invalid base URL %q", logPrefix, cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{baseURL: u, http: hc, timeout: timeout}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do performs call and classifies the outcome. The call runs on a context
// detached from ctx's cancellation and bounded by the client timeout, so a
// departed caller does not abort it midway.
func (c *Client) Do(ctx context.Context, call Call) registry.Result {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	target := c.resolve(call.Path, call.Query)
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(callCtx); err != nil {
			slog.WarnContext(ctx, fmt.Sprintf("%s - Rate limit wait for %s %s failed: %v", logPrefix, call.Method, call.Path, err))
			return registry.Fail(registry.ErrNetworkError, "backend is busy, please try again")
		}
	}

	var body io.Reader
	if call.Body != nil {
		buf, err := json.Marshal(call.Body)
		if err != nil {
			return registry.Fail(registry.ErrInvalidRequest, "could not encode request: %v", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(callCtx, call.Method, target, body)
	if err != nil {
		return registry.Fail(registry.ErrInvalidRequest, "could not build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.CallerID != "" {
		req.Header.Set(HeaderUserID, call.CallerID)
	}
	if id := observability.RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	slog.DebugContext(ctx, fmt.Sprintf("%s - %s %s", logPrefix, call.Method, target))

	resp, err := c.http.Do(req)
	if err != nil {
		kind := "unreachable"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = "timed out"
		}
		slog.WarnContext(ctx, fmt.Sprintf("%s - %s %s %s after %s: %v", logPrefix, call.Method, call.Path, kind, time.Since(start).Round(time.Millisecond), err))
		return registry.Fail(registry.ErrNetworkError, "backend %s", kind)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		slog.WarnContext(ctx, fmt.Sprintf("%s - Reading %s %s response failed: %v", logPrefix, call.Method, call.Path, err))
		return registry.Fail(registry.ErrNetworkError, "backend response was interrupted")
	}

	slog.DebugContext(ctx, fmt.Sprintf("%s - %s %s -> %d in %s", logPrefix, call.Method, call.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond)))

	res := Classify(resp.StatusCode, raw)
	res.StatusCode = resp.StatusCode
	return res
}

func (c *Client) resolve(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Classify maps an HTTP status and body to a Result: 2xx success, 401
// auth_required, 404 not_found, other 4xx invalid_request, 5xx server_error.
func Classify(status int, body []byte) registry.Result {
	switch {
	case status >= 200 && status < 300:
		return registry.OK(decodeData(body))
	case status == http.StatusUnauthorized:
		return registry.Fail(registry.ErrAuthRequired, "%s", messageOr(body, "authentication required"))
	case status == http.StatusNotFound:
		return registry.Fail(registry.ErrNotFound, "%s", messageOr(body, "not found"))
	case status >= 400 && status < 500:
		return registry.Fail(registry.ErrInvalidRequest, "%s", messageOr(body, fmt.Sprintf("request rejected with status %d", status)))
	default:
		return registry.Fail(registry.ErrServerError, "backend returned status %d", status)
	}
}

// decodeData returns a JSON object as is, wraps arrays as {"items": [...]},
// and returns an empty map for empty bodies.
func decodeData(body []byte) map[string]any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return map[string]any{"raw": string(trimmed)}
	}
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		return map[string]any{"items": t}
	default:
		return map[string]any{"value": t}
	}
}

// messageOr extracts detail, message or error from a JSON error payload.
func messageOr(body []byte, fallback string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, key := range []string{"detail", "message", "error"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if len(v) > 0 {
				if first, ok := v[0].(map[string]any); ok {
					if msg, ok := first["msg"].(string); ok {
						return msg
					}
				}
			}
		}
	}
	return fallback
}
