// Package commsutil provides COMMS (NATS) connection helpers and subject names.
package commsutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// Connection defaults used when ConnectOptions leaves a field zero.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReconnectWait  = 2 * time.Second
	DefaultMaxReconnects  = 60
)

// ConnectOptions configures Connect. Zero values use the defaults above;
// a negative MaxReconnects reconnects forever.
type ConnectOptions struct {
	URL            string
	Name           string
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = DefaultReconnectWait
	}
	if o.MaxReconnects == 0 {
		o.MaxReconnects = DefaultMaxReconnects
	}
	return o
}

// RedactURL hides the password of a user:pass@ COMMS URL. Comma-separated
// server lists are redacted entry by entry.
func RedactURL(raw string) string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = redactOne(strings.TrimSpace(p))
	}
	return strings.Join(parts, ",")
}

func redactOne(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	if u.User == nil {
		return raw
	}
	if _, hasPass := u.User.Password(); !hasPass {
		// a bare token in the user slot is a credential too
		u.User = url.User("xxxxx")
		return u.String()
	}
	return u.Redacted()
}

// Connect creates a COMMS connection. Credentials in the URL never reach the log.
func Connect(opts ConnectOptions) (*comms.Conn, error) {
	opts = opts.withDefaults()
	safeURL := RedactURL(opts.URL)
	slog.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s (timeout=%s reconnect_wait=%s max_reconnects=%d)",
		logPrefix, safeURL, opts.Name, opts.ConnectTimeout, opts.ReconnectWait, opts.MaxReconnects))

	nc, err := comms.Connect(opts.URL,
		comms.Name(opts.Name),
		comms.Timeout(opts.ConnectTimeout),
		comms.ReconnectWait(opts.ReconnectWait),
		comms.MaxReconnects(opts.MaxReconnects),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - COMMS disconnected from %s: %v", logPrefix, safeURL, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS reconnected to %s", logPrefix, RedactURL(nc.ConnectedUrl())))
		}),
		comms.ClosedHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS at %s: %w", logPrefix, safeURL, err)
	}

	slog.Info(fmt.Sprintf("%s - Connected to COMMS at %s", logPrefix, RedactURL(nc.ConnectedUrl())))
	return nc, nil
}
