package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// HandlerOptions configures NewHandler. Nil writers disable that stream.
type HandlerOptions struct {
	// Console receives human-readable lines at ConsoleLevel and above.
	Console      io.Writer
	ConsoleLevel slog.Level
	// All receives every event, debug included, as JSON.
	All io.Writer
	// Errors receives error-level events only, as JSON with source location.
	Errors   io.Writer
	Redactor *Redactor
}

// NewHandler builds the process handler: redaction and request-id stamping
// in front of a fan-out to the configured streams.
func NewHandler(opts HandlerOptions) slog.Handler {
	var sinks []slog.Handler
	if opts.Console != nil {
		sinks = append(sinks, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{Level: opts.ConsoleLevel}))
	}
	if opts.All != nil {
		sinks = append(sinks, slog.NewJSONHandler(opts.All, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if opts.Errors != nil {
		sinks = append(sinks, slog.NewJSONHandler(opts.Errors, &slog.HandlerOptions{Level: slog.LevelError, AddSource: true}))
	}
	redactor := opts.Redactor
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &redactingHandler{next: fanout(sinks), redactor: redactor}
}

// redactingHandler scrubs messages and attribute values and adds the
// request id carried by the record's context.
type redactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redactor.Redact(r.Message), r.PC)
	hasID := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == RequestIDAttr {
			hasID = true
		}
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	if !hasID {
		if id := RequestID(ctx); id != "" {
			out.AddAttrs(slog.String(RequestIDAttr, id))
		}
	}
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(clean), redactor: h.redactor}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}

func (h *redactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactionMarker)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redactor.Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = h.redactAttr(g)
		}
		return slog.Group(a.Key, clean...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return a
		case error:
			return slog.String(a.Key, h.redactor.Redact(x.Error()))
		default:
			// Structs, maps and Stringers are flattened only when they carry a secret.
			raw := fmt.Sprint(x)
			if clean := h.redactor.Redact(raw); clean != raw {
				return slog.String(a.Key, clean)
			}
			return a
		}
	default:
		return a
	}
}

// multiHandler dispatches each record to every sink that accepts its level.
type multiHandler struct {
	sinks []slog.Handler
}

func fanout(sinks []slog.Handler) slog.Handler {
	return &multiHandler{sinks: sinks}
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, s := range m.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &multiHandler{sinks: sinks}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &multiHandler{sinks: sinks}
}
