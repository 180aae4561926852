package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the standardized structured logging key for daemon session identifiers.
const FieldSessionID = "session_id"

// stampHandler appends a fixed set of attributes to every record. The daemon
// uses it to tag diagnostic sessions so `fitroom logs` can isolate one run.
type stampHandler struct {
	inner slog.Handler
	stamp []slog.Attr
}

func newStampHandler(inner slog.Handler, stamp ...slog.Attr) slog.Handler {
	if inner == nil {
		return NoopHandler{}
	}
	if len(stamp) == 0 {
		return inner
	}
	return &stampHandler{inner: inner, stamp: stamp}
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *stampHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.stamp...)
	return h.inner.Handle(ctx, record)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{inner: h.inner.WithAttrs(attrs), stamp: h.stamp}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{inner: h.inner.WithGroup(name), stamp: h.stamp}
}
