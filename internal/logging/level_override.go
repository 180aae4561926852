package logging

import (
	"context"
	"log/slog"
)

// floorHandler drops records below a per-logger minimum before they reach the
// shared handler, which stays configured at the most verbose level any
// component needs.
type floorHandler struct {
	inner slog.Handler
	floor slog.Level
}

// WithLevelOverride returns a logger that enforces the provided minimum level
// while preserving existing attributes and handler wiring. Applying a second
// override replaces the first rather than stacking.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	h := logger.Handler()
	if existing, ok := h.(*floorHandler); ok {
		h = existing.inner
	}
	return slog.New(&floorHandler{inner: h, floor: level})
}

func (h *floorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.floor && h.inner.Enabled(ctx, level)
}

func (h *floorHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.floor {
		return nil
	}
	return h.inner.Handle(ctx, record)
}

func (h *floorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &floorHandler{inner: h.inner.WithAttrs(attrs), floor: h.floor}
}

func (h *floorHandler) WithGroup(name string) slog.Handler {
	return &floorHandler{inner: h.inner.WithGroup(name), floor: h.floor}
}
