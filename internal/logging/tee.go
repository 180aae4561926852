package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler delivers every record to each member handler. Members keep their
// own level gates, so a debug file sink and an info console can share one
// logger.
type teeHandler struct {
	members []slog.Handler
}

// TeeHandler combines handlers into one that duplicates log output to all of
// them. Nil members are skipped; a single survivor is returned unwrapped.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	members := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			members = append(members, h)
		}
	}
	switch len(members) {
	case 0:
		return NoopHandler{}
	case 1:
		return members[0]
	}
	return &teeHandler{members: members}
}

// TeeLogger duplicates log output from base into the provided handlers.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(TeeHandler(handlers...))
	}
	return slog.New(TeeHandler(append([]slog.Handler{base.Handler()}, handlers...)...))
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, m := range t.members {
		if m.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for i, m := range t.members {
		if !m.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i < len(t.members)-1 {
			rec = record.Clone()
		}
		if err := m.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	members := make([]slog.Handler, len(t.members))
	for i, m := range t.members {
		members[i] = m.WithAttrs(attrs)
	}
	return &teeHandler{members: members}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	members := make([]slog.Handler, len(t.members))
	for i, m := range t.members {
		members[i] = m.WithGroup(name)
	}
	return &teeHandler{members: members}
}
