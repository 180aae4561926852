package logging

import (
	"log/slog"
	"time"
)

// Attr and Value alias slog so call sites can build structured fields without
// importing both packages.
type (
	Attr  = slog.Attr
	Value = slog.Value
)

func String(key, value string) Attr                 { return slog.String(key, value) }
func Int(key string, value int) Attr                { return slog.Int(key, value) }
func Int64(key string, value int64) Attr            { return slog.Int64(key, value) }
func Uint64(key string, value uint64) Attr          { return slog.Uint64(key, value) }
func Float64(key string, value float64) Attr        { return slog.Float64(key, value) }
func Bool(key string, value bool) Attr              { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Any(key string, value any) Attr                { return slog.Any(key, value) }

// Error renders err under the conventional "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Alert flags a log line that should stand out to operators scanning output.
func Alert(value string) Attr { return slog.String(FieldAlert, value) }

// Group nests attrs under key.
func Group(key string, attrs ...Attr) Attr {
	return slog.Group(key, attrsToArgs(attrs)...)
}

// Args adapts a list of attrs to the variadic ...any form slog methods take.
func Args(attrs ...Attr) []any { return attrsToArgs(attrs) }

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewComponentLogger tags a logger with a standardized component attribute.
// A nil logger yields a component-tagged no-op.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// FieldImpact is the standardized key for the user-facing consequence of a warning.
const FieldImpact = "impact"

// WarnWithContext logs a warning carrying event_type, error_hint, and impact
// fields, filling defaults for any the caller did not set. Warnings should
// always name a cause, a consequence, and a next step.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = fillDefault(attrs, FieldEventType, eventType)
	attrs = fillDefault(attrs, FieldErrorHint, "check logs for details")
	attrs = fillDefault(attrs, FieldImpact, "operation completed with warnings")
	logger.Warn(msg, attrsToArgs(attrs)...)
}

// ErrorWithContext logs an error carrying event_type and error_hint fields,
// filling defaults for any the caller did not set.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = fillDefault(attrs, FieldEventType, eventType)
	attrs = fillDefault(attrs, FieldErrorHint, "check logs for details")
	logger.Error(msg, attrsToArgs(attrs)...)
}

func fillDefault(attrs []Attr, key, value string) []Attr {
	for _, a := range attrs {
		if a.Key == key {
			return attrs
		}
	}
	return append(attrs, String(key, value))
}

// DecisionAttrs builds the decision_type/result/reason triple used whenever a
// component records a policy decision such as blacklisting a variant.
func DecisionAttrs(decisionType, result, reason string) []Attr {
	return []Attr{
		String(FieldDecisionType, decisionType),
		String("decision_result", result),
		String("decision_reason", reason),
	}
}
