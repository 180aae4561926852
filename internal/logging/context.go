package logging

import (
	"context"
	"log/slog"

	"fitroom/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldGenerationID is the standardized structured logging key for ledger record identifiers.
	FieldGenerationID = "generation_id"
	// FieldVariant is the standardized structured logging key for model variant names.
	FieldVariant = "variant"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorCode is the standardized structured logging key for classified error codes.
	FieldErrorCode = "error_code"
	// FieldErrorHint is the standardized structured logging key for operator remediation hints.
	FieldErrorHint = "error_hint"
	// FieldDecisionType is the standardized structured logging key for recorded decisions
	// such as variant selection or blacklisting.
	FieldDecisionType = "decision_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.GenerationIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldGenerationID, id))
	}
	if variant, ok := services.VariantFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVariant, variant))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
