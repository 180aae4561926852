package services

import "context"

type contextKey string

const (
	generationIDKey contextKey = "generation_id"
	variantKey      contextKey = "variant"
	requestIDKey    contextKey = "request_id"
)

// WithGenerationID attaches a ledger record identifier to the context.
func WithGenerationID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, generationIDKey, id)
}

// GenerationIDFromContext extracts the ledger record identifier if present.
func GenerationIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(generationIDKey).(int64)
	return id, ok
}

// WithVariant attaches a model variant name to the context.
func WithVariant(ctx context.Context, variant string) context.Context {
	return context.WithValue(ctx, variantKey, variant)
}

// VariantFromContext extracts the model variant name if present.
func VariantFromContext(ctx context.Context) (string, bool) {
	variant, ok := ctx.Value(variantKey).(string)
	return variant, ok
}

// WithRequestID attaches a correlation identifier to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}
