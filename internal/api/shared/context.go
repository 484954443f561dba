package shared

import (
	"context"

	"github.com/google/uuid"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// RecipientIDContextKey is the context key for the authenticated recipient
	RecipientIDContextKey ContextKey = "recipientID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.NewString())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithRecipientID stores the recipient id in the context.
func WithRecipientID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, RecipientIDContextKey, id)
}

// RecipientID returns the recipient id stored by WithRecipientID.
func RecipientID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RecipientIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
