package http

import (
	"context"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// ContextWithRequestID returns a derived context carrying the request sequence number.
func ContextWithRequestID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext extracts the request sequence number if available.
func RequestIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(requestIDContextKey).(uint64)
	return id, ok
}
