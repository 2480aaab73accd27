// Package requestctx carries the per-request correlation ID through context
// so stores and services can tag logs and audit rows without importing the
// HTTP layer.
package requestctx

import "context"

type contextKey int

const requestIDKey contextKey = iota

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the correlation ID or "" when the context never
// passed through the request-ID middleware (background work, tests).
func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}
