// Package requestctx carries per-request values from the HTTP layer down to
// domain services without importing transport code.
package requestctx

import (
	"context"

	"hrpayroll/internal/domain/access"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithCaller(ctx context.Context, caller *access.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// Caller returns nil and false for unauthenticated requests.
func Caller(ctx context.Context) (*access.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(*access.Caller)
	return caller, ok && caller != nil
}
