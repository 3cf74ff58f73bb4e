package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyFlash     ctxKey = "flash"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithFlash stores a consumed flash notice in context.
func WithFlash(ctx context.Context, f Flash) context.Context {
	return context.WithValue(ctx, ctxKeyFlash, f)
}

// FlashFromContext returns the notice consumed for this request, if any.
func FlashFromContext(ctx context.Context) (Flash, bool) {
	f, ok := ctx.Value(ctxKeyFlash).(Flash)
	return f, ok && f.Message != ""
}
