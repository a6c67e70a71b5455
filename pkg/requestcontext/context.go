// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSessionID(ctx, "shopper-session")
package requestcontext

import (
	"context"
	"time"

	id "vitrine/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	sessionIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeySessionID   = sessionIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the correlation ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return rid
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// SessionID retrieves the shopper session ID from the context.
// Returns the zero value if not set.
func SessionID(ctx context.Context) id.SessionID {
	if sid, ok := ctx.Value(ContextKeySessionID).(id.SessionID); ok {
		return sid
	}
	return ""
}

// WithSessionID injects a shopper session ID into the context.
func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// Now retrieves the request-scoped time, falling back to time.Now when no
// middleware captured one. All operations within a single request share one
// "now" so derived timestamps stay consistent.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to pin the
// clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
