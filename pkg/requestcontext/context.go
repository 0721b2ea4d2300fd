// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets domain code depend only on context.Context. Tests inject
// deterministic values the same way:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithOrigin(ctx, "192.168.1.10")
//
// The clock and origin source the vote ledger and attempt guard rely on is
// exactly this package: every cast and login attempt reads its timestamp and
// caller origin from the context, never from globals.
package requestcontext

import (
	"context"
	"time"

	id "votecast/pkg/domain"
)

type (
	principalIDKey struct{}
	originKey      struct{}
	clientScopeKey struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// PrincipalID retrieves the authenticated principal ID from the context.
// Returns the zero value if no principal is authenticated.
func PrincipalID(ctx context.Context) id.PrincipalID {
	if pid, ok := ctx.Value(principalIDKey{}).(id.PrincipalID); ok {
		return pid
	}
	return id.PrincipalID{}
}

// WithPrincipalID injects an authenticated principal ID into the context.
func WithPrincipalID(ctx context.Context, pid id.PrincipalID) context.Context {
	return context.WithValue(ctx, principalIDKey{}, pid)
}

// Origin retrieves the caller's network-origin identifier. Used for vote
// records and anomaly heuristics only.
func Origin(ctx context.Context) string {
	if origin, ok := ctx.Value(originKey{}).(string); ok {
		return origin
	}
	return ""
}

// WithOrigin injects a caller origin into the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// ClientScope retrieves the per-client scope key used by the attempt guard.
// This is a browser/session-level identifier, not a global one.
func ClientScope(ctx context.Context) string {
	if scope, ok := ctx.Value(clientScopeKey{}).(string); ok {
		return scope
	}
	return ""
}

// WithClientScope injects a per-client scope key into the context.
func WithClientScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, clientScopeKey{}, scope)
}

// UserAgent retrieves the raw User-Agent header from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithUserAgent injects a User-Agent value into the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from the context. All operations
// within a single request observe the same "now", which keeps audit entries,
// vote timestamps, and rate-limit windows consistent. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to control
// time deterministically.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
