// Package metadata extracts client-supplied request metadata (network origin,
// User-Agent, client scope) and stores it in the request context. The vote
// ledger stamps origins onto vote records, the anomaly detector clusters on
// them, and the attempt guard keys lockout windows on the client scope.
package metadata

import (
	"net/http"
	"strings"

	"votecast/pkg/requestcontext"
)

// ClientScopeHeader lets a client pin its own scope key for login throttling.
// Absent the header, the auth service derives a scope from the device
// fingerprint or the origin.
const ClientScopeHeader = "X-Client-Scope"

// ClientMetadata extracts the client IP, User-Agent, and optional client
// scope from the request and adds them to the context for use by handlers
// and services. This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithOrigin(ctx, ClientIPFromRequest(r))
		ctx = requestcontext.WithUserAgent(ctx, r.Header.Get("User-Agent"))
		if scope := r.Header.Get(ClientScopeHeader); scope != "" {
			ctx = requestcontext.WithClientScope(ctx, scope)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// Check X-Forwarded-For header first (standard for proxied requests)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
		// Take the first IP which is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header (used by nginx and other proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (direct connection)
	// RemoteAddr is in format "ip:port", so we need to strip the port
	if addr := r.RemoteAddr; addr != "" {
		// For IPv6, format is [::1]:port
		// For IPv4, format is 127.0.0.1:port
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
