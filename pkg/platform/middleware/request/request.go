// Package request assigns each incoming request a correlation ID. The ID
// rides the context into every log line and audit entry produced while
// serving the request, and is echoed back in the X-Request-ID response header.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"votecast/pkg/requestcontext"
)

// HeaderRequestID carries the correlation ID on both request and response.
const HeaderRequestID = "X-Request-ID"

// Middleware honors a client-supplied X-Request-ID and generates one when
// absent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
