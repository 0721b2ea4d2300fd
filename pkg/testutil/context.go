package testutil

import (
	"net/http"
	"time"

	id "votecast/pkg/domain"
	"votecast/pkg/requestcontext"
)

// AsPrincipal stamps the request context with the principal ID the auth
// middleware would have set for an authenticated request. An invalid ID is
// silently ignored so tests can probe the unauthenticated path with "".
func AsPrincipal(req *http.Request, principalID string) *http.Request {
	pid, err := id.ParsePrincipalID(principalID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithPrincipalID(req.Context(), pid))
}

// AtTime pins the request clock, standing in for the request-time middleware.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
