package admin

import (
	"context"
	"log/slog"
	"net/http"

	id "votecast/pkg/domain"
	request "votecast/pkg/platform/middleware/request"
	"votecast/pkg/requestcontext"
)

// RoleDirectory answers whether a principal holds the admin role.
type RoleDirectory interface {
	IsAdmin(ctx context.Context, principalID id.PrincipalID) (bool, error)
}

// RequireAdmin gates a route on the authenticated principal holding the admin
// role. Must run after the auth middleware: an empty principal in the context
// is rejected outright.
func RequireAdmin(roles RoleDirectory, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principalID := requestcontext.PrincipalID(ctx)
			if principalID.IsZero() {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			isAdmin, err := roles.IsAdmin(ctx, principalID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve principal role",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal", "")
				return
			}
			if !isAdmin {
				logger.WarnContext(ctx, "admin route denied",
					"principal_id", principalID.String(),
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "eligibility_denied", "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := `{"error":"` + errCode + `"`
	if errDesc != "" {
		body += `,"error_description":"` + errDesc + `"`
	}
	body += `}`
	_, _ = w.Write([]byte(body))
}
