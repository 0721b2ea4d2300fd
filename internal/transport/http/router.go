// Package httptransport is the thin HTTP layer. Handlers decode requests,
// delegate to domain services through narrow interfaces, and encode
// responses; business rules never live here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminmw "votecast/pkg/platform/middleware/admin"
	authmw "votecast/pkg/platform/middleware/auth"
	"votecast/pkg/platform/middleware/metadata"
	"votecast/pkg/platform/middleware/request"
	"votecast/pkg/platform/middleware/requesttime"
)

// RouterConfig carries the handlers and middleware dependencies the router
// mounts.
type RouterConfig struct {
	Auth         *AuthHandler
	Verification *VerificationHandler
	Ballots      *BallotHandler
	Security     *SecurityHandler
	Tokens       authmw.TokenValidator
	Roles        adminmw.RoleDirectory
	Logger       *slog.Logger
}

// NewRouter wires all endpoints behind the shared middleware chain. Routes
// split into three rings: public (registration, login, tallies, health),
// authenticated (verification and voting), and admin (security review).
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	cfg.Auth.Register(r)
	cfg.Ballots.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens, cfg.Logger))
		cfg.Verification.Register(r)
		cfg.Ballots.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(cfg.Roles, cfg.Logger))
			cfg.Security.Register(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
