package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"votecast/internal/identity"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/httputil"
	"votecast/pkg/requestcontext"
)

// RegistrationService creates new principals.
type RegistrationService interface {
	Register(ctx context.Context, handle, displayName, password string) (*identity.Principal, error)
}

// LoginService authenticates a principal and issues a bearer token.
type LoginService interface {
	Login(ctx context.Context, handle, password string) (string, *identity.Principal, error)
}

// AuthHandler wires registration and login endpoints.
type AuthHandler struct {
	registrations RegistrationService
	logins        LoginService
	logger        *slog.Logger
}

func NewAuthHandler(registrations RegistrationService, logins LoginService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		registrations: registrations,
		logins:        logins,
		logger:        logger,
	}
}

// Register mounts the auth endpoints on the router. These routes are public.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

type registerRequest struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validateRegisterRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	principal, err := h.registrations.Register(ctx, req.Handle, req.DisplayName, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"handle", req.Handle,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, principal)
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	Principal   *identity.Principal `json:"principal"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if !govalidator.StringLength(req.Handle, "1", "255") || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "handle and password are required"))
		return
	}

	token, principal, err := h.logins.Login(ctx, req.Handle, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"principal_id", principal.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Principal:   principal,
	})
}

func validateRegisterRequest(req registerRequest) error {
	if !govalidator.StringLength(req.Handle, "1", "255") {
		return dErrors.New(dErrors.CodeInvalidInput, "handle is required")
	}
	// Optional; a blank display name is derived from the handle downstream.
	if req.DisplayName != "" && !govalidator.StringLength(req.DisplayName, "1", "100") {
		return dErrors.New(dErrors.CodeInvalidInput, "display name must be at most 100 characters")
	}
	if !govalidator.StringLength(req.Password, "8", "72") {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be between 8 and 72 characters")
	}
	return nil
}
