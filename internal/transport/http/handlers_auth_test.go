package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"votecast/internal/identity"
	"votecast/internal/transport/http/mocks"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks
type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) newHandler(t *testing.T) (*mocks.MockRegistrationService, *mocks.MockLoginService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	registrations := mocks.NewMockRegistrationService(ctrl)
	logins := mocks.NewMockLoginService(ctrl)
	handler := NewAuthHandler(registrations, logins, logger)
	r := chi.NewRouter()
	handler.Register(r)
	return registrations, logins, r
}

func (s *AuthHandlerSuite) doRequest(t *testing.T, router *chi.Mux, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return rr.Code, decoded
}

func (s *AuthHandlerSuite) TestHandler_Register() {
	validBody := `{"handle":"ada@example.com","display_name":"Ada","password":"correct horse"}`

	s.T().Run("principal created - 201", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		principal := &identity.Principal{
			ID:            id.NewPrincipalID(),
			DisplayName:   "Ada",
			ContactHandle: "ada@example.com",
			Role:          identity.RoleVoter,
			CreatedAt:     time.Now(),
		}
		registrations.EXPECT().
			Register(gomock.Any(), "ada@example.com", "Ada", "correct horse").
			Return(principal, nil)

		status, body := s.doRequest(t, router, "/auth/register", validBody)

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, principal.ID.String(), body["id"])
		assert.Equal(t, "ada@example.com", body["contact_handle"])
		assert.Equal(t, false, body["verified"])
		assert.NotContains(t, body, "PasswordHash")
	})

	s.T().Run("returns 400 when request body is invalid json", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		registrations.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, "/auth/register", "{bad-json")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})

	s.T().Run("returns 400 when password is too short", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		registrations.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, "/auth/register",
			`{"handle":"ada@example.com","display_name":"Ada","password":"short"}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})

	s.T().Run("returns 400 when handle missing", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		registrations.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, "/auth/register",
			`{"display_name":"Ada","password":"correct horse"}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})

	s.T().Run("returns 409 when handle already taken", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		registrations.EXPECT().
			Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "handle already registered"))

		status, body := s.doRequest(t, router, "/auth/register", validBody)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, string(dErrors.CodeConflict), body["error"])
	})

	s.T().Run("returns 500 when service fails", func(t *testing.T) {
		registrations, _, router := s.newHandler(t)
		registrations.EXPECT().
			Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("boom"))

		status, body := s.doRequest(t, router, "/auth/register", validBody)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, string(dErrors.CodeInternal), body["error"])
		assert.NotContains(t, body, "error_description")
	})
}

func (s *AuthHandlerSuite) TestHandler_Login() {
	validBody := `{"handle":"ada@example.com","password":"correct horse"}`

	s.T().Run("token issued - 200", func(t *testing.T) {
		_, logins, router := s.newHandler(t)
		principal := &identity.Principal{
			ID:            id.NewPrincipalID(),
			ContactHandle: "ada@example.com",
			Role:          identity.RoleVoter,
		}
		logins.EXPECT().
			Login(gomock.Any(), "ada@example.com", "correct horse").
			Return("signed-token", principal, nil)

		status, body := s.doRequest(t, router, "/auth/login", validBody)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "signed-token", body["access_token"])
		assert.Equal(t, "Bearer", body["token_type"])
	})

	s.T().Run("returns 401 on invalid credentials", func(t *testing.T) {
		_, logins, router := s.newHandler(t)
		logins.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

		status, body := s.doRequest(t, router, "/auth/login", validBody)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, string(dErrors.CodeUnauthorized), body["error"])
		assert.Equal(t, "invalid credentials", body["error_description"])
	})

	s.T().Run("returns 429 when attempts exhausted", func(t *testing.T) {
		_, logins, router := s.newHandler(t)
		logins.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", nil, dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts"))

		status, body := s.doRequest(t, router, "/auth/login", validBody)

		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, string(dErrors.CodeRateLimited), body["error"])
	})

	s.T().Run("returns 400 when fields missing", func(t *testing.T) {
		_, logins, router := s.newHandler(t)
		logins.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, "/auth/login", `{"handle":"ada@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})
}
