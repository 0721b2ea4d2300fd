// Package auth implements login: the attempt guard gate, the password check,
// and bearer-token issuance.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"votecast/internal/attempt"
	"votecast/internal/audit"
	"votecast/internal/auth/device"
	"votecast/internal/auth/token"
	"votecast/internal/identity"
	"votecast/internal/platform/metrics"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/requestcontext"
)

// Service authenticates principals. The guard check runs before any
// identity lookup, so an exhausted client scope never touches the store.
type Service struct {
	identities *identity.Service
	guard      *attempt.Guard
	tokens     *token.Service
	devices    *device.Service
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithDeviceService(devices *device.Service) Option {
	return func(s *Service) { s.devices = devices }
}

func New(identities *identity.Service, guard *attempt.Guard, tokens *token.Service, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, errors.New("identity service is required")
	}
	if guard == nil {
		return nil, errors.New("attempt guard is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	svc := &Service{
		identities: identities,
		guard:      guard,
		tokens:     tokens,
		devices:    device.NewService(true),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login authenticates a contact handle and password, returning a signed
// bearer token. Wrong handle and wrong password produce the same error so
// the endpoint cannot be used to enumerate handles.
func (s *Service) Login(ctx context.Context, handle, password string) (string, *identity.Principal, error) {
	scope := s.clientScope(ctx)
	if err := s.guard.Check(ctx, scope); err != nil {
		return "", nil, err
	}

	principal, err := s.identities.FindByHandle(ctx, handle)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return "", nil, s.loginFailed(ctx, scope, handle)
		}
		return "", nil, err
	}

	if !s.identities.VerifyPassword(principal, password) {
		return "", nil, s.loginFailed(ctx, scope, handle)
	}

	if err := s.guard.RecordAttempt(ctx, scope, true); err != nil {
		return "", nil, err
	}

	signed, err := s.tokens.Generate(principal.ID, string(principal.Role), requestcontext.Now(ctx))
	if err != nil {
		return "", nil, err
	}

	s.emit(ctx, audit.Event{
		Kind:        audit.KindLogin,
		PrincipalID: principal.ID,
		Message:     "login succeeded for " + principal.ContactHandle,
		Metadata:    map[string]string{"device": device.ParseUserAgent(requestcontext.UserAgent(ctx))},
	})
	if s.metrics != nil {
		s.metrics.LoginsSucceeded.Inc()
	}
	return signed, principal, nil
}

// ClientScope derives the attempt-guard key for the current request: the
// device fingerprint when one is computable, the caller origin otherwise.
func (s *Service) ClientScope(ctx context.Context) string {
	return s.clientScope(ctx)
}

func (s *Service) clientScope(ctx context.Context) string {
	if scope := requestcontext.ClientScope(ctx); scope != "" {
		return scope
	}
	if fp := s.devices.ComputeFingerprint(requestcontext.UserAgent(ctx)); fp != "" {
		return fp
	}
	return requestcontext.Origin(ctx)
}

func (s *Service) loginFailed(ctx context.Context, scope, handle string) error {
	if err := s.guard.RecordAttempt(ctx, scope, false); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Kind:    audit.KindLogin,
		Message: "login failed for " + handle,
		Metadata: map[string]string{
			"device": device.ParseUserAgent(requestcontext.UserAgent(ctx)),
			"origin": requestcontext.Origin(ctx),
		},
	})
	if s.metrics != nil {
		s.metrics.LoginsFailed.Inc()
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
