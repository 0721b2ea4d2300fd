package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"votecast/internal/audit"
	"votecast/internal/platform/metrics"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/email"
	"votecast/pkg/platform/sentinel"
	"votecast/pkg/requestcontext"
)

// Service owns the Principal lifecycle: registration, lookup, and the
// verified-flag transition.
type Service struct {
	store   Store
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
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

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("identity store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates an unverified voter principal. The contact handle must be
// unique; the password is stored only as a bcrypt hash. A blank display name
// is derived from the handle.
func (s *Service) Register(ctx context.Context, handle, displayName, password string) (*Principal, error) {
	return s.register(ctx, handle, displayName, password, RoleVoter)
}

// RegisterAdmin creates a principal with the admin role. Not exposed over
// HTTP; admins are seeded at bootstrap or promoted operationally.
func (s *Service) RegisterAdmin(ctx context.Context, handle, displayName, password string) (*Principal, error) {
	return s.register(ctx, handle, displayName, password, RoleAdmin)
}

func (s *Service) register(ctx context.Context, handle, displayName, password string, role Role) (*Principal, error) {
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "password exceeds maximum length")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = email.DeriveDisplayName(handle)
	}
	principal, err := NewPrincipal(handle, displayName, string(hash), role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, principal); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "contact handle already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create principal")
	}

	s.emit(ctx, audit.Event{
		Kind:        audit.KindLogin,
		PrincipalID: principal.ID,
		Message:     "new principal registered: " + principal.ContactHandle,
	})
	if s.metrics != nil {
		s.metrics.PrincipalsRegistered.Inc()
	}
	return principal, nil
}

// Get returns the principal by ID.
func (s *Service) Get(ctx context.Context, principalID id.PrincipalID) (*Principal, error) {
	principal, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "principal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load principal")
	}
	return principal, nil
}

// IsAdmin reports whether the principal exists and holds the admin role.
func (s *Service) IsAdmin(ctx context.Context, principalID id.PrincipalID) (bool, error) {
	principal, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load principal")
	}
	return principal.IsAdmin(), nil
}

// FindByHandle returns the principal owning the given contact handle.
func (s *Service) FindByHandle(ctx context.Context, handle string) (*Principal, error) {
	principal, err := s.store.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "principal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load principal")
	}
	return principal, nil
}

// MarkVerified flips the verified flag after confirmation. Idempotent.
func (s *Service) MarkVerified(ctx context.Context, principalID id.PrincipalID) (*Principal, error) {
	principal, err := s.Get(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if principal.Verified {
		return principal, nil
	}

	principal.MarkVerified()
	if err := s.store.Update(ctx, principal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update principal")
	}
	return principal, nil
}

// VerifyPassword checks a candidate password against the stored hash.
func (s *Service) VerifyPassword(principal *Principal, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) == nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
