package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"votecast/internal/audit"
	"votecast/internal/identity"
	"votecast/internal/verification/metrics"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/sentinel"
	"votecast/pkg/requestcontext"
)

// PrincipalVerifier flips a principal's verified flag once every factor has
// passed.
type PrincipalVerifier interface {
	MarkVerified(ctx context.Context, principalID id.PrincipalID) (*identity.Principal, error)
}

// Service orchestrates verification sessions: it walks each session through
// the factor order, records outcomes, and produces the terminal result.
type Service struct {
	store      Store
	principals PrincipalVerifier
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

func New(store Store, principals PrincipalVerifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("verification store is required")
	}
	if principals == nil {
		return nil, errors.New("principal verifier is required")
	}
	svc := &Service{store: store, principals: principals}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// StartSession opens a fresh session for the principal at the first factor.
// Sessions for different principals are fully independent.
func (s *Service) StartSession(ctx context.Context, principalID id.PrincipalID) (*Session, error) {
	session := NewSession(principalID, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification session")
	}
	return session, nil
}

// Get returns the session by ID.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, s.storeError(err)
	}
	return session, nil
}

// RecordOutcome records a pass or fail for the factor the session currently
// expects. Recording any other factor, or recording against a complete
// session, is rejected without touching the stored state.
func (s *Service) RecordOutcome(ctx context.Context, sessionID id.SessionID, kind FactorKind, status FactorStatus, evidence []byte) (*Session, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown factor kind: "+string(kind))
	}

	now := requestcontext.Now(ctx)
	session, err := s.store.Execute(ctx, sessionID,
		func(session *Session) error {
			return session.RecordOutcome(kind, status, evidence, now)
		},
		func(*Session) {},
	)
	if err != nil {
		return nil, s.storeError(err)
	}

	s.metrics.IncrementFactorOutcome(string(kind), string(status))
	return session, nil
}

// RecordAborted marks the session's current factor as not attempted. The
// principal backed out of the ceremony; the session stays where it is.
func (s *Service) RecordAborted(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	now := requestcontext.Now(ctx)
	session, err := s.store.Execute(ctx, sessionID,
		func(session *Session) error { return session.RecordAborted(now) },
		func(*Session) {},
	)
	if err != nil {
		return nil, s.storeError(err)
	}
	return session, nil
}

// Skip completes the session immediately with whatever factors have passed
// so far. Unattempted factors are recorded as skipped.
func (s *Service) Skip(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	now := requestcontext.Now(ctx)
	session, err := s.store.Execute(ctx, sessionID,
		func(session *Session) error { return session.Skip(now) },
		func(*Session) {},
	)
	if err != nil {
		return nil, s.storeError(err)
	}
	return session, nil
}

// Finalize settles the session and returns the terminal result. Passing the
// last factor completes the step walk but does not mark the principal; only
// the first Finalize applies side effects. Finalizing again returns the same
// result and does nothing else, including for sessions completed via Skip.
func (s *Service) Finalize(ctx context.Context, sessionID id.SessionID) (Result, error) {
	now := requestcontext.Now(ctx)

	alreadyFinalized := false
	session, err := s.store.Execute(ctx, sessionID,
		func(session *Session) error {
			alreadyFinalized = session.Finalized
			return nil
		},
		func(session *Session) { session.Finalize(now) },
	)
	if err != nil {
		return Result{}, s.storeError(err)
	}

	result := session.Result()
	if alreadyFinalized {
		return result, nil
	}

	if result.FullyVerified {
		if _, err := s.principals.MarkVerified(ctx, session.PrincipalID); err != nil {
			return Result{}, err
		}
	}

	s.emit(ctx, audit.Event{
		Kind:        audit.KindLogin,
		PrincipalID: session.PrincipalID,
		Message: fmt.Sprintf("verification session finalized: %d of %d factors passed",
			result.PassedCount, len(factorOrder)),
	})
	s.metrics.IncrementFinalized(result.FullyVerified)
	return result, nil
}

// LatestResult returns the result of the principal's most recent completed
// session. The second return is false when the principal has never finished
// a session.
func (s *Service) LatestResult(ctx context.Context, principalID id.PrincipalID) (Result, bool, error) {
	session, err := s.store.FindLatestTerminalByPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Result{}, false, nil
		}
		return Result{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}
	return session.Result(), true, nil
}

func (s *Service) storeError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "verification session not found")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "verification store failure")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
