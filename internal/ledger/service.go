package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"votecast/internal/audit"
	"votecast/internal/identity"
	"votecast/internal/ledger/metrics"
	"votecast/internal/platform/config"
	"votecast/internal/verification"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/sentinel"
	"votecast/pkg/requestcontext"
)

var tracer = otel.Tracer("votecast/internal/ledger")

// PrincipalReader looks up principals for eligibility checks.
type PrincipalReader interface {
	Get(ctx context.Context, principalID id.PrincipalID) (*identity.Principal, error)
}

// VerificationReader reports the principal's latest completed verification
// result for the minimum-factor policy.
type VerificationReader interface {
	LatestResult(ctx context.Context, principalID id.PrincipalID) (verification.Result, bool, error)
}

// Service is the vote ledger: the single authority on whether a principal
// may vote on a ballot and the sole writer of vote records.
type Service struct {
	votes         Store
	principals    PrincipalReader
	verifications VerificationReader
	policy        config.EligibilityConfig
	auditor       audit.Emitter
	metrics       *metrics.Metrics
	logger        *slog.Logger

	// locks serializes cast attempts per (voter, ballot) pair so the
	// eligibility re-check and the insert form one critical section. The
	// store's conditional insert remains the backstop for multi-process
	// deployments.
	mu    sync.Mutex
	locks map[voteKey]*sync.Mutex
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

func New(votes Store, principals PrincipalReader, verifications VerificationReader, policy config.EligibilityConfig, opts ...Option) (*Service, error) {
	if votes == nil {
		return nil, errors.New("vote store is required")
	}
	if principals == nil {
		return nil, errors.New("principal reader is required")
	}
	if verifications == nil {
		return nil, errors.New("verification reader is required")
	}
	if policy.VoteCap <= 0 {
		return nil, errors.New("vote cap must be positive")
	}
	if policy.VoteWindow <= 0 {
		return nil, errors.New("vote window must be positive")
	}
	svc := &Service{
		votes:         votes,
		principals:    principals,
		verifications: verifications,
		policy:        policy,
		locks:         make(map[voteKey]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckEligibility evaluates the denial checks in their fixed order and
// short-circuits on the first failure. Callers use it as a pre-check; the
// authoritative check runs again inside CastVote.
func (s *Service) CheckEligibility(ctx context.Context, principalID id.PrincipalID, ballotID id.BallotID) (Eligibility, error) {
	if principalID.IsZero() {
		return ineligible(ReasonNotAuthenticated), nil
	}

	principal, err := s.principals.Get(ctx, principalID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return ineligible(ReasonNotAuthenticated), nil
		}
		return Eligibility{}, err
	}
	if !principal.Verified {
		return ineligible(ReasonNotVerified), nil
	}
	if s.policy.MinVerifiedFactors > 0 {
		result, found, err := s.verifications.LatestResult(ctx, principalID)
		if err != nil {
			return Eligibility{}, err
		}
		if !found || result.PassedCount < s.policy.MinVerifiedFactors {
			return ineligible(ReasonNotVerified), nil
		}
	}

	voted, err := s.votes.Exists(ctx, principalID, ballotID)
	if err != nil {
		return Eligibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check vote history")
	}
	if voted {
		return ineligible(ReasonAlreadyVoted), nil
	}

	since := requestcontext.Now(ctx).Add(-s.policy.VoteWindow)
	recent, err := s.votes.CountByVoterSince(ctx, principalID, since)
	if err != nil {
		return Eligibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count recent votes")
	}
	if recent >= s.policy.VoteCap {
		return ineligible(ReasonRateLimited), nil
	}

	return eligible(), nil
}

// CastVote re-runs eligibility under the pair lock and appends the record.
// On any denial no record is written and the specific reason comes back,
// never a generic failure.
func (s *Service) CastVote(ctx context.Context, principalID id.PrincipalID, ballotID id.BallotID, option string) (*VoteRecord, error) {
	if option == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ballot option is required")
	}

	ctx, span := tracer.Start(ctx, "ledger.CastVote", trace.WithAttributes(
		attribute.String("ballot.id", ballotID.String()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveCastLatency(time.Since(start))
	}()

	unlock := s.lockPair(principalID, ballotID)
	defer unlock()

	elig, err := s.CheckEligibility(ctx, principalID, ballotID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !elig.Eligible {
		return nil, s.deny(ctx, principalID, ballotID, elig.Reason)
	}

	record := &VoteRecord{
		VoterID:  principalID,
		BallotID: ballotID,
		Option:   option,
		CastAt:   requestcontext.Now(ctx),
		Origin:   requestcontext.Origin(ctx),
	}
	if err := s.votes.Insert(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with another process; same denial as the check.
			return nil, s.deny(ctx, principalID, ballotID, ReasonAlreadyVoted)
		}
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append vote record")
	}

	s.emit(ctx, audit.Event{
		Kind:        audit.KindVote,
		PrincipalID: principalID,
		Message:     "vote cast on ballot " + ballotID.String(),
		Metadata:    map[string]string{"origin": record.Origin},
	})
	s.metrics.IncrementOutcome("accepted")
	return record, nil
}

// Tally returns per-option counts for the ballot.
func (s *Service) Tally(ctx context.Context, ballotID id.BallotID) (map[string]int, error) {
	tally, err := s.votes.Tally(ctx, ballotID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to tally ballot")
	}
	return tally, nil
}

// deny converts a denial reason into its domain error and records the
// side-band signals. Rate-limit denials land in the security log.
func (s *Service) deny(ctx context.Context, principalID id.PrincipalID, ballotID id.BallotID, reason Reason) error {
	s.metrics.IncrementOutcome(string(reason))

	if reason == ReasonRateLimited {
		s.emit(ctx, audit.Event{
			Kind:        audit.KindRateLimit,
			PrincipalID: principalID,
			Message:     "vote rate limit reached on ballot " + ballotID.String(),
		})
	}

	switch reason {
	case ReasonNotAuthenticated:
		return dErrors.New(dErrors.CodeUnauthorized, "principal is not authenticated")
	case ReasonNotVerified:
		return dErrors.New(dErrors.CodeEligibility, "principal is not verified")
	case ReasonAlreadyVoted:
		return dErrors.New(dErrors.CodeEligibility, "principal already voted on this ballot")
	case ReasonRateLimited:
		return dErrors.New(dErrors.CodeRateLimited, "vote rate limit reached")
	default:
		return dErrors.New(dErrors.CodeInternal, "unknown eligibility denial")
	}
}

func (s *Service) lockPair(principalID id.PrincipalID, ballotID id.BallotID) func() {
	key := voteKey{voter: principalID, ballot: ballotID}

	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
