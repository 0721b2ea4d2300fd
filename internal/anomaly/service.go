package anomaly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"votecast/internal/audit"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/requestcontext"
)

// Detection thresholds. A rule fires strictly above its threshold.
const (
	RapidVotingWindow    = 5 * time.Minute
	RapidVotingThreshold = 3
	ClusteringThreshold  = 10
)

// VoteSource is the ledger view the detector scans. Counts, not records: the
// rules only need aggregates.
type VoteSource interface {
	CountsByVoterSince(ctx context.Context, since time.Time) (map[id.PrincipalID]int, error)
	CountsByOrigin(ctx context.Context) (map[string]int, error)
}

// Service scans the vote ledger for abusive patterns. Purely observational:
// it raises alerts for the operator view and never touches a vote.
type Service struct {
	votes   VoteSource
	auditor audit.Emitter
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func New(votes VoteSource, opts ...Option) (*Service, error) {
	if votes == nil {
		return nil, errors.New("vote source is required")
	}
	svc := &Service{votes: votes}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Scan runs every detection rule against the current ledger. Rules are
// independent: each is evaluated on its own and their alerts are merged in a
// deterministic order (kind, then subject).
func (s *Service) Scan(ctx context.Context) ([]Alert, error) {
	var rapid, clustered []Alert

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rapid, err = s.scanRapidVoting(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clustered, err = s.scanOriginClustering(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "anomaly scan failed")
	}

	alerts := append(rapid, clustered...)
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Kind != alerts[j].Kind {
			return alerts[i].Kind < alerts[j].Kind
		}
		return alerts[i].Subject < alerts[j].Subject
	})

	for _, alert := range alerts {
		s.emit(ctx, audit.Event{
			Kind:    audit.KindSuspicious,
			Message: alert.Message,
			Metadata: map[string]string{
				"alert_kind": string(alert.Kind),
				"severity":   string(alert.Severity),
				"subject":    alert.Subject,
			},
		})
	}
	return alerts, nil
}

// scanRapidVoting flags principals voting faster than a person plausibly
// reads a ballot.
func (s *Service) scanRapidVoting(ctx context.Context) ([]Alert, error) {
	since := requestcontext.Now(ctx).Add(-RapidVotingWindow)
	counts, err := s.votes.CountsByVoterSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for voterID, count := range counts {
		if count <= RapidVotingThreshold {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:    KindRapidVoting,
			Subject: voterID.String(),
			Message: fmt.Sprintf("principal %s cast %d votes within %s",
				voterID.String(), count, RapidVotingWindow),
			Severity: SeverityHigh,
		})
	}
	return alerts, nil
}

// scanOriginClustering flags origins responsible for an outsized share of
// the whole ledger.
func (s *Service) scanOriginClustering(ctx context.Context) ([]Alert, error) {
	counts, err := s.votes.CountsByOrigin(ctx)
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for origin, count := range counts {
		if count <= ClusteringThreshold {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:     KindIPClustering,
			Subject:  origin,
			Message:  fmt.Sprintf("origin %s cast %d votes", origin, count),
			Severity: SeverityMedium,
		})
	}
	return alerts, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
