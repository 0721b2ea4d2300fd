package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"votecast/internal/identity"
	"votecast/internal/platform/config"
	"votecast/internal/verification"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/requestcontext"
)

type principalsStub struct {
	mu         sync.Mutex
	principals map[id.PrincipalID]*identity.Principal
	lookups    int
}

func (p *principalsStub) add(verified bool) id.PrincipalID {
	p.mu.Lock()
	defer p.mu.Unlock()
	pid := id.PrincipalID(uuid.New())
	if p.principals == nil {
		p.principals = make(map[id.PrincipalID]*identity.Principal)
	}
	p.principals[pid] = &identity.Principal{ID: pid, Verified: verified, Role: identity.RoleVoter}
	return pid
}

func (p *principalsStub) Get(_ context.Context, principalID id.PrincipalID) (*identity.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	principal, ok := p.principals[principalID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "principal not found")
	}
	return principal, nil
}

type verificationsStub struct {
	results map[id.PrincipalID]verification.Result
}

func (v *verificationsStub) LatestResult(_ context.Context, principalID id.PrincipalID) (verification.Result, bool, error) {
	result, ok := v.results[principalID]
	return result, ok, nil
}

type ServiceSuite struct {
	suite.Suite
	svc           *Service
	store         *InMemoryStore
	principals    *principalsStub
	verifications *verificationsStub
	now           time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.principals = &principalsStub{}
	s.verifications = &verificationsStub{results: make(map[id.PrincipalID]verification.Result)}
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	svc, err := New(s.store, s.principals, s.verifications, config.EligibilityConfig{
		VoteCap:    5,
		VoteWindow: time.Hour,
	})
	s.Require().NoError(err)
	s.svc = svc
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) ctxAt(t time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), t)
	return requestcontext.WithOrigin(ctx, "203.0.113.7")
}

func (s *ServiceSuite) TestEligibilityOrder() {
	ballotID := id.NewBallotID()

	s.Run("zero principal is not authenticated", func() {
		elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), id.PrincipalID{}, ballotID)
		s.Require().NoError(err)
		s.False(elig.Eligible)
		s.Equal(ReasonNotAuthenticated, elig.Reason)
	})

	s.Run("unknown principal is not authenticated", func() {
		elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), id.PrincipalID(uuid.New()), ballotID)
		s.Require().NoError(err)
		s.Equal(ReasonNotAuthenticated, elig.Reason)
	})

	s.Run("unverified principal is denied before vote history is consulted", func() {
		pid := s.principals.add(false)
		elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), pid, ballotID)
		s.Require().NoError(err)
		s.Equal(ReasonNotVerified, elig.Reason)
	})

	s.Run("verified principal with no history is eligible", func() {
		pid := s.principals.add(true)
		elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), pid, ballotID)
		s.Require().NoError(err)
		s.True(elig.Eligible)
		s.Empty(elig.Reason)
	})

	s.Run("already voted wins over rate limiting", func() {
		pid := s.principals.add(true)
		_, err := s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
		s.Require().NoError(err)

		elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), pid, ballotID)
		s.Require().NoError(err)
		s.Equal(ReasonAlreadyVoted, elig.Reason)
	})
}

func (s *ServiceSuite) TestMinVerifiedFactorsPolicy() {
	svc, err := New(s.store, s.principals, s.verifications, config.EligibilityConfig{
		VoteCap:            5,
		VoteWindow:         time.Hour,
		MinVerifiedFactors: 3,
	})
	s.Require().NoError(err)

	s.Run("verified flag alone is not enough", func() {
		pid := s.principals.add(true)
		elig, err := svc.CheckEligibility(s.ctxAt(s.now), pid, id.NewBallotID())
		s.Require().NoError(err)
		s.Equal(ReasonNotVerified, elig.Reason)
	})

	s.Run("partial verification stays denied", func() {
		pid := s.principals.add(true)
		s.verifications.results[pid] = verification.Result{PassedCount: 2}
		elig, err := svc.CheckEligibility(s.ctxAt(s.now), pid, id.NewBallotID())
		s.Require().NoError(err)
		s.Equal(ReasonNotVerified, elig.Reason)
	})

	s.Run("full verification passes the policy", func() {
		pid := s.principals.add(true)
		s.verifications.results[pid] = verification.Result{FullyVerified: true, PassedCount: 3}
		elig, err := svc.CheckEligibility(s.ctxAt(s.now), pid, id.NewBallotID())
		s.Require().NoError(err)
		s.True(elig.Eligible)
	})
}

func (s *ServiceSuite) TestCastVote() {
	s.Run("cast appends a record with the request time and origin", func() {
		pid := s.principals.add(true)
		ballotID := id.NewBallotID()

		record, err := s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
		s.Require().NoError(err)
		s.Equal(pid, record.VoterID)
		s.Equal(ballotID, record.BallotID)
		s.Equal("yes", record.Option)
		s.Equal(s.now, record.CastAt)
		s.Equal("203.0.113.7", record.Origin)
	})

	s.Run("empty option is rejected", func() {
		pid := s.principals.add(true)
		_, err := s.svc.CastVote(s.ctxAt(s.now), pid, id.NewBallotID(), "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("second cast on the same ballot is denied with AlreadyVoted", func() {
		pid := s.principals.add(true)
		ballotID := id.NewBallotID()

		_, err := s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
		s.Require().NoError(err)

		_, err = s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "no")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeEligibility))

		tally, err := s.svc.Tally(s.ctxAt(s.now), ballotID)
		s.Require().NoError(err)
		s.Equal(map[string]int{"yes": 1}, tally)
	})

	s.Run("denied cast writes nothing", func() {
		pid := s.principals.add(false)
		ballotID := id.NewBallotID()

		_, err := s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
		s.Require().Error(err)

		tally, err := s.svc.Tally(s.ctxAt(s.now), ballotID)
		s.Require().NoError(err)
		s.Empty(tally)
	})
}

func (s *ServiceSuite) TestRateLimitWindow() {
	pid := s.principals.add(true)

	// Five votes on distinct ballots, one minute apart.
	for i := range 5 {
		castAt := s.now.Add(time.Duration(i) * time.Minute)
		_, err := s.svc.CastVote(s.ctxAt(castAt), pid, id.NewBallotID(), "yes")
		s.Require().NoError(err)
	}

	s.Run("sixth vote within the window is rate limited", func() {
		_, err := s.svc.CastVote(s.ctxAt(s.now.Add(5*time.Minute)), pid, id.NewBallotID(), "yes")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	})

	s.Run("cap frees up once the oldest vote leaves the window", func() {
		afterOldest := s.now.Add(time.Hour + time.Second)
		_, err := s.svc.CastVote(s.ctxAt(afterOldest), pid, id.NewBallotID(), "yes")
		s.Require().NoError(err)

		// The freed slot was exactly one; the next cast is limited again.
		_, err = s.svc.CastVote(s.ctxAt(afterOldest), pid, id.NewBallotID(), "yes")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	})
}

func (s *ServiceSuite) TestCheckAndCastAgree() {
	pid := s.principals.add(true)
	ballotID := id.NewBallotID()

	elig, err := s.svc.CheckEligibility(s.ctxAt(s.now), pid, ballotID)
	s.Require().NoError(err)
	s.True(elig.Eligible)

	_, err = s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
	s.Require().NoError(err)

	elig, err = s.svc.CheckEligibility(s.ctxAt(s.now), pid, ballotID)
	s.Require().NoError(err)
	s.Equal(ReasonAlreadyVoted, elig.Reason)

	_, err = s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeEligibility))
}

func (s *ServiceSuite) TestConcurrentCastsSamePair() {
	pid := s.principals.add(true)
	ballotID := id.NewBallotID()

	var (
		wg        sync.WaitGroup
		successes sync.Map
		succeeded int
	)
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.svc.CastVote(s.ctxAt(s.now), pid, ballotID, "yes")
			if err == nil {
				successes.Store(n, true)
			}
		}(i)
	}
	wg.Wait()

	successes.Range(func(any, any) bool {
		succeeded++
		return true
	})
	s.Equal(1, succeeded)

	tally, err := s.svc.Tally(s.ctxAt(s.now), ballotID)
	s.Require().NoError(err)
	s.Equal(map[string]int{"yes": 1}, tally)
}
