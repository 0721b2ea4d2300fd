package anomaly

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votecast/internal/ledger"
	id "votecast/pkg/domain"
	"votecast/pkg/requestcontext"
	"votecast/pkg/testutil"
)

func seedVotes(t *testing.T, store *ledger.InMemoryStore, voter id.PrincipalID, origin string, castAt time.Time, count int) {
	t.Helper()
	for range count {
		record := &ledger.VoteRecord{
			VoterID:  voter,
			BallotID: id.NewBallotID(),
			Option:   "yes",
			CastAt:   castAt,
			Origin:   origin,
		}
		require.NoError(t, store.Insert(context.Background(), record))
	}
}

func TestScan(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	testutil.Given(t, "a quiet ledger", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		seedVotes(t, store, id.PrincipalID(uuid.New()), "203.0.113.1", now, 2)

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "scan returns no alerts", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			assert.Empty(t, alerts)
		})
	})

	testutil.Given(t, "four votes by one principal within five minutes", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		voter := id.PrincipalID(uuid.New())
		seedVotes(t, store, voter, "203.0.113.1", now.Add(-2*time.Minute), 4)

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "scan emits exactly one high-severity rapid_voting alert", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, KindRapidVoting, alerts[0].Kind)
			assert.Equal(t, SeverityHigh, alerts[0].Severity)
			assert.Equal(t, voter.String(), alerts[0].Subject)
		})
	})

	testutil.Given(t, "three votes by one principal within five minutes", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		seedVotes(t, store, id.PrincipalID(uuid.New()), "203.0.113.1", now.Add(-time.Minute), 3)

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "the threshold is exclusive and no alert fires", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			assert.Empty(t, alerts)
		})
	})

	testutil.Given(t, "four votes by one principal more than five minutes ago", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		seedVotes(t, store, id.PrincipalID(uuid.New()), "203.0.113.1", now.Add(-10*time.Minute), 4)

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "old votes fall outside the rapid-voting window", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			assert.Empty(t, alerts)
		})
	})

	testutil.Given(t, "eleven votes from a single origin", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		origin := "198.51.100.9"
		// Spread across principals and time so only the origin rule fires.
		for range 11 {
			seedVotes(t, store, id.PrincipalID(uuid.New()), origin, now.Add(-24*time.Hour), 1)
		}

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "scan emits exactly one medium-severity ip_clustering alert", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, KindIPClustering, alerts[0].Kind)
			assert.Equal(t, SeverityMedium, alerts[0].Severity)
			assert.Equal(t, origin, alerts[0].Subject)
		})
	})

	testutil.Given(t, "both patterns present at once", func(t *testing.T) {
		store := ledger.NewInMemoryStore()
		voter := id.PrincipalID(uuid.New())
		seedVotes(t, store, voter, "203.0.113.1", now.Add(-time.Minute), 4)
		for range 11 {
			seedVotes(t, store, id.PrincipalID(uuid.New()), "198.51.100.9", now.Add(-24*time.Hour), 1)
		}

		svc, err := New(store)
		require.NoError(t, err)

		testutil.Then(t, "rules are independent and ordering is deterministic", func(t *testing.T) {
			alerts, err := svc.Scan(ctx)
			require.NoError(t, err)
			require.Len(t, alerts, 2)
			assert.Equal(t, KindIPClustering, alerts[0].Kind)
			assert.Equal(t, KindRapidVoting, alerts[1].Kind)

			again, err := svc.Scan(ctx)
			require.NoError(t, err)
			assert.Equal(t, alerts, again)
		})
	})
}
