package ledger

import (
	"context"
	"time"

	id "votecast/pkg/domain"
)

// Store persists vote records. Insert must be conditional on the (voter,
// ballot) pair not existing yet; two concurrent inserts for the same pair
// must never both succeed.
type Store interface {
	// Insert appends the record, or returns sentinel.ErrConflict if a vote
	// for the same (voter, ballot) pair already exists.
	Insert(ctx context.Context, record *VoteRecord) error

	Exists(ctx context.Context, voterID id.PrincipalID, ballotID id.BallotID) (bool, error)

	// CountByVoterSince counts the voter's records cast at or after since,
	// across all ballots.
	CountByVoterSince(ctx context.Context, voterID id.PrincipalID, since time.Time) (int, error)

	// Tally returns per-option vote counts for the ballot.
	Tally(ctx context.Context, ballotID id.BallotID) (map[string]int, error)

	// CountsByVoterSince returns per-voter counts of records cast at or
	// after since. Used by the anomaly scan.
	CountsByVoterSince(ctx context.Context, since time.Time) (map[id.PrincipalID]int, error)

	// CountsByOrigin returns per-origin counts over the entire ledger.
	CountsByOrigin(ctx context.Context) (map[string]int, error)
}
