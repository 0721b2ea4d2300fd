package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
	"votecast/pkg/platform/tx"
)

// PostgresStore persists vote records in PostgreSQL. The one-vote invariant
// rides on the (voter_id, ballot_id) primary key; Insert is a conditional
// insert so concurrent casts for the same pair race safely at the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is the intersection of *sql.DB and *sql.Tx the store needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn joins a transaction from context when one is present.
func (s *PostgresStore) conn(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, record *VoteRecord) error {
	result, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO votes (voter_id, ballot_id, option, cast_at, origin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (voter_id, ballot_id) DO NOTHING
	`,
		record.VoterID.String(),
		record.BallotID.String(),
		record.Option,
		record.CastAt,
		record.Origin,
	)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, voterID id.PrincipalID, ballotID id.BallotID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM votes WHERE voter_id = $1 AND ballot_id = $2)
	`, voterID.String(), ballotID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CountByVoterSince(ctx context.Context, voterID id.PrincipalID, since time.Time) (int, error) {
	var count int
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votes WHERE voter_id = $1 AND cast_at >= $2
	`, voterID.String(), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count votes by voter: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Tally(ctx context.Context, ballotID id.BallotID) (map[string]int, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT option, COUNT(*) FROM votes WHERE ballot_id = $1 GROUP BY option
	`, ballotID.String())
	if err != nil {
		return nil, fmt.Errorf("tally ballot: %w", err)
	}
	defer rows.Close()

	tally := make(map[string]int)
	for rows.Next() {
		var (
			option string
			count  int
		)
		if err := rows.Scan(&option, &count); err != nil {
			return nil, fmt.Errorf("tally ballot: %w", err)
		}
		tally[option] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tally ballot: %w", err)
	}
	return tally, nil
}

func (s *PostgresStore) CountsByVoterSince(ctx context.Context, since time.Time) (map[id.PrincipalID]int, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT voter_id, COUNT(*) FROM votes WHERE cast_at >= $1 GROUP BY voter_id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("count votes by voter: %w", err)
	}
	defer rows.Close()

	counts := make(map[id.PrincipalID]int)
	for rows.Next() {
		var (
			rawID string
			count int
		)
		if err := rows.Scan(&rawID, &count); err != nil {
			return nil, fmt.Errorf("count votes by voter: %w", err)
		}
		parsed, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse voter id: %w", err)
		}
		counts[id.PrincipalID(parsed)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count votes by voter: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) CountsByOrigin(ctx context.Context) (map[string]int, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT origin, COUNT(*) FROM votes GROUP BY origin
	`)
	if err != nil {
		return nil, fmt.Errorf("count votes by origin: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			origin string
			count  int
		)
		if err := rows.Scan(&origin, &count); err != nil {
			return nil, fmt.Errorf("count votes by origin: %w", err)
		}
		counts[origin] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count votes by origin: %w", err)
	}
	return counts, nil
}
