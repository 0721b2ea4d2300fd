package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

// PostgresStore persists credential records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, principal_id, public_key, usage_counter, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		record.ID.String(),
		record.PrincipalID.String(),
		record.PublicKey,
		record.UsageCounter,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPrincipal(ctx context.Context, principalID id.PrincipalID) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, principal_id, public_key, usage_counter, created_at
		FROM credentials
		WHERE principal_id = $1
		ORDER BY created_at
	`, principalID.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			record         Record
			rawID          string
			rawPrincipalID string
		)
		if err := rows.Scan(&rawID, &rawPrincipalID, &record.PublicKey, &record.UsageCounter, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		credentialID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse credential id: %w", err)
		}
		ownerID, err := uuid.Parse(rawPrincipalID)
		if err != nil {
			return nil, fmt.Errorf("parse credential principal id: %w", err)
		}
		record.ID = id.CredentialID(credentialID)
		record.PrincipalID = id.PrincipalID(ownerID)
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) IncrementUsage(ctx context.Context, credentialID id.CredentialID) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE credentials
		SET usage_counter = usage_counter + 1
		WHERE id = $1
		RETURNING usage_counter
	`, credentialID.String())

	var counter int64
	if err := row.Scan(&counter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment credential usage: %w", err)
	}
	return counter, nil
}
