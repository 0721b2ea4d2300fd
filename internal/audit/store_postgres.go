package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "votecast/pkg/domain"
)

// PostgresStore persists security log entries in PostgreSQL. Pure I/O; the
// append-only discipline is enforced by never exposing update or delete.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	var principalID any
	if !event.PrincipalID.IsZero() {
		principalID = event.PrincipalID.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO security_log (kind, principal_id, message, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, string(event.Kind), principalID, event.Message, event.Timestamp, metadata)
	if err != nil {
		return fmt.Errorf("append security log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, principal_id, message, occurred_at, metadata
		FROM security_log
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list security log: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByKind(ctx context.Context, kind Kind, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, principal_id, message, occurred_at, metadata
		FROM security_log
		WHERE kind = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list security log by kind: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event       Event
			kind        string
			principalID sql.NullString
			metadata    []byte
		)
		if err := rows.Scan(&kind, &principalID, &event.Message, &event.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("scan security log entry: %w", err)
		}
		event.Kind = Kind(kind)
		if principalID.Valid {
			if u, err := uuid.Parse(principalID.String); err == nil {
				event.PrincipalID = id.PrincipalID(u)
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
