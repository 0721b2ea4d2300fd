package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres through the pgx stdlib driver. Returns nil if the
// DSN is empty (Postgres not configured; in-memory stores are used).
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return db, nil
}

// CreateSchema creates all tables the stores rely on. Safe to call multiple
// times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS principals (
    id UUID PRIMARY KEY,
    display_name TEXT NOT NULL,
    contact_handle TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    verified BOOLEAN NOT NULL DEFAULT FALSE,
    role TEXT NOT NULL CHECK (role IN ('voter', 'admin')),
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
    id UUID PRIMARY KEY,
    principal_id UUID NOT NULL REFERENCES principals(id),
    public_key TEXT NOT NULL,
    usage_counter BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credentials_principal ON credentials(principal_id);

-- Append-only. The primary key carries the one-vote-per-ballot-per-voter
-- invariant; CastVote relies on the conflict, never on an update.
CREATE TABLE IF NOT EXISTS votes (
    voter_id UUID NOT NULL,
    ballot_id UUID NOT NULL,
    option TEXT NOT NULL,
    cast_at TIMESTAMPTZ NOT NULL,
    origin TEXT NOT NULL,
    PRIMARY KEY (voter_id, ballot_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_ballot ON votes(ballot_id);
CREATE INDEX IF NOT EXISTS idx_votes_cast_at ON votes(cast_at);

CREATE TABLE IF NOT EXISTS security_log (
    id BIGSERIAL PRIMARY KEY,
    kind TEXT NOT NULL,
    principal_id UUID,
    message TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    metadata JSONB
);

CREATE INDEX IF NOT EXISTS idx_security_log_kind ON security_log(kind);
CREATE INDEX IF NOT EXISTS idx_security_log_occurred ON security_log(occurred_at);
`
