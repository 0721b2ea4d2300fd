package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

// uniqueViolationCode is the SQLSTATE for unique constraint violations.
const uniqueViolationCode = "23505"

// PostgresStore persists principals in PostgreSQL. This store is pure I/O;
// invariants (handle uniqueness aside) belong in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, principal *Principal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO principals (id, display_name, contact_handle, password_hash, verified, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		principal.ID.String(),
		principal.DisplayName,
		normalizeHandle(principal.ContactHandle),
		principal.PasswordHash,
		principal.Verified,
		string(principal.Role),
		principal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, principalID id.PrincipalID) (*Principal, error) {
	return s.findOne(ctx, `WHERE id = $1`, principalID.String())
}

func (s *PostgresStore) FindByHandle(ctx context.Context, handle string) (*Principal, error) {
	return s.findOne(ctx, `WHERE contact_handle = $1`, normalizeHandle(handle))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*Principal, error) {
	query := `
		SELECT id, display_name, contact_handle, password_hash, verified, role, created_at
		FROM principals ` + where
	row := s.db.QueryRowContext(ctx, query, arg)

	var (
		principal Principal
		rawID     string
		rawRole   string
	)
	err := row.Scan(&rawID, &principal.DisplayName, &principal.ContactHandle,
		&principal.PasswordHash, &principal.Verified, &rawRole, &principal.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse principal id: %w", err)
	}
	principal.ID = id.PrincipalID(parsed)
	principal.Role = Role(rawRole)
	return &principal, nil
}

func (s *PostgresStore) Update(ctx context.Context, principal *Principal) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE principals
		SET display_name = $2, verified = $3, role = $4
		WHERE id = $1
	`, principal.ID.String(), principal.DisplayName, principal.Verified, string(principal.Role))
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects Postgres unique constraint errors under either
// driver: pgx serves production, lib/pq serves the container-backed tests.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
