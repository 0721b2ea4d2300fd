package identity

import (
	"context"

	id "votecast/pkg/domain"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory or Postgres persistence without rewiring business code.
// Implementations return sentinel.ErrNotFound for missing principals and
// sentinel.ErrConflict when a contact handle is already taken.
type Store interface {
	Create(ctx context.Context, principal *Principal) error
	FindByID(ctx context.Context, principalID id.PrincipalID) (*Principal, error)
	FindByHandle(ctx context.Context, handle string) (*Principal, error)
	Update(ctx context.Context, principal *Principal) error
}
