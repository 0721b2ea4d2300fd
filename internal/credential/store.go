package credential

import (
	"context"

	id "votecast/pkg/domain"
)

// Store persists credential records. Usage counters only ever increase.
type Store interface {
	Create(ctx context.Context, record *Record) error
	ListByPrincipal(ctx context.Context, principalID id.PrincipalID) ([]*Record, error)
	IncrementUsage(ctx context.Context, credentialID id.CredentialID) (int64, error)
}
