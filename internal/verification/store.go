package verification

import (
	"context"

	id "votecast/pkg/domain"
)

// Store persists verification sessions. Terminal sessions are kept so the
// factor history stays available for audit.
type Store interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)

	// Execute atomically loads the session, runs validate, and if it
	// returns nil applies mutate and persists the result. Validation
	// errors leave the stored session untouched.
	Execute(ctx context.Context, sessionID id.SessionID,
		validate func(*Session) error, mutate func(*Session)) (*Session, error)

	// FindLatestTerminalByPrincipal returns the most recently started
	// completed session for the principal.
	FindLatestTerminalByPrincipal(ctx context.Context, principalID id.PrincipalID) (*Session, error)
}
