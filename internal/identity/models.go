package identity

import (
	"strings"
	"time"

	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
)

// Role determines what a principal may do. Voters cast votes; admins also
// read the security log and alerts.
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleVoter || r == RoleAdmin
}

// Principal is the primary identity tracked by the system. Principals are
// never deleted; the store only creates and updates them.
type Principal struct {
	ID            id.PrincipalID `json:"id"`
	DisplayName   string         `json:"display_name"`
	ContactHandle string         `json:"contact_handle"`
	PasswordHash  string         `json:"-"` // never serialize
	Verified      bool           `json:"verified"`
	Role          Role           `json:"role"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewPrincipal creates a Principal with domain invariant validation. New
// principals always start unverified; the verified flag flips only through
// MarkVerified after an explicit confirmation.
func NewPrincipal(handle, displayName, passwordHash string, role Role, now time.Time) (*Principal, error) {
	handle = strings.TrimSpace(handle)
	displayName = strings.TrimSpace(displayName)

	if handle == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "contact handle is required")
	}
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "display name is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password hash is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role: must be 'voter' or 'admin'")
	}

	return &Principal{
		ID:            id.NewPrincipalID(),
		DisplayName:   displayName,
		ContactHandle: handle,
		PasswordHash:  passwordHash,
		Verified:      false,
		Role:          role,
		CreatedAt:     now,
	}, nil
}

// MarkVerified flips the verified flag after out-of-band or in-band
// confirmation.
func (p *Principal) MarkVerified() {
	p.Verified = true
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
