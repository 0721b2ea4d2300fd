// Package domain holds typed identifiers shared across bounded contexts.
//
// Each identifier is a distinct named type over uuid.UUID so the compiler
// rejects cross-type assignment (a BallotID can never be passed where a
// PrincipalID is expected). Parse functions enforce the invariant that IDs
// are valid, non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "votecast/pkg/domain-errors"
)

type (
	// PrincipalID identifies a registered voter or admin.
	PrincipalID uuid.UUID
	// BallotID identifies a poll/election instance.
	BallotID uuid.UUID
	// SessionID identifies a verification session.
	SessionID uuid.UUID
	// CredentialID identifies a possession-factor credential.
	CredentialID uuid.UUID
)

func NewPrincipalID() PrincipalID   { return PrincipalID(uuid.New()) }
func NewBallotID() BallotID         { return BallotID(uuid.New()) }
func NewSessionID() SessionID       { return SessionID(uuid.New()) }
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }

func (id PrincipalID) String() string  { return uuid.UUID(id).String() }
func (id BallotID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }

// The ID types marshal as canonical UUID strings. Named types do not inherit
// uuid.UUID's methods, so each implements encoding.TextMarshaler explicitly.

func (id PrincipalID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id BallotID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id CredentialID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PrincipalID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = PrincipalID(u)
	return err
}

func (id *BallotID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = BallotID(u)
	return err
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = SessionID(u)
	return err
}

func (id *CredentialID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = CredentialID(u)
	return err
}

func (id PrincipalID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id BallotID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParsePrincipalID parses and validates a principal identifier.
func ParsePrincipalID(s string) (PrincipalID, error) {
	u, err := parseUUID(s, "principal id")
	return PrincipalID(u), err
}

// ParseBallotID parses and validates a ballot identifier.
func ParseBallotID(s string) (BallotID, error) {
	u, err := parseUUID(s, "ballot id")
	return BallotID(u), err
}

// ParseSessionID parses and validates a verification session identifier.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseCredentialID parses and validates a credential identifier.
func ParseCredentialID(s string) (CredentialID, error) {
	u, err := parseUUID(s, "credential id")
	return CredentialID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return u, nil
}
