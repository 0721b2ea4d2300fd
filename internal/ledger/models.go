package ledger

import (
	"time"

	id "votecast/pkg/domain"
)

// VoteRecord is one cast vote. Append-only: once written it is never mutated
// or deleted, and at most one record exists per (voter, ballot) pair.
type VoteRecord struct {
	VoterID  id.PrincipalID `json:"voter_id"`
	BallotID id.BallotID    `json:"ballot_id"`
	Option   string         `json:"option"`
	CastAt   time.Time      `json:"cast_at"`
	Origin   string         `json:"origin"`
}

// Reason is a specific eligibility denial. Checks run in a fixed order and
// the first failing one wins.
type Reason string

const (
	ReasonNotAuthenticated Reason = "not_authenticated"
	ReasonNotVerified      Reason = "not_verified"
	ReasonAlreadyVoted     Reason = "already_voted"
	ReasonRateLimited      Reason = "rate_limited"
)

// Eligibility is the computed right of a principal to vote on a ballot right
// now. Reason is set only when Eligible is false.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason,omitempty"`
}

func eligible() Eligibility           { return Eligibility{Eligible: true} }
func ineligible(r Reason) Eligibility { return Eligibility{Reason: r} }
