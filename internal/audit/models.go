package audit

import (
	"time"

	id "votecast/pkg/domain"
)

// Kind classifies a security log entry. The set mirrors the operational
// dashboard's filters, so a new kind needs a dashboard change too.
type Kind string

const (
	KindLogin      Kind = "login"
	KindVote       Kind = "vote"
	KindSuspicious Kind = "suspicious_activity"
	KindRateLimit  Kind = "rate_limit"
)

// IsValid checks if the kind is one of the supported enum values.
func (k Kind) IsValid() bool {
	switch k {
	case KindLogin, KindVote, KindSuspicious, KindRateLimit:
		return true
	}
	return false
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Events are append-only:
// once emitted they are never mutated.
type Event struct {
	Kind        Kind              `json:"kind"`
	PrincipalID id.PrincipalID    `json:"principal_id,omitempty"` // zero when no principal is involved
	Message     string            `json:"message"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
