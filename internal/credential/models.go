package credential

import (
	"time"

	id "votecast/pkg/domain"
)

// Record is a possession-factor credential registered by a principal. One
// principal may own zero or many; records are created only through a
// successful registration ceremony.
type Record struct {
	ID           id.CredentialID `json:"id"`
	PrincipalID  id.PrincipalID  `json:"principal_id"`
	PublicKey    string          `json:"public_key"` // opaque public material
	UsageCounter int64           `json:"usage_counter"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Evidence is the opaque proof artifact produced by a successful possession
// ceremony. Immutable once produced.
type Evidence struct {
	CredentialID id.CredentialID `json:"credential_id"`
	Token        string          `json:"token"`
	CapturedAt   time.Time       `json:"captured_at"`
}

// ImageEvidence is a captured still image used by the likeness and document
// factors. The payload format is opaque to everything but the matcher.
type ImageEvidence struct {
	Data       []byte    `json:"data"`
	CapturedAt time.Time `json:"captured_at"`
}

// IsEmpty reports whether no image payload is attached.
func (e ImageEvidence) IsEmpty() bool { return len(e.Data) == 0 }

// DocumentEvidence is the proof artifact of an accepted document check. The
// document number is retained masked; the raw value never leaves the check.
type DocumentEvidence struct {
	MaskedNumber string    `json:"masked_number"`
	Token        string    `json:"token"`
	CapturedAt   time.Time `json:"captured_at"`
}

// MaskDocumentNumber keeps only the last four digits, matching what the
// original card preview displayed.
func MaskDocumentNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number))
	for i := range masked {
		masked[i] = 'X'
	}
	copy(masked[len(number)-4:], number[len(number)-4:])
	return string(masked)
}
