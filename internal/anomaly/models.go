package anomaly

// AlertKind names one detection rule.
type AlertKind string

const (
	KindRapidVoting  AlertKind = "rapid_voting"
	KindIPClustering AlertKind = "ip_clustering"
)

// Severity is advisory metadata for the operator view. The detector never
// blocks or reverses a vote.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Alert is one suspicious pattern surfaced by a scan. Subject identifies
// what tripped the rule: a principal ID for rapid voting, an origin address
// for clustering.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Subject  string    `json:"subject"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}
