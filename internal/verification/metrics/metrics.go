package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Factor outcomes by factor kind and status
	FactorOutcome *prometheus.CounterVec

	// Finalized sessions by whether all factors passed
	SessionsFinalized *prometheus.CounterVec
}

// New creates a new Metrics instance with all verification module metrics registered.
func New() *Metrics {
	return &Metrics{
		FactorOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votecast_verification_factor_outcomes_total",
			Help: "Total factor outcomes by factor kind and status",
		}, []string{"factor", "status"}),

		SessionsFinalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votecast_verification_sessions_finalized_total",
			Help: "Total finalized verification sessions by full-verification result",
		}, []string{"fully_verified"}),
	}
}

// IncrementFactorOutcome records one factor attempt outcome.
func (m *Metrics) IncrementFactorOutcome(factor, status string) {
	if m != nil {
		m.FactorOutcome.WithLabelValues(factor, status).Inc()
	}
}

// IncrementFinalized records a finalized session.
func (m *Metrics) IncrementFinalized(fullyVerified bool) {
	if m != nil {
		label := "false"
		if fullyVerified {
			label = "true"
		}
		m.SessionsFinalized.WithLabelValues(label).Inc()
	}
}
