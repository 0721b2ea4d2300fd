package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the vote ledger.
type Metrics struct {
	// Cast outcomes: "accepted" or the denial reason
	CastOutcome *prometheus.CounterVec

	// Full cast latency including the eligibility re-check
	CastLatency prometheus.Histogram
}

// New creates a new Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		CastOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votecast_ledger_cast_outcomes_total",
			Help: "Total vote cast attempts by outcome",
		}, []string{"outcome"}),

		CastLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "votecast_ledger_cast_duration_seconds",
			Help:    "Duration of vote cast operations including eligibility checks",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records one cast attempt outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.CastOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveCastLatency records the duration of a cast operation.
func (m *Metrics) ObserveCastLatency(d time.Duration) {
	if m != nil {
		m.CastLatency.Observe(d.Seconds())
	}
}
