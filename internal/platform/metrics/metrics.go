package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. Context-specific
// metrics (ledger, verification) live in their own packages.
type Metrics struct {
	PrincipalsRegistered prometheus.Counter
	LoginsFailed         prometheus.Counter
	LoginsSucceeded      prometheus.Counter
}

// New creates and registers all application-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PrincipalsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votecast_principals_registered_total",
			Help: "Total number of principals registered in the system",
		}),
		LoginsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votecast_logins_failed_total",
			Help: "Total number of failed login attempts",
		}),
		LoginsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votecast_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
	}
}
