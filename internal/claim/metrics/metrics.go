package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the claim flow.
type Metrics struct {
	Lookups *prometheus.CounterVec
	Claims  *prometheus.CounterVec
	Edits   prometheus.Counter
}

// New creates and registers the claim metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cardlink_lookups_total",
			Help: "Card lookups by claim state",
		}, []string{"state"}),
		Claims: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cardlink_claims_total",
			Help: "Claim attempts by result",
		}, []string{"result"}),
		Edits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardlink_profile_edits_total",
			Help: "Authenticated profile edits applied",
		}),
	}
}

func (m *Metrics) RecordLookup(state string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordClaim(result string) {
	if m == nil {
		return
	}
	m.Claims.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordEdit() {
	if m == nil {
		return
	}
	m.Edits.Inc()
}
