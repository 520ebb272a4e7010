package eligibility

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for eligibility checks.
type Metrics struct {
	// Checks by the furthest stage reached: none, member, customer, active_loan, insured
	Outcomes *prometheus.CounterVec

	// Lookups that failed and were answered with a degraded result, by stage
	Degraded *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protekt_eligibility_checks_total",
			Help: "Total eligibility checks by furthest stage reached",
		}, []string{"outcome"}),
		Degraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protekt_eligibility_degraded_total",
			Help: "Total eligibility lookups that failed and degraded the result",
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementDegraded(stage string) {
	if m != nil {
		m.Degraded.WithLabelValues(stage).Inc()
	}
}
