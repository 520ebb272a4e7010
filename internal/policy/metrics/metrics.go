package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for policy binding and premium calculation.
type Metrics struct {
	// Policies bound by pricing path: "engine" or "simple"
	PoliciesBound *prometheus.CounterVec

	PoliciesUpdated prometheus.Counter

	// Bind attempts rejected because the loan already had a policy
	BindConflicts prometheus.Counter

	// Calculations appended to history by method
	Calculations *prometheus.CounterVec

	BindLatency prometheus.Histogram
}

// New registers the policy metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PoliciesBound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protekt_policies_bound_total",
			Help: "Total policies bound to loans by pricing path",
		}, []string{"path"}),
		PoliciesUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_policies_updated_total",
			Help: "Total policy updates",
		}),
		BindConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_policy_bind_conflicts_total",
			Help: "Total policy binds rejected because the loan was already insured",
		}),
		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protekt_premium_calculations_total",
			Help: "Total premium calculations recorded by calculation method",
		}, []string{"method"}),
		BindLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "protekt_policy_bind_duration_seconds",
			Help:    "Duration of policy binding including premium calculation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementBound(path string) {
	if m != nil {
		m.PoliciesBound.WithLabelValues(path).Inc()
	}
}

func (m *Metrics) IncrementUpdated() {
	if m != nil {
		m.PoliciesUpdated.Inc()
	}
}

func (m *Metrics) IncrementBindConflict() {
	if m != nil {
		m.BindConflicts.Inc()
	}
}

func (m *Metrics) IncrementCalculation(method string) {
	if m != nil {
		m.Calculations.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) ObserveBindLatency(d time.Duration) {
	if m != nil {
		m.BindLatency.Observe(d.Seconds())
	}
}
