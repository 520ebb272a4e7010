package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for claim intake.
type Metrics struct {
	ClaimsFiled prometheus.Counter

	EvidenceUploaded prometheus.Counter

	// Objects left behind because a compensating delete failed
	CleanupFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClaimsFiled: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_claims_filed_total",
			Help: "Total claims filed",
		}),
		EvidenceUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_claim_evidence_uploaded_total",
			Help: "Total evidence documents attached to claims",
		}),
		CleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_claim_cleanup_failures_total",
			Help: "Total evidence objects that could not be deleted after a failed claim",
		}),
	}
}

func (m *Metrics) IncrementFiled() {
	if m != nil {
		m.ClaimsFiled.Inc()
	}
}

func (m *Metrics) AddEvidenceUploaded(n int) {
	if m != nil {
		m.EvidenceUploaded.Add(float64(n))
	}
}

func (m *Metrics) AddCleanupFailures(n int) {
	if m != nil && n > 0 {
		m.CleanupFailures.Add(float64(n))
	}
}
