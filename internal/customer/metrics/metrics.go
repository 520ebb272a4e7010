package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for customer verification.
type Metrics struct {
	CustomersEnrolled prometheus.Counter

	// Verification transitions by target status
	StatusTransitions *prometheus.CounterVec

	DocumentsUploaded prometheus.Counter

	// Documents flipped to verified by the VERIFIED cascade
	DocumentsVerified prometheus.Counter

	// Objects left behind because a compensating delete failed
	CleanupFailures prometheus.Counter
}

// New registers the customer metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CustomersEnrolled: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_customers_enrolled_total",
			Help: "Total customers enrolled",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protekt_verification_transitions_total",
			Help: "Total verification status transitions by target status",
		}, []string{"status"}),
		DocumentsUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_kyc_documents_uploaded_total",
			Help: "Total KYC documents persisted",
		}),
		DocumentsVerified: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_kyc_documents_verified_total",
			Help: "Total KYC documents marked verified",
		}),
		CleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "protekt_kyc_cleanup_failures_total",
			Help: "Total uploaded objects that could not be deleted after a failed upload batch",
		}),
	}
}

func (m *Metrics) IncrementEnrolled() {
	if m != nil {
		m.CustomersEnrolled.Inc()
	}
}

func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) AddDocumentsUploaded(n int) {
	if m != nil {
		m.DocumentsUploaded.Add(float64(n))
	}
}

func (m *Metrics) AddDocumentsVerified(n int) {
	if m != nil {
		m.DocumentsVerified.Add(float64(n))
	}
}

func (m *Metrics) AddCleanupFailures(n int) {
	if m != nil && n > 0 {
		m.CleanupFailures.Add(float64(n))
	}
}
