package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the candidate module.
// Tracks registrations, progression events, and critical path durations.
type Metrics struct {
	CandidatesRegistered prometheus.Counter
	DomainSwitches       prometheus.Counter
	DomainsCompleted     prometheus.Counter
	AdvanceDuration      prometheus.Histogram
}

// New creates a Metrics instance with all candidate module metrics registered.
func New() *Metrics {
	return &Metrics{
		CandidatesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_candidates_registered_total",
			Help: "Total number of candidates registered",
		}),
		DomainSwitches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_domain_switches_total",
			Help: "Total number of work domain switches",
		}),
		DomainsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_domains_completed_total",
			Help: "Total number of domain round sequences completed",
		}),
		AdvanceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "talentgate_progress_advance_duration_seconds",
			Help:    "Duration of progress advance operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCandidatesRegistered records a successful registration.
func (m *Metrics) IncrementCandidatesRegistered() {
	m.CandidatesRegistered.Inc()
}

// IncrementDomainSwitches records a work domain switch.
func (m *Metrics) IncrementDomainSwitches() {
	m.DomainSwitches.Inc()
}

// IncrementDomainsCompleted records a completed domain sequence.
func (m *Metrics) IncrementDomainsCompleted() {
	m.DomainsCompleted.Inc()
}

// ObserveAdvance records the duration of an advance operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAdvance(start time.Time) {
	m.AdvanceDuration.Observe(time.Since(start).Seconds())
}
