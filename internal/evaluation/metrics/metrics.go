package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation module.
// Tracks scoring volume, pass rate inputs, and oracle degradation.
type Metrics struct {
	RoundsScored   prometheus.Counter
	RoundsPassed   prometheus.Counter
	OracleFailures prometheus.Counter
	RetryDenials   prometheus.Counter
	ScoreDuration  prometheus.Histogram
}

// New creates a Metrics instance with all evaluation module metrics registered.
func New() *Metrics {
	return &Metrics{
		RoundsScored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_rounds_scored_total",
			Help: "Total number of round submissions scored",
		}),
		RoundsPassed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_rounds_passed_total",
			Help: "Total number of scored rounds with a passing verdict",
		}),
		OracleFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_oracle_failures_total",
			Help: "Total number of oracle calls degraded to an incorrect verdict",
		}),
		RetryDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_retry_denials_total",
			Help: "Total number of retake checks denied by the freezing period",
		}),
		ScoreDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "talentgate_score_duration_seconds",
			Help:    "Duration of round scoring including oracle calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementRoundsScored records a scored submission.
func (m *Metrics) IncrementRoundsScored() {
	m.RoundsScored.Inc()
}

// IncrementRoundsPassed records a passing verdict.
func (m *Metrics) IncrementRoundsPassed() {
	m.RoundsPassed.Inc()
}

// IncrementOracleFailures records a degraded oracle call.
func (m *Metrics) IncrementOracleFailures() {
	m.OracleFailures.Inc()
}

// IncrementRetryDenials records a freezing-period denial.
func (m *Metrics) IncrementRetryDenials() {
	m.RetryDenials.Inc()
}

// ObserveScore records the duration of a scoring operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveScore(start time.Time) {
	m.ScoreDuration.Observe(time.Since(start).Seconds())
}
