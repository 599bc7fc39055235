package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assignment module.
type Metrics struct {
	AssignmentsCreated  prometheus.Counter
	Reassignments       prometheus.Counter
	Unassignments       prometheus.Counter
	FeedbackSubmissions prometheus.Counter
	ConsistencyWarnings prometheus.Counter
}

// New creates a Metrics instance with all assignment module metrics registered.
func New() *Metrics {
	return &Metrics{
		AssignmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_assignments_created_total",
			Help: "Total number of evaluator assignments created",
		}),
		Reassignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_reassignments_total",
			Help: "Total number of assignment slots moved to a new evaluator",
		}),
		Unassignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_unassignments_total",
			Help: "Total number of assignment slots removed",
		}),
		FeedbackSubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_feedback_submissions_total",
			Help: "Total number of evaluator feedback submissions",
		}),
		ConsistencyWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_assignment_consistency_warnings_total",
			Help: "Total number of best-effort secondary writes that failed",
		}),
	}
}

// IncrementAssignmentsCreated records a new assignment.
func (m *Metrics) IncrementAssignmentsCreated() {
	m.AssignmentsCreated.Inc()
}

// IncrementReassignments records a slot reassignment.
func (m *Metrics) IncrementReassignments() {
	m.Reassignments.Inc()
}

// IncrementUnassignments records a slot removal.
func (m *Metrics) IncrementUnassignments() {
	m.Unassignments.Inc()
}

// IncrementFeedbackSubmissions records a feedback submission.
func (m *Metrics) IncrementFeedbackSubmissions() {
	m.FeedbackSubmissions.Inc()
}

// IncrementConsistencyWarnings records a failed secondary write.
func (m *Metrics) IncrementConsistencyWarnings() {
	m.ConsistencyWarnings.Inc()
}
