// Package audit captures key pipeline actions as events. Events stay
// transport-agnostic so stores and sinks can fan out: the in-memory store
// serves tests, the outbox store feeds the Kafka producer.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with hiring-decision significance.
	// These require long retention: round outcomes, feedback decisions,
	// terminal pipeline status changes.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: assignment churn, domain switches, progress updates.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	CandidateID string
	Subject     string
	Action      string
	// ActorID tracks who performed the action: the admin who assigned,
	// the evaluator who submitted feedback, or the candidate themselves.
	ActorID   string
	Decision  string
	Reason    string
	RequestID string
}

// AuditEvent names every action the pipeline records.
type AuditEvent string

const (
	EventCandidateRegistered AuditEvent = "candidate_registered"
	EventDomainSwitched      AuditEvent = "domain_switched"
	EventProgressAdvanced    AuditEvent = "progress_advanced"
	EventRoundRecorded       AuditEvent = "round_recorded"
	EventAssignmentCreated   AuditEvent = "assignment_created"
	EventAssignmentReassigned AuditEvent = "assignment_reassigned"
	EventAssignmentRemoved   AuditEvent = "assignment_removed"
	EventFeedbackSubmitted   AuditEvent = "feedback_submitted"
)

// eventCategories maps each audit event to its category. Round outcomes and
// evaluator decisions shape the hiring record; the rest is operational churn.
var eventCategories = map[AuditEvent]EventCategory{
	EventCandidateRegistered:  CategoryCompliance,
	EventDomainSwitched:       CategoryOperations,
	EventProgressAdvanced:     CategoryOperations,
	EventRoundRecorded:        CategoryCompliance,
	EventAssignmentCreated:    CategoryOperations,
	EventAssignmentReassigned: CategoryOperations,
	EventAssignmentRemoved:    CategoryOperations,
	EventFeedbackSubmitted:    CategoryCompliance,
}

// Category returns the category for an event, defaulting to operations for
// unknown actions.
func (e AuditEvent) Category() EventCategory {
	if category, ok := eventCategories[e]; ok {
		return category
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCandidate(ctx context.Context, candidateID string) ([]Event, error)
}

// Publisher emits audit events for pipeline-relevant operations.
// Implementations are best-effort; callers log and continue on error.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
