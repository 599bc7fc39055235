// Package models defines the evaluator aggregate. Interviewers carry a
// denormalized list of their assigned candidates; the workload counters are
// derived from that list on read, never stored, so partial cross-aggregate
// failures self-heal on the next recomputation.
package models

import (
	"time"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// AvailabilityStatus is the evaluator's declared availability.
type AvailabilityStatus string

const (
	AvailabilityActive   AvailabilityStatus = "active"
	AvailabilityInactive AvailabilityStatus = "inactive"
	AvailabilityBusy     AvailabilityStatus = "busy"
)

// IsValid checks if the availability status is one of the supported values.
func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case AvailabilityActive, AvailabilityInactive, AvailabilityBusy:
		return true
	}
	return false
}

// InterviewStatus tracks one assigned-candidate entry on the evaluator side.
type InterviewStatus string

const (
	InterviewAssigned   InterviewStatus = "assigned"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewCancelled  InterviewStatus = "cancelled"
)

// CountsAsActive reports whether the entry contributes to the active
// interview load.
func (s InterviewStatus) CountsAsActive() bool {
	return s == InterviewAssigned || s == InterviewInProgress
}

// AssignedCandidate is a denormalized snapshot of a candidate taken at
// assignment time. Treat it as a cache with refresh-on-assign semantics:
// staleness between refreshes is accepted, not a bug.
type AssignedCandidate struct {
	CandidateID    id.CandidateID  `json:"candidate_id"`
	CandidateName  string          `json:"candidate_name"`
	CandidateEmail string          `json:"candidate_email"`
	DomainName     string          `json:"domain_name,omitempty"`
	Status         InterviewStatus `json:"status"`
	CurrentRound   int             `json:"current_round"`
	TotalRounds    int             `json:"total_rounds"`
	AssignedAt     time.Time       `json:"assigned_at"`
	LastActivity   time.Time       `json:"last_activity"`
	Notes          string          `json:"notes,omitempty"`
}

// Interviewer is the evaluator aggregate root.
type Interviewer struct {
	ID                 id.InterviewerID    `json:"id"`
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Availability       AvailabilityStatus  `json:"availability"`
	AssignedCandidates []AssignedCandidate `json:"assigned_candidates,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// NewInterviewer creates an Interviewer with domain invariant validation.
func NewInterviewer(interviewerID id.InterviewerID, name, email string, now time.Time) (*Interviewer, error) {
	if interviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "interviewer id cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	return &Interviewer{
		ID:           interviewerID,
		Name:         name,
		Email:        email,
		Availability: AvailabilityActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ActiveInterviews is always recomputed from the assigned-candidates list.
// It is never incremented or decremented independently, which is what keeps
// the count drift-free after unassign/reassign races.
func (i *Interviewer) ActiveInterviews() int {
	count := 0
	for _, entry := range i.AssignedCandidates {
		if entry.Status.CountsAsActive() {
			count++
		}
	}
	return count
}

// CompletedInterviews counts finished entries, derived the same way.
func (i *Interviewer) CompletedInterviews() int {
	count := 0
	for _, entry := range i.AssignedCandidates {
		if entry.Status == InterviewCompleted {
			count++
		}
	}
	return count
}

// UpsertAssignedCandidate replaces the entry for the candidate or appends a
// fresh one, refreshing the denormalized snapshot.
func (i *Interviewer) UpsertAssignedCandidate(entry AssignedCandidate) {
	for idx := range i.AssignedCandidates {
		if i.AssignedCandidates[idx].CandidateID == entry.CandidateID {
			i.AssignedCandidates[idx] = entry
			return
		}
	}
	i.AssignedCandidates = append(i.AssignedCandidates, entry)
}

// RemoveAssignedCandidate drops the entry for the candidate.
// Returns false when no entry existed.
func (i *Interviewer) RemoveAssignedCandidate(candidateID id.CandidateID) bool {
	for idx := range i.AssignedCandidates {
		if i.AssignedCandidates[idx].CandidateID == candidateID {
			i.AssignedCandidates = append(i.AssignedCandidates[:idx], i.AssignedCandidates[idx+1:]...)
			return true
		}
	}
	return false
}

// MarkCompleted flips the candidate's entry to completed and stamps the
// activity time. Returns false when no entry existed.
func (i *Interviewer) MarkCompleted(candidateID id.CandidateID, at time.Time) bool {
	for idx := range i.AssignedCandidates {
		if i.AssignedCandidates[idx].CandidateID == candidateID {
			i.AssignedCandidates[idx].Status = InterviewCompleted
			i.AssignedCandidates[idx].LastActivity = at
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores can hand out aggregates without
// sharing mutable slices with callers.
func (i *Interviewer) Clone() *Interviewer {
	clone := *i
	clone.AssignedCandidates = append([]AssignedCandidate{}, i.AssignedCandidates...)
	return &clone
}
