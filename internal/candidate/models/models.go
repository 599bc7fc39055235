// Package models defines the Candidate aggregate: the work-domain selection,
// per-domain progress, top-level pipeline status, and the candidate's
// assigned-round history.
package models

import (
	"time"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// PipelineStatus is the candidate's top-level state across the whole
// assignment/evaluation workflow. It is derived from domain progress and
// assignment outcomes; clients never set it directly.
type PipelineStatus string

const (
	StatusInProgress                PipelineStatus = "in_progress"
	StatusWaitingForAssignment      PipelineStatus = "waiting_for_assignment"
	StatusAssignedInterviewer       PipelineStatus = "assigned_interviewer"
	StatusAssignedAdmin             PipelineStatus = "assigned_admin"
	StatusWaitingForAdminAssignment PipelineStatus = "waiting_for_admin_assignment"
	StatusFinalAccepted             PipelineStatus = "final_accepted"
	StatusRejected                  PipelineStatus = "rejected"
)

// IsValid checks if the pipeline status is one of the supported enum values.
func (s PipelineStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusWaitingForAssignment, StatusAssignedInterviewer,
		StatusAssignedAdmin, StatusWaitingForAdminAssignment, StatusFinalAccepted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s PipelineStatus) IsTerminal() bool {
	return s == StatusFinalAccepted || s == StatusRejected
}

// DomainStatus tracks a candidate's standing within one work domain.
type DomainStatus string

const (
	DomainInProgress DomainStatus = "in_progress"
	DomainCompleted  DomainStatus = "completed"
	DomainAbandoned  DomainStatus = "abandoned"
)

// IsValid checks if the domain status is one of the supported enum values.
func (s DomainStatus) IsValid() bool {
	switch s {
	case DomainInProgress, DomainCompleted, DomainAbandoned:
		return true
	}
	return false
}

// AssignedRole is the evaluator role an assignment slot is bound to.
type AssignedRole string

const (
	RoleInterviewer AssignedRole = "interviewer"
	RoleAdmin       AssignedRole = "admin"
)

// IsValid checks if the role is one of the supported enum values.
func (r AssignedRole) IsValid() bool {
	return r == RoleInterviewer || r == RoleAdmin
}

// AssignmentStatus tracks one assigned-round slot's lifecycle.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// IsValid checks if the assignment status is one of the supported enum values.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentAssigned, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// FeedbackDecision is the evaluator's verdict on an assigned round.
type FeedbackDecision string

const (
	DecisionPass   FeedbackDecision = "pass"
	DecisionReject FeedbackDecision = "reject"
)

// IsValid checks if the decision is one of the supported enum values.
func (d FeedbackDecision) IsValid() bool {
	return d == DecisionPass || d == DecisionReject
}

// WorkDomain is the candidate's current domain selection.
type WorkDomain struct {
	ID   id.DomainID `json:"id"`
	Name string      `json:"name"`
}

// Schedule records the requested interview logistics. The engine only stores
// them; calendar conflict resolution happens elsewhere.
type Schedule struct {
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Format          string `json:"format,omitempty"`
}

// FeedbackPayload is the evaluator's decision for a completed slot.
type FeedbackPayload struct {
	Decision    FeedbackDecision `json:"decision"`
	Notes       string           `json:"notes,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	SubmittedBy string           `json:"submitted_by,omitempty"`
}

// AssignedRound binds the candidate to an evaluator for one assignment slot.
//
// RoundNumber indexes the human-evaluation slots that begin after the domain
// sequence completes. It is intentionally independent of
// DomainProgress.CurrentRoundIndex, which points into the domain's
// self-service round list.
type AssignedRound struct {
	ID                id.AssignmentID  `json:"id"`
	RoundNumber       int              `json:"round_number"`
	AssignedTo        id.InterviewerID `json:"assigned_to"`
	AssignedToRole    AssignedRole     `json:"assigned_to_role"`
	AssignedAt        time.Time        `json:"assigned_at"`
	AssignedBy        string           `json:"assigned_by,omitempty"`
	Schedule          Schedule         `json:"schedule"`
	Status            AssignmentStatus `json:"status"`
	Feedback          *FeedbackPayload `json:"feedback,omitempty"`
	ResponseSubmitted bool             `json:"response_submitted"`
}

// EvaluatorAssignment is the legacy single-slot pointer superseded by
// AssignedRounds. It is maintained for readers that have not migrated and
// cleared on unassign.
type EvaluatorAssignment struct {
	InterviewerID id.InterviewerID `json:"interviewer_id"`
	Role          AssignedRole     `json:"role"`
	AssignedAt    time.Time        `json:"assigned_at"`
}

// DomainProgress is the candidate's position within one domain's round
// sequence. At most one entry exists per domain ID, and at most one entry is
// in progress matching the current WorkDomain selection.
type DomainProgress struct {
	DomainID          id.DomainID  `json:"domain_id"`
	DomainName        string       `json:"domain_name"`
	CurrentRoundIndex int          `json:"current_round_index"`
	CurrentRoundName  string       `json:"current_round_name,omitempty"`
	Status            DomainStatus `json:"status"`
	ClearedRounds     []id.RoundID `json:"cleared_rounds,omitempty"`
}

// HasCleared reports whether the round is in the cleared set.
func (p *DomainProgress) HasCleared(roundID id.RoundID) bool {
	for _, cleared := range p.ClearedRounds {
		if cleared == roundID {
			return true
		}
	}
	return false
}

// ClearRound adds the round to the cleared set. The add is idempotent:
// repeat attempts never duplicate an entry.
func (p *DomainProgress) ClearRound(roundID id.RoundID) {
	if p.HasCleared(roundID) {
		return
	}
	p.ClearedRounds = append(p.ClearedRounds, roundID)
}

// Candidate is the aggregate root owned by the progress tracker and the
// assignment sequencer. Created on first profile submission, mutated on every
// progression/assignment event, never hard-deleted in normal operation.
type Candidate struct {
	ID               id.CandidateID       `json:"id"`
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	WorkDomain       WorkDomain           `json:"work_domain"`
	Progress         []DomainProgress     `json:"progress,omitempty"`
	PipelineStatus   PipelineStatus       `json:"pipeline_status"`
	LegacyAssignment *EvaluatorAssignment `json:"legacy_assignment,omitempty"`
	AssignedRounds   []AssignedRound      `json:"assigned_rounds,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// NewCandidate creates a Candidate with domain invariant validation. The
// domain's progress entry starts at round index zero.
func NewCandidate(candidateID id.CandidateID, name, email string, workDomain WorkDomain, now time.Time) (*Candidate, error) {
	if candidateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate id cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if workDomain.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "work domain id cannot be nil")
	}

	return &Candidate{
		ID:             candidateID,
		Name:           name,
		Email:          email,
		WorkDomain:     workDomain,
		PipelineStatus: StatusInProgress,
		Progress: []DomainProgress{{
			DomainID:   workDomain.ID,
			DomainName: workDomain.Name,
			Status:     DomainInProgress,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ProgressFor returns the progress entry for a domain, or nil.
// The returned pointer aliases the aggregate's slice entry.
func (c *Candidate) ProgressFor(domainID id.DomainID) *DomainProgress {
	for i := range c.Progress {
		if c.Progress[i].DomainID == domainID {
			return &c.Progress[i]
		}
	}
	return nil
}

// ActiveProgress returns the progress entry matching the current work-domain
// selection, or nil when the candidate has none yet.
func (c *Candidate) ActiveProgress() *DomainProgress {
	return c.ProgressFor(c.WorkDomain.ID)
}

// OutstandingAssignment returns the single slot with status assigned, or nil.
// The aggregate invariant allows at most one.
func (c *Candidate) OutstandingAssignment() *AssignedRound {
	for i := range c.AssignedRounds {
		if c.AssignedRounds[i].Status == AssignmentAssigned {
			return &c.AssignedRounds[i]
		}
	}
	return nil
}

// FindAssignedRound locates a slot by its (roundNumber, role) key, the
// idempotency key for reassign and unassign.
func (c *Candidate) FindAssignedRound(roundNumber int, role AssignedRole) *AssignedRound {
	for i := range c.AssignedRounds {
		if c.AssignedRounds[i].RoundNumber == roundNumber && c.AssignedRounds[i].AssignedToRole == role {
			return &c.AssignedRounds[i]
		}
	}
	return nil
}

// FindAssignedRoundByID locates a slot by its assignment ID.
func (c *Candidate) FindAssignedRoundByID(assignmentID id.AssignmentID) *AssignedRound {
	for i := range c.AssignedRounds {
		if c.AssignedRounds[i].ID == assignmentID {
			return &c.AssignedRounds[i]
		}
	}
	return nil
}

// RemoveAssignedRound deletes the slot matching (roundNumber, role).
// Returns false when no slot matched; nothing is mutated in that case.
func (c *Candidate) RemoveAssignedRound(roundNumber int, role AssignedRole) bool {
	for i := range c.AssignedRounds {
		if c.AssignedRounds[i].RoundNumber == roundNumber && c.AssignedRounds[i].AssignedToRole == role {
			c.AssignedRounds = append(c.AssignedRounds[:i], c.AssignedRounds[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveOutstandingAssignments drops every slot still in status assigned,
// enforcing the single-outstanding-assignment invariant at the write
// boundary before a new slot is appended.
func (c *Candidate) RemoveOutstandingAssignments() {
	kept := c.AssignedRounds[:0]
	for _, round := range c.AssignedRounds {
		if round.Status != AssignmentAssigned {
			kept = append(kept, round)
		}
	}
	c.AssignedRounds = kept
}

// Clone returns a deep copy so stores can hand out aggregates without
// sharing mutable slices with callers.
func (c *Candidate) Clone() *Candidate {
	clone := *c
	clone.Progress = make([]DomainProgress, len(c.Progress))
	for i, progress := range c.Progress {
		progress.ClearedRounds = append([]id.RoundID{}, progress.ClearedRounds...)
		clone.Progress[i] = progress
	}
	clone.AssignedRounds = make([]AssignedRound, len(c.AssignedRounds))
	for i, round := range c.AssignedRounds {
		if round.Feedback != nil {
			feedback := *round.Feedback
			round.Feedback = &feedback
		}
		clone.AssignedRounds[i] = round
	}
	if c.LegacyAssignment != nil {
		legacy := *c.LegacyAssignment
		clone.LegacyAssignment = &legacy
	}
	return &clone
}

// NextAssignmentNumber returns the next slot number in the assignment
// sequence (1-based, monotonically non-decreasing across history).
func (c *Candidate) NextAssignmentNumber() int {
	highest := 0
	for _, round := range c.AssignedRounds {
		if round.RoundNumber > highest {
			highest = round.RoundNumber
		}
	}
	return highest + 1
}
