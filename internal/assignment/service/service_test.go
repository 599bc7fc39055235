package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	candidatemodels "talentgate/internal/candidate/models"
	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	interviewermodels "talentgate/internal/interviewer/models"
	interviewerstore "talentgate/internal/interviewer/store"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// =============================================================================
// Assignment Sequencer Test Suite
// =============================================================================
// Justification for unit tests: the role sequence, the single-outstanding
// invariant, and the cross-aggregate bookkeeping under partial failure are
// the riskiest paths in the system and need precise state assertions.

type AssignmentServiceSuite struct {
	suite.Suite
	candidates   *candidatestore.InMemoryCandidateStore
	interviewers *interviewerstore.InMemoryInterviewerStore
	rounds       *catalog.Static
	service      *Service
	domainID     id.DomainID
}

func TestAssignmentServiceSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceSuite))
}

func (s *AssignmentServiceSuite) SetupTest() {
	s.candidates = candidatestore.NewMemory()
	s.interviewers = interviewerstore.NewMemory()
	s.rounds = catalog.NewStatic()
	s.domainID = id.NewDomainID()
	s.rounds.SetDomain(s.domainID, []catalog.Round{
		{ID: id.NewRoundID(), Name: "MCQ Screen", Sequence: 1},
		{ID: id.NewRoundID(), Name: "Coding Round", Sequence: 2},
	})

	var err error
	s.service, err = New(s.candidates, s.interviewers, s.rounds)
	s.Require().NoError(err)
}

func (s *AssignmentServiceSuite) seedCandidate(ctx context.Context, email string) *candidatemodels.Candidate {
	candidate, err := candidatemodels.NewCandidate(
		id.NewCandidateID(), "Ada", email,
		candidatemodels.WorkDomain{ID: s.domainID, Name: "Backend"}, time.Now())
	s.Require().NoError(err)
	candidate.PipelineStatus = candidatemodels.StatusWaitingForAssignment
	candidate.ActiveProgress().Status = candidatemodels.DomainCompleted
	s.Require().NoError(s.candidates.Save(ctx, candidate))
	return candidate
}

func (s *AssignmentServiceSuite) seedEvaluator(ctx context.Context, name string, availability interviewermodels.AvailabilityStatus) *interviewermodels.Interviewer {
	evaluator, err := interviewermodels.NewInterviewer(id.NewInterviewerID(), name, name+"@example.com", time.Now())
	s.Require().NoError(err)
	evaluator.Availability = availability
	s.Require().NoError(s.interviewers.Save(ctx, evaluator))
	return evaluator
}

func (s *AssignmentServiceSuite) activeCount(ctx context.Context, evaluatorID id.InterviewerID) int {
	evaluator, err := s.interviewers.FindByID(ctx, evaluatorID)
	s.Require().NoError(err)
	return evaluator.ActiveInterviews()
}

// =============================================================================
// AssignNext Sequencing Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestAssignNextSequence() {
	ctx := context.Background()
	candidate := s.seedCandidate(ctx, "seq@example.com")
	interviewer := s.seedEvaluator(ctx, "ivy", interviewermodels.AvailabilityActive)
	admin := s.seedEvaluator(ctx, "adam", interviewermodels.AvailabilityActive)

	s.Run("first slot goes to an interviewer as round 1", func() {
		slot, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, interviewer.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(1, slot.RoundNumber)
		s.Equal(candidatemodels.AssignmentAssigned, slot.Status)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusAssignedInterviewer, stored.PipelineStatus)
		s.Equal(1, s.activeCount(ctx, interviewer.ID))
	})

	s.Run("second slot goes to an admin as round 2", func() {
		// Complete slot 1 first so the sequence moves on.
		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		_, err = s.service.SubmitFeedback(ctx, candidate.ID, stored.AssignedRounds[0].ID, candidatemodels.DecisionPass, "")
		s.Require().NoError(err)

		slot, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(2, slot.RoundNumber)

		stored, err = s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusAssignedAdmin, stored.PipelineStatus)
	})

	s.Run("third slot is rejected", func() {
		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.Require().Error(err)
		s.Contains(err.Error(), "all rounds already assigned")
	})
}

func (s *AssignmentServiceSuite) TestAssignNext() {
	ctx := context.Background()

	s.Run("role not matching the slot position is rejected", func() {
		candidate := s.seedCandidate(ctx, "wrongrole@example.com")
		admin := s.seedEvaluator(ctx, "adam2", interviewermodels.AvailabilityActive)

		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("replaces an outstanding slot instead of stacking", func() {
		candidate := s.seedCandidate(ctx, "replace@example.com")
		interviewer := s.seedEvaluator(ctx, "first", interviewermodels.AvailabilityActive)
		admin := s.seedEvaluator(ctx, "second", interviewermodels.AvailabilityActive)

		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, interviewer.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		// Slot 1 is still outstanding when slot 2 is created; the invariant
		// allows only one outstanding slot, so slot 1 is dropped.
		slot, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(2, slot.RoundNumber)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Require().Len(stored.AssignedRounds, 1)
		s.Equal(admin.ID, stored.AssignedRounds[0].AssignedTo)
		s.NotNil(stored.OutstandingAssignment())
	})

	s.Run("unknown evaluator returns not found", func() {
		candidate := s.seedCandidate(ctx, "noeval@example.com")
		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, id.NewInterviewerID(), candidatemodels.Schedule{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Direct Assign Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestAssign() {
	ctx := context.Background()

	s.Run("inactive interviewer is rejected", func() {
		candidate := s.seedCandidate(ctx, "inactive@example.com")
		evaluator := s.seedEvaluator(ctx, "idle", interviewermodels.AvailabilityInactive)

		_, err := s.service.Assign(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("admin assignment skips the availability gate", func() {
		candidate := s.seedCandidate(ctx, "adminok@example.com")
		admin := s.seedEvaluator(ctx, "busyadmin", interviewermodels.AvailabilityBusy)

		slot, err := s.service.Assign(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(1, slot.RoundNumber)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusAssignedAdmin, stored.PipelineStatus)
	})

	s.Run("moving to a new interviewer cleans the old roster entry", func() {
		candidate := s.seedCandidate(ctx, "move@example.com")
		first := s.seedEvaluator(ctx, "old", interviewermodels.AvailabilityActive)
		second := s.seedEvaluator(ctx, "new", interviewermodels.AvailabilityActive)

		_, err := s.service.Assign(ctx, candidate.ID, candidatemodels.RoleInterviewer, first.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(1, s.activeCount(ctx, first.ID))

		_, err = s.service.Assign(ctx, candidate.ID, candidatemodels.RoleInterviewer, second.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Equal(0, s.activeCount(ctx, first.ID))
		s.Equal(1, s.activeCount(ctx, second.ID))
	})
}

// =============================================================================
// Reassign Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestReassign() {
	ctx := context.Background()

	s.Run("mutates the slot in place and moves roster membership", func() {
		candidate := s.seedCandidate(ctx, "reassign@example.com")
		first := s.seedEvaluator(ctx, "was", interviewermodels.AvailabilityActive)
		second := s.seedEvaluator(ctx, "now", interviewermodels.AvailabilityActive)

		created, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, first.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		schedule := candidatemodels.Schedule{Date: "2025-06-02", Time: "14:00", DurationMinutes: 60, Format: "video"}
		slot, err := s.service.Reassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer, second.ID, schedule)
		s.Require().NoError(err)
		s.Equal(created.ID, slot.ID)
		s.Equal(second.ID, slot.AssignedTo)
		s.Equal(schedule, slot.Schedule)
		s.Equal(candidatemodels.AssignmentAssigned, slot.Status)

		s.Equal(0, s.activeCount(ctx, first.ID))
		s.Equal(1, s.activeCount(ctx, second.ID))
	})

	s.Run("reassign to the same evaluator leaves the roster alone", func() {
		candidate := s.seedCandidate(ctx, "samesame@example.com")
		evaluator := s.seedEvaluator(ctx, "same", interviewermodels.AvailabilityActive)

		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		_, err = s.service.Reassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{Date: "2025-06-03"})
		s.Require().NoError(err)

		s.Equal(1, s.activeCount(ctx, evaluator.ID))
	})

	s.Run("no matching slot returns not found", func() {
		candidate := s.seedCandidate(ctx, "noslot@example.com")
		evaluator := s.seedEvaluator(ctx, "lonely", interviewermodels.AvailabilityActive)

		_, err := s.service.Reassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Unassign Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestUnassign() {
	ctx := context.Background()

	s.Run("removes exactly the matching slot and re-derives status", func() {
		candidate := s.seedCandidate(ctx, "unassign@example.com")
		evaluator := s.seedEvaluator(ctx, "gone", interviewermodels.AvailabilityActive)

		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		err = s.service.Unassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer)
		s.Require().NoError(err)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Empty(stored.AssignedRounds)
		s.Nil(stored.LegacyAssignment)
		// Domain is completed, so the candidate goes back to waiting.
		s.Equal(candidatemodels.StatusWaitingForAssignment, stored.PipelineStatus)
		s.Equal(0, s.activeCount(ctx, evaluator.ID))
	})

	s.Run("incomplete domain derives back to in progress", func() {
		candidate := s.seedCandidate(ctx, "backinprogress@example.com")
		candidate.ActiveProgress().Status = candidatemodels.DomainInProgress
		s.Require().NoError(s.candidates.Save(ctx, candidate))
		evaluator := s.seedEvaluator(ctx, "temp", interviewermodels.AvailabilityActive)

		_, err := s.service.Assign(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)
		s.Require().NoError(s.service.Unassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer))

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusInProgress, stored.PipelineStatus)
	})

	s.Run("missing slot returns not found and mutates nothing", func() {
		candidate := s.seedCandidate(ctx, "nothing@example.com")
		evaluator := s.seedEvaluator(ctx, "untouched", interviewermodels.AvailabilityActive)
		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		err = s.service.Unassign(ctx, candidate.ID, 2, candidatemodels.RoleAdmin)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Len(stored.AssignedRounds, 1)
		s.Equal(candidatemodels.StatusAssignedInterviewer, stored.PipelineStatus)
		s.Equal(1, s.activeCount(ctx, evaluator.ID))
	})
}

// =============================================================================
// Feedback Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestSubmitFeedback() {
	ctx := context.Background()

	s.Run("interviewer pass hands off to admin assignment", func() {
		candidate := s.seedCandidate(ctx, "pass@example.com")
		evaluator := s.seedEvaluator(ctx, "passer", interviewermodels.AvailabilityActive)
		slot, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		completed, err := s.service.SubmitFeedback(ctx, candidate.ID, slot.ID, candidatemodels.DecisionPass, "strong answers")
		s.Require().NoError(err)
		s.Equal(candidatemodels.AssignmentCompleted, completed.Status)
		s.True(completed.ResponseSubmitted)
		s.Equal("strong answers", completed.Feedback.Notes)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusWaitingForAdminAssignment, stored.PipelineStatus)
		s.Equal(0, s.activeCount(ctx, evaluator.ID))

		roster, err := s.interviewers.FindByID(ctx, evaluator.ID)
		s.Require().NoError(err)
		s.Equal(1, roster.CompletedInterviews())
	})

	s.Run("reject is terminal", func() {
		candidate := s.seedCandidate(ctx, "reject@example.com")
		evaluator := s.seedEvaluator(ctx, "rejecter", interviewermodels.AvailabilityActive)
		slot, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		_, err = s.service.SubmitFeedback(ctx, candidate.ID, slot.ID, candidatemodels.DecisionReject, "not a fit")
		s.Require().NoError(err)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusRejected, stored.PipelineStatus)
	})

	s.Run("admin pass is final acceptance", func() {
		candidate := s.seedCandidate(ctx, "final@example.com")
		admin := s.seedEvaluator(ctx, "finaladmin", interviewermodels.AvailabilityActive)
		slot, err := s.service.Assign(ctx, candidate.ID, candidatemodels.RoleAdmin, admin.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		_, err = s.service.SubmitFeedback(ctx, candidate.ID, slot.ID, candidatemodels.DecisionPass, "")
		s.Require().NoError(err)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(candidatemodels.StatusFinalAccepted, stored.PipelineStatus)
	})

	s.Run("unknown assignment returns not found", func() {
		candidate := s.seedCandidate(ctx, "ghostslot@example.com")
		_, err := s.service.SubmitFeedback(ctx, candidate.ID, id.NewAssignmentID(), candidatemodels.DecisionPass, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Partial Failure Tests
// =============================================================================

func (s *AssignmentServiceSuite) TestPartialFailureSelfHealing() {
	ctx := context.Background()

	s.Run("orphaned roster entry heals on unassign", func() {
		candidate := s.seedCandidate(ctx, "orphan@example.com")
		evaluator := s.seedEvaluator(ctx, "dangling", interviewermodels.AvailabilityActive)
		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		// Simulate a crashed secondary write: a second evaluator holds a
		// stale roster entry the candidate aggregate knows nothing about.
		stale := s.seedEvaluator(ctx, "stale", interviewermodels.AvailabilityActive)
		stale.UpsertAssignedCandidate(interviewermodels.AssignedCandidate{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			Status:        interviewermodels.InterviewAssigned,
		})
		s.Require().NoError(s.interviewers.Save(ctx, stale))

		s.Require().NoError(s.service.Unassign(ctx, candidate.ID, 1, candidatemodels.RoleInterviewer))

		// Unassign scans the whole roster, so both entries are gone and the
		// derived counts agree with the lists again.
		s.Equal(0, s.activeCount(ctx, evaluator.ID))
		s.Equal(0, s.activeCount(ctx, stale.ID))
	})

	s.Run("active count always equals the derived list count", func() {
		candidate := s.seedCandidate(ctx, "derived@example.com")
		evaluator := s.seedEvaluator(ctx, "counted", interviewermodels.AvailabilityActive)

		_, err := s.service.AssignNext(ctx, candidate.ID, candidatemodels.RoleInterviewer, evaluator.ID, candidatemodels.Schedule{})
		s.Require().NoError(err)

		roster, err := s.interviewers.FindByID(ctx, evaluator.ID)
		s.Require().NoError(err)
		manual := 0
		for _, e := range roster.AssignedCandidates {
			if e.Status.CountsAsActive() {
				manual++
			}
		}
		s.Equal(manual, roster.ActiveInterviews())
	})
}
