// Package handler wires assignment sequencer endpoints to the service.
// Assignment mutations are admin-only; feedback submission is open to any
// evaluator role.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	candidatemodels "talentgate/internal/candidate/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for assignment operations.
type Service interface {
	AssignNext(ctx context.Context, candidateID id.CandidateID, role candidatemodels.AssignedRole, evaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error)
	Assign(ctx context.Context, candidateID id.CandidateID, role candidatemodels.AssignedRole, evaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error)
	Reassign(ctx context.Context, candidateID id.CandidateID, roundNumber int, role candidatemodels.AssignedRole, newEvaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error)
	Unassign(ctx context.Context, candidateID id.CandidateID, roundNumber int, role candidatemodels.AssignedRole) error
	SubmitFeedback(ctx context.Context, candidateID id.CandidateID, assignmentID id.AssignmentID, decision candidatemodels.FeedbackDecision, notes string) (*candidatemodels.AssignedRound, error)
	CandidateAssignments(ctx context.Context, candidateID id.CandidateID) ([]candidatemodels.AssignedRound, error)
}

// Handler exposes assignment operations over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an assignment handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts assignment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/assignments/next", h.HandleAssignNext)
	r.Post("/assignments", h.HandleAssign)
	r.Put("/assignments", h.HandleReassign)
	r.Delete("/assignments", h.HandleUnassign)
	r.Post("/assignments/feedback", h.HandleFeedback)
	r.Get("/candidates/{candidateID}/assignments", h.HandleCandidateAssignments)
}

type scheduleRequest struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Format          string `json:"format"`
}

func (req scheduleRequest) toSchedule() candidatemodels.Schedule {
	return candidatemodels.Schedule{
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Format:          req.Format,
	}
}

type assignRequest struct {
	CandidateID string          `json:"candidate_id"`
	Role        string          `json:"role"`
	EvaluatorID string          `json:"evaluator_id"`
	Schedule    scheduleRequest `json:"schedule"`
}

type reassignRequest struct {
	CandidateID string          `json:"candidate_id"`
	RoundNumber int             `json:"round_number"`
	Role        string          `json:"role"`
	EvaluatorID string          `json:"evaluator_id"`
	Schedule    scheduleRequest `json:"schedule"`
}

type unassignRequest struct {
	CandidateID string `json:"candidate_id"`
	RoundNumber int    `json:"round_number"`
	Role        string `json:"role"`
}

type feedbackRequest struct {
	CandidateID  string `json:"candidate_id"`
	AssignmentID string `json:"assignment_id"`
	Decision     string `json:"decision"`
	Notes        string `json:"notes"`
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if requestcontext.ActorRole(r.Context()) != requestcontext.RoleAdmin {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
		return false
	}
	return true
}

func requireEvaluator(w http.ResponseWriter, r *http.Request) bool {
	if !requestcontext.ActorRole(r.Context()).IsEvaluator() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "evaluator role required"))
		return false
	}
	return true
}

// HandleAssignNext handles POST /assignments/next requests.
func (h *Handler) HandleAssignNext(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[assignRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	candidateID, evaluatorID, err := parseAssignIDs(req.CandidateID, req.EvaluatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.AssignNext(ctx, candidateID, candidatemodels.AssignedRole(req.Role), evaluatorID, req.Schedule.toSchedule())
	if err != nil {
		h.logger.ErrorContext(ctx, "sequenced assignment failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"role", req.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, slot)
}

// HandleAssign handles POST /assignments requests (direct override).
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[assignRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	candidateID, evaluatorID, err := parseAssignIDs(req.CandidateID, req.EvaluatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.Assign(ctx, candidateID, candidatemodels.AssignedRole(req.Role), evaluatorID, req.Schedule.toSchedule())
	if err != nil {
		h.logger.ErrorContext(ctx, "direct assignment failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, slot)
}

// HandleReassign handles PUT /assignments requests.
func (h *Handler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[reassignRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	candidateID, evaluatorID, err := parseAssignIDs(req.CandidateID, req.EvaluatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.Reassign(ctx, candidateID, req.RoundNumber, candidatemodels.AssignedRole(req.Role), evaluatorID, req.Schedule.toSchedule())
	if err != nil {
		h.logger.ErrorContext(ctx, "reassignment failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"round_number", req.RoundNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, slot)
}

// HandleUnassign handles DELETE /assignments requests.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[unassignRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	candidateID, err := id.ParseCandidateID(req.CandidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Unassign(ctx, candidateID, req.RoundNumber, candidatemodels.AssignedRole(req.Role)); err != nil {
		h.logger.ErrorContext(ctx, "unassignment failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"round_number", req.RoundNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFeedback handles POST /assignments/feedback requests.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	if !requireEvaluator(w, r) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[feedbackRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	candidateID, err := id.ParseCandidateID(req.CandidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	assignmentID, err := id.ParseAssignmentID(req.AssignmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.SubmitFeedback(ctx, candidateID, assignmentID, candidatemodels.FeedbackDecision(req.Decision), req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "feedback submission failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"assignment_id", req.AssignmentID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, slot)
}

// HandleCandidateAssignments handles GET /candidates/{candidateID}/assignments requests.
func (h *Handler) HandleCandidateAssignments(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	assignments, err := h.service.CandidateAssignments(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assignments)
}

func parseAssignIDs(rawCandidate, rawEvaluator string) (id.CandidateID, id.InterviewerID, error) {
	candidateID, err := id.ParseCandidateID(rawCandidate)
	if err != nil {
		return id.CandidateID{}, id.InterviewerID{}, err
	}
	evaluatorID, err := id.ParseInterviewerID(rawEvaluator)
	if err != nil {
		return id.CandidateID{}, id.InterviewerID{}, err
	}
	return candidateID, evaluatorID, nil
}
