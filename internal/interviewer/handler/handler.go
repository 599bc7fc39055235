// Package handler wires interviewer roster endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/interviewer/models"
	"talentgate/internal/interviewer/service"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for interviewer roster operations.
type Service interface {
	Register(ctx context.Context, name, email string) (*models.Interviewer, error)
	Get(ctx context.Context, interviewerID id.InterviewerID) (*service.InterviewerView, error)
	List(ctx context.Context) ([]*service.InterviewerView, error)
	SetAvailability(ctx context.Context, interviewerID id.InterviewerID, availability models.AvailabilityStatus) (*models.Interviewer, error)
}

// Handler exposes the evaluator roster over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an interviewer handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts interviewer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/interviewers", h.HandleRegister)
	r.Get("/interviewers", h.HandleList)
	r.Get("/interviewers/{interviewerID}", h.HandleGet)
	r.Put("/interviewers/{interviewerID}/availability", h.HandleSetAvailability)
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type availabilityRequest struct {
	Availability string `json:"availability"`
}

// HandleRegister handles POST /interviewers requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[registerRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	interviewer, err := h.service.Register(ctx, req.Name, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "interviewer registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, interviewer)
}

// HandleList handles GET /interviewers requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /interviewers/{interviewerID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	interviewerID, err := id.ParseInterviewerID(chi.URLParam(r, "interviewerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(r.Context(), interviewerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSetAvailability handles PUT /interviewers/{interviewerID}/availability requests.
func (h *Handler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	interviewerID, err := id.ParseInterviewerID(chi.URLParam(r, "interviewerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[availabilityRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	interviewer, err := h.service.SetAvailability(ctx, interviewerID, models.AvailabilityStatus(req.Availability))
	if err != nil {
		h.logger.ErrorContext(ctx, "availability update failed",
			"request_id", requestID,
			"interviewer_id", interviewerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, interviewer)
}
