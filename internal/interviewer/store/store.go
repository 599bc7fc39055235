// Package store defines persistence for interviewer aggregates.
package store

import (
	"context"

	"talentgate/internal/interviewer/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// ErrNotFound is returned when no interviewer matches the query.
var ErrNotFound = sentinel.ErrNotFound

// InterviewerStore persists interviewer aggregates as whole documents.
type InterviewerStore interface {
	// Save upserts the full aggregate.
	Save(ctx context.Context, interviewer *models.Interviewer) error
	// FindByID returns ErrNotFound when the interviewer does not exist.
	FindByID(ctx context.Context, interviewerID id.InterviewerID) (*models.Interviewer, error)
	// List returns all interviewers, unordered.
	List(ctx context.Context) ([]*models.Interviewer, error)
}
