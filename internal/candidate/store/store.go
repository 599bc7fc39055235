// Package store persists the Candidate aggregate. Stores are
// interface-driven so services stay testable and persistence can move
// between in-memory and PostgreSQL without rewiring business code.
package store

import (
	"context"

	"talentgate/internal/candidate/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// ErrNotFound keeps store-level lookups consistent across implementations.
var ErrNotFound = sentinel.ErrNotFound

// CandidateStore persists candidate aggregates. Save is a whole-document
// upsert: the candidate is one document and each write replaces it, matching
// the no-multi-document-transaction storage model.
type CandidateStore interface {
	Save(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
}
