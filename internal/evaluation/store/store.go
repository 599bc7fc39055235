// Package store persists round results. Results are append-only: a new
// attempt adds a record, nothing updates or deletes prior attempts.
package store

import (
	"context"

	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

// ErrNotFound is returned when no result matches the query.
var ErrNotFound = sentinel.ErrNotFound

// ResultStore persists round results.
type ResultStore interface {
	// Append stores a new attempt. Existing attempts are never touched.
	Append(ctx context.Context, result *models.RoundResult) error
	// ListByCandidateAndRound returns attempts ordered by completion time
	// descending (most recent first). Missing pairs yield an empty slice,
	// not an error.
	ListByCandidateAndRound(ctx context.Context, candidateID id.CandidateID, roundID id.RoundID) ([]*models.RoundResult, error)
	// ListByCandidate returns all attempts for the candidate, most recent
	// first.
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error)
}
