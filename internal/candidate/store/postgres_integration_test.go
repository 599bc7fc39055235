//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talentgate/internal/candidate/models"
	"talentgate/internal/candidate/store"
	id "talentgate/pkg/domain"
	"talentgate/pkg/testutil/containers"
)

func TestPostgresCandidateStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "../../../migrations")
	candidates := store.NewPostgres(pg.Pool)
	ctx := context.Background()

	newCandidate := func(t *testing.T, email string) *models.Candidate {
		t.Helper()
		candidate, err := models.NewCandidate(id.NewCandidateID(), "Dana Reyes", email,
			models.WorkDomain{ID: id.NewDomainID(), Name: "Backend"}, time.Now().UTC())
		require.NoError(t, err)
		return candidate
	}

	t.Run("round-trips the full document", func(t *testing.T) {
		candidate := newCandidate(t, "dana.roundtrip@example.com")
		candidate.Progress[0].CurrentRoundName = "MCQ Screen"
		require.NoError(t, candidates.Save(ctx, candidate))

		found, err := candidates.FindByID(ctx, candidate.ID)
		require.NoError(t, err)
		require.Equal(t, candidate.ID, found.ID)
		require.Equal(t, candidate.Email, found.Email)
		require.Len(t, found.Progress, 1)
		require.Equal(t, "MCQ Screen", found.Progress[0].CurrentRoundName)
	})

	t.Run("save is an upsert", func(t *testing.T) {
		candidate := newCandidate(t, "dana.upsert@example.com")
		require.NoError(t, candidates.Save(ctx, candidate))

		candidate.PipelineStatus = models.StatusWaitingForAssignment
		require.NoError(t, candidates.Save(ctx, candidate))

		found, err := candidates.FindByID(ctx, candidate.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusWaitingForAssignment, found.PipelineStatus)
	})

	t.Run("finds by email case-insensitively", func(t *testing.T) {
		candidate := newCandidate(t, "Dana.Email@example.com")
		require.NoError(t, candidates.Save(ctx, candidate))

		found, err := candidates.FindByEmail(ctx, "dana.email@EXAMPLE.com")
		require.NoError(t, err)
		require.Equal(t, candidate.ID, found.ID)
	})

	t.Run("missing candidate returns ErrNotFound", func(t *testing.T) {
		_, err := candidates.FindByID(ctx, id.NewCandidateID())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = candidates.FindByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
