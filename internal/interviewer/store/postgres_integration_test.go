//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talentgate/internal/interviewer/models"
	"talentgate/internal/interviewer/store"
	id "talentgate/pkg/domain"
	"talentgate/pkg/testutil/containers"
)

func TestPostgresInterviewerStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "../../../migrations")
	interviewers := store.NewPostgres(pg.Pool)
	ctx := context.Background()

	t.Run("save and load with roster intact", func(t *testing.T) {
		interviewer, err := models.NewInterviewer(id.NewInterviewerID(), "Priya Shah", "priya@example.com", time.Now().UTC())
		require.NoError(t, err)
		interviewer.UpsertAssignedCandidate(models.AssignedCandidate{
			CandidateID: id.NewCandidateID(),
			Status:      models.InterviewAssigned,
		})
		require.NoError(t, interviewers.Save(ctx, interviewer))

		found, err := interviewers.FindByID(ctx, interviewer.ID)
		require.NoError(t, err)
		require.Equal(t, interviewer.Email, found.Email)
		require.Len(t, found.AssignedCandidates, 1)
	})

	t.Run("list returns every saved interviewer", func(t *testing.T) {
		before, err := interviewers.List(ctx)
		require.NoError(t, err)

		extra, err := models.NewInterviewer(id.NewInterviewerID(), "Tom Okafor", "tom@example.com", time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, interviewers.Save(ctx, extra))

		after, err := interviewers.List(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
	})

	t.Run("missing interviewer returns ErrNotFound", func(t *testing.T) {
		_, err := interviewers.FindByID(ctx, id.NewInterviewerID())
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
