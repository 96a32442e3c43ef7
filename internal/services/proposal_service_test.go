package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/search"
	"github.com/confhub/proposal-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProposalFixture() (*mockRepository, *recordingPublisher, *mockFileStore, ProposalService) {
	repo := newMockRepository()
	publisher := &recordingPublisher{}
	files := newMockFileStore()
	svc := NewProposalService(repo, testLogger(), validator.New(), search.NewNoopIndex(), publisher, files)
	return repo, publisher, files, svc
}

func speaker(id uint) *models.User {
	return &models.User{ID: id, Name: "Speaker", Email: "speaker@example.com", Role: models.RoleSpeaker}
}

func reviewer(id uint) *models.User {
	return &models.User{ID: id, Name: "Reviewer", Email: "reviewer@example.com", Role: models.RoleReviewer}
}

func admin(id uint) *models.User {
	return &models.User{ID: id, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
}

func TestProposalServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("created proposal is always pending", func(t *testing.T) {
		repo, publisher, _, svc := newProposalFixture()
		_ = repo

		resp, err := svc.Create(ctx, &CreateProposalRequest{
			Title:       "Scaling Postgres",
			Description: "War stories from a decade of sharding",
			Tags:        []string{"databases", "postgres"},
		}, nil, speaker(1))
		require.NoError(t, err)
		require.Equal(t, models.StatusPending, resp.Status)
		require.Len(t, resp.Tags, 2)

		require.Len(t, publisher.submitted, 1)
		require.Equal(t, resp.ID, publisher.submitted[0].ProposalID)
	})

	t.Run("reviewers cannot submit", func(t *testing.T) {
		_, _, _, svc := newProposalFixture()

		_, err := svc.Create(ctx, &CreateProposalRequest{
			Title:       "Title",
			Description: "Description",
		}, nil, reviewer(2))

		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		_, _, _, svc := newProposalFixture()

		_, err := svc.Create(ctx, &CreateProposalRequest{
			Description: "Description only",
		}, nil, speaker(1))

		var valErrs ValidationErrors
		require.ErrorAs(t, err, &valErrs)
		require.Contains(t, valErrs.FieldMap(), "title")
	})
}

func TestProposalServiceVisibility(t *testing.T) {
	ctx := context.Background()
	repo, _, _, svc := newProposalFixture()

	owner := speaker(1)
	created, err := svc.Create(ctx, &CreateProposalRequest{
		Title:       "Owned proposal",
		Description: "Visible to its owner and to reviewers",
	}, nil, owner)
	require.NoError(t, err)
	_ = repo

	t.Run("owner can view", func(t *testing.T) {
		resp, err := svc.GetByID(ctx, created.ID, owner)
		require.NoError(t, err)
		require.Equal(t, created.ID, resp.ID)
	})

	t.Run("reviewer can view", func(t *testing.T) {
		_, err := svc.GetByID(ctx, created.ID, reviewer(2))
		require.NoError(t, err)
	})

	t.Run("other speaker cannot view", func(t *testing.T) {
		_, err := svc.GetByID(ctx, created.ID, speaker(3))
		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
	})

	t.Run("speakers only list their own proposals", func(t *testing.T) {
		otherID := uint(3)
		list, err := svc.List(ctx, ProposalListParams{UserID: &owner.ID}, speaker(otherID))
		require.NoError(t, err)
		require.Empty(t, list.Proposals)
	})

	t.Run("unknown proposal maps to not found", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 999, owner)
		require.ErrorIs(t, err, ErrProposalNotFound)
	})
}

func TestProposalServiceUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _, files, svc := newProposalFixture()
	_ = repo

	owner := speaker(1)
	stored := "old.pdf"
	created, err := svc.Create(ctx, &CreateProposalRequest{
		Title:       "Before",
		Description: "Body",
	}, &stored, owner)
	require.NoError(t, err)

	t.Run("replacing the file removes the old one", func(t *testing.T) {
		newFile := "new.pdf"
		title := "After"
		resp, err := svc.Update(ctx, created.ID, &UpdateProposalRequest{Title: &title}, &newFile, owner)
		require.NoError(t, err)
		require.Equal(t, "After", resp.Title)
		require.Contains(t, files.removed, "old.pdf")
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		title := "Hijacked"
		_, err := svc.Update(ctx, created.ID, &UpdateProposalRequest{Title: &title}, nil, speaker(9))
		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
	})
}

func TestProposalServiceDelete(t *testing.T) {
	ctx := context.Background()
	_, _, files, svc := newProposalFixture()

	owner := speaker(1)
	stored := "attachment.pdf"
	created, err := svc.Create(ctx, &CreateProposalRequest{
		Title:       "Doomed",
		Description: "Body",
	}, &stored, owner)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, owner))
	require.Contains(t, files.removed, "attachment.pdf")

	_, err = svc.GetByID(ctx, created.ID, owner)
	require.ErrorIs(t, err, ErrProposalNotFound)
}

func TestProposalServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo, publisher, _, svc := newProposalFixture()
	_ = repo

	created, err := svc.Create(ctx, &CreateProposalRequest{
		Title:       "Pending talk",
		Description: "Body",
	}, nil, speaker(1))
	require.NoError(t, err)

	adm := admin(10)

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, created.ID, models.StatusApproved, reviewer(2))
		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, created.ID, models.ProposalStatus("archived"), adm)
		var valErrs ValidationErrors
		require.ErrorAs(t, err, &valErrs)
	})

	t.Run("change fires the status event", func(t *testing.T) {
		resp, err := svc.UpdateStatus(ctx, created.ID, models.StatusApproved, adm)
		require.NoError(t, err)
		require.Equal(t, models.StatusApproved, resp.Status)

		require.Len(t, publisher.statusChanged, 1)
		require.Equal(t, models.StatusPending, publisher.statusChanged[0].OldStatus)
		require.Equal(t, models.StatusApproved, publisher.statusChanged[0].NewStatus)
	})

	t.Run("no-op change stays silent", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, created.ID, models.StatusApproved, adm)
		require.NoError(t, err)
		require.Len(t, publisher.statusChanged, 1)
	})
}

func TestProposalServiceFilePath(t *testing.T) {
	ctx := context.Background()
	_, _, files, svc := newProposalFixture()

	owner := speaker(1)
	stored := "deck.pdf"
	created, err := svc.Create(ctx, &CreateProposalRequest{
		Title:       "With attachment",
		Description: "Body",
	}, &stored, owner)
	require.NoError(t, err)
	files.present["deck.pdf"] = true

	t.Run("owner resolves the path", func(t *testing.T) {
		path, err := svc.FilePath(ctx, created.ID, owner)
		require.NoError(t, err)
		require.Equal(t, "/tmp/deck.pdf", path)
	})

	t.Run("missing file maps to not found", func(t *testing.T) {
		bare, err := svc.Create(ctx, &CreateProposalRequest{
			Title:       "No attachment",
			Description: "Body",
		}, nil, owner)
		require.NoError(t, err)

		_, err = svc.FilePath(ctx, bare.ID, owner)
		require.ErrorIs(t, err, ErrFileNotFound)
	})
}

func TestProposalServiceTopRated(t *testing.T) {
	ctx := context.Background()
	repo, _, _, svc := newProposalFixture()

	seed := func(title string, status models.ProposalStatus, average float64, count int64) {
		p := &models.Proposal{Title: title, Description: "Body", Status: status, UserID: 1}
		require.NoError(t, repo.proposal.Create(ctx, p))
		if count > 0 {
			repo.proposal.aggregates[p.ID] = ratedAggregate{average: average, count: count}
		}
	}

	seed("Runner-up", models.StatusApproved, 4.2, 3)
	seed("Best", models.StatusApproved, 4.8, 5)
	seed("Below threshold", models.StatusApproved, 3.9, 6)
	seed("Not approved", models.StatusPending, 5.0, 2)
	seed("No reviews", models.StatusApproved, 0, 0)

	t.Run("only approved proposals at or above the threshold qualify", func(t *testing.T) {
		out, err := svc.TopRated(ctx, TopRatedDefaultLimit)
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Equal(t, "Best", out[0].Title)
		require.Equal(t, "Runner-up", out[1].Title)
		require.Equal(t, 4.8, out[0].AverageRating)
	})

	t.Run("limit truncates the board", func(t *testing.T) {
		out, err := svc.TopRated(ctx, 1)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "Best", out[0].Title)
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		out, err := svc.TopRated(ctx, TopRatedMaxLimit+100)
		require.NoError(t, err)
		require.Len(t, out, 2)
	})

	t.Run("zero limit falls back to the default", func(t *testing.T) {
		out, err := svc.TopRated(ctx, 0)
		require.NoError(t, err)
		require.Len(t, out, 2)
	})

	t.Run("average ties order by review count", func(t *testing.T) {
		seed("Tied but busier", models.StatusApproved, 4.8, 9)

		out, err := svc.TopRated(ctx, TopRatedDefaultLimit)
		require.NoError(t, err)
		require.Len(t, out, 3)
		require.Equal(t, "Tied but busier", out[0].Title)
		require.Equal(t, "Best", out[1].Title)
	})
}
