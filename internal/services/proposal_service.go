package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/events"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
	"github.com/confhub/proposal-service/internal/search"
	"github.com/confhub/proposal-service/internal/validator"
)

type proposalService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	index     search.ProposalIndex
	publisher events.Publisher
	files     FileStore
	policy    ProposalPolicy
}

// NewProposalService creates the proposal service. The search index and
// event publisher are injected once at startup; no runtime config lookups.
func NewProposalService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	index search.ProposalIndex,
	publisher events.Publisher,
	files FileStore,
) ProposalService {
	return &proposalService{
		repo:      repo,
		logger:    logger,
		validator: v,
		index:     index,
		publisher: publisher,
		files:     files,
	}
}

func (s *proposalService) List(ctx context.Context, params ProposalListParams, actor *models.User) (*ProposalListResponse, error) {
	if !s.policy.ViewAny(actor) {
		return nil, ErrUnauthorized
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := clampPerPage(params.PerPage)

	filters := repositories.ProposalFilters{
		Status: params.Status,
		TagIDs: params.TagIDs,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if params.Search != "" {
		filters.Search = &params.Search
	}

	// Speakers only see their own proposals; the user_id filter is
	// honored for reviewers and admins
	if actor.CanReview() {
		filters.UserID = params.UserID
	} else {
		filters.UserID = &actor.ID
	}

	proposals, total, err := s.fetchProposals(ctx, params.Search, filters)
	if err != nil {
		return nil, err
	}

	responses := make([]*ProposalResponse, len(proposals))
	for i, p := range proposals {
		responses[i] = s.toResponse(p, actor, nil, 0)
	}

	return &ProposalListResponse{
		Proposals: responses,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}, nil
}

// fetchProposals routes a search through the hosted index when one is
// configured, rehydrating hits from Postgres in hit order, and falls
// back to SQL filtering otherwise.
func (s *proposalService) fetchProposals(ctx context.Context, query string, filters repositories.ProposalFilters) ([]*models.Proposal, int64, error) {
	if query == "" || !s.index.Enabled() {
		return s.repo.Proposal().List(ctx, filters)
	}

	ids, total, err := s.index.Search(ctx, query, filters)
	if err != nil {
		s.logger.Error("Search index query failed, falling back to SQL", "error", err)
		return s.repo.Proposal().List(ctx, filters)
	}

	proposals, err := s.repo.Proposal().GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

func (s *proposalService) Create(ctx context.Context, req *CreateProposalRequest, filePath *string, actor *models.User) (*ProposalResponse, error) {
	if !s.policy.Create(actor) {
		return nil, newPermissionError("proposal", "create", "only speakers can submit proposals")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    filePath,
		Status:      models.StatusPending, // always pending on creation
		UserID:      actor.ID,
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Proposal().Create(ctx, proposal); err != nil {
			return err
		}

		if len(req.Tags) > 0 {
			tags, err := tx.Tag().FindOrCreateByNames(ctx, req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Proposal().ReplaceTags(ctx, proposal, tags); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	s.logger.Info("Proposal submitted", "proposal_id", proposal.ID, "user_id", actor.ID)

	if err := s.publisher.PublishProposalSubmitted(ctx, events.ProposalSubmitted{
		ProposalID: proposal.ID,
		UserID:     actor.ID,
		Title:      proposal.Title,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish proposal.submitted", "error", err, "proposal_id", proposal.ID)
	}

	return s.loadResponse(ctx, proposal.ID, actor)
}

func (s *proposalService) GetByID(ctx context.Context, id uint, actor *models.User) (*ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.View(actor, proposal) {
		return nil, newPermissionError("proposal", "view", "not visible to this user")
	}

	average, count, err := s.repo.Proposal().ReviewAggregates(ctx, id)
	if err != nil {
		return nil, err
	}

	var avg *float64
	if count > 0 {
		avg = &average
	}

	return s.toResponse(proposal, actor, avg, count), nil
}

func (s *proposalService) Update(ctx context.Context, id uint, req *UpdateProposalRequest, newFilePath *string, actor *models.User) (*ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.Update(actor, proposal) {
		return nil, newPermissionError("proposal", "update", "only the owner or an admin can update")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var oldFile *string
	if req.Title != nil {
		proposal.Title = *req.Title
	}
	if req.Description != nil {
		proposal.Description = *req.Description
	}
	if newFilePath != nil {
		oldFile = proposal.FilePath
		proposal.FilePath = newFilePath
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Proposal().Update(ctx, proposal); err != nil {
			return err
		}

		if req.Tags != nil {
			tags, err := tx.Tag().FindOrCreateByNames(ctx, req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Proposal().ReplaceTags(ctx, proposal, tags); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}

	// The replaced attachment is removed only after the commit
	if oldFile != nil {
		if err := s.files.Remove(*oldFile); err != nil {
			s.logger.Error("Failed to remove replaced file", "error", err, "proposal_id", id)
		}
	}

	return s.loadResponse(ctx, id, actor)
}

func (s *proposalService) Delete(ctx context.Context, id uint, actor *models.User) error {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return err
	}

	if !s.policy.Delete(actor, proposal) {
		return newPermissionError("proposal", "delete", "only the owner or an admin can delete")
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Proposal().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}

	if proposal.FilePath != nil {
		if err := s.files.Remove(*proposal.FilePath); err != nil {
			s.logger.Error("Failed to remove proposal file", "error", err, "proposal_id", id)
		}
	}

	if err := s.index.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to remove proposal from search index", "error", err, "proposal_id", id)
	}

	s.logger.Info("Proposal deleted", "proposal_id", id, "user_id", actor.ID)

	return nil
}

func (s *proposalService) TopRated(ctx context.Context, limit int) ([]*TopRatedProposalResponse, error) {
	if limit <= 0 {
		limit = TopRatedDefaultLimit
	}
	if limit > TopRatedMaxLimit {
		limit = TopRatedMaxLimit
	}

	rated, err := s.repo.Proposal().TopRated(ctx, TopRatedMinAverage, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated proposals: %w", err)
	}

	responses := make([]*TopRatedProposalResponse, len(rated))
	for i, r := range rated {
		proposal := r.Proposal
		responses[i] = &TopRatedProposalResponse{
			Proposal:      &proposal,
			AverageRating: r.AverageRating,
			ReviewCount:   r.ReviewCount,
		}
	}

	return responses, nil
}

func (s *proposalService) FilePath(ctx context.Context, id uint, actor *models.User) (string, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return "", err
	}

	if !s.policy.Download(actor, proposal) {
		return "", newPermissionError("proposal", "download", "not visible to this user")
	}

	if proposal.FilePath == nil {
		return "", ErrFileNotFound
	}

	path, err := s.files.AbsPath(*proposal.FilePath)
	if err != nil {
		return "", ErrFileNotFound
	}
	if !s.files.Exists(*proposal.FilePath) {
		return "", ErrFileNotFound
	}

	return path, nil
}

func (s *proposalService) UpdateStatus(ctx context.Context, id uint, status models.ProposalStatus, actor *models.User) (*ProposalResponse, error) {
	if !s.policy.ChangeStatus(actor) {
		return nil, newPermissionError("proposal", "change_status", "admin only")
	}

	if !status.Valid() {
		return nil, ValidationErrors{{
			Field:   "status",
			Message: "must be one of: pending, approved, rejected",
			Value:   status,
			Rule:    "proposal_status",
		}}
	}

	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := proposal.Status
	if oldStatus == status {
		// No-op update, nothing to notify
		return s.loadResponse(ctx, id, actor)
	}

	if err := s.repo.Proposal().UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logger.Info("Proposal status changed",
		"proposal_id", id,
		"old_status", oldStatus,
		"new_status", status,
		"changed_by", actor.ID)

	if err := s.publisher.PublishProposalStatusChanged(ctx, events.ProposalStatusChanged{
		ProposalID: id,
		OldStatus:  oldStatus,
		NewStatus:  status,
		ChangedBy:  actor.ID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish proposal.status_changed", "error", err, "proposal_id", id)
	}

	return s.loadResponse(ctx, id, actor)
}

// ===== HELPERS =====

func (s *proposalService) getProposal(ctx context.Context, id uint) (*models.Proposal, error) {
	proposal, err := s.repo.Proposal().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

// loadResponse reloads a proposal with relations and syncs the search
// index with the fresh state.
func (s *proposalService) loadResponse(ctx context.Context, id uint, actor *models.User) (*ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.index.Save(ctx, proposal); err != nil {
		s.logger.Error("Failed to sync proposal to search index", "error", err, "proposal_id", id)
	}

	average, count, err := s.repo.Proposal().ReviewAggregates(ctx, id)
	if err != nil {
		return nil, err
	}

	var avg *float64
	if count > 0 {
		avg = &average
	}

	return s.toResponse(proposal, actor, avg, count), nil
}

func (s *proposalService) toResponse(proposal *models.Proposal, actor *models.User, avg *float64, reviewCount int64) *ProposalResponse {
	return &ProposalResponse{
		Proposal:      proposal,
		AverageRating: avg,
		ReviewCount:   reviewCount,
		CanEdit:       s.policy.Update(actor, proposal),
		CanDelete:     s.policy.Delete(actor, proposal),
	}
}

func clampPerPage(perPage int) int {
	if perPage == 0 {
		return DefaultPerPage
	}
	if perPage < MinPerPage {
		return MinPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}
