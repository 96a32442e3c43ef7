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
	"github.com/confhub/proposal-service/internal/validator"
)

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	policy    ProposalPolicy
}

// NewReviewService creates the review service.
func NewReviewService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.Publisher) ReviewService {
	return &reviewService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *reviewService) ListByProposal(ctx context.Context, proposalID uint, actor *models.User) ([]*models.Review, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if !s.policy.View(actor, proposal) {
		return nil, newPermissionError("review", "list", "proposal not visible to this user")
	}

	return s.repo.Review().ListByProposal(ctx, proposalID)
}

func (s *reviewService) Create(ctx context.Context, proposalID uint, req *CreateReviewRequest, actor *models.User) (*models.Review, error) {
	if !s.policy.Review(actor) {
		return nil, newPermissionError("review", "create", "only reviewers can review proposals")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.getProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	// Application-level check first for a clean conflict message; the
	// composite unique index closes the remaining insert race
	exists, err := s.repo.Review().ExistsForReviewer(ctx, proposalID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		ProposalID: proposalID,
		UserID:     actor.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err := s.repo.Review().Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review submitted", "review_id", review.ID, "proposal_id", proposalID, "reviewer_id", actor.ID)

	if err := s.publisher.PublishProposalReviewed(ctx, events.ProposalReviewed{
		ProposalID: proposalID,
		ReviewID:   review.ID,
		ReviewerID: actor.ID,
		Rating:     review.Rating,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish proposal.reviewed", "error", err, "review_id", review.ID)
	}

	return s.repo.Review().GetByID(ctx, review.ID)
}

func (s *reviewService) GetByID(ctx context.Context, proposalID, reviewID uint, actor *models.User) (*models.Review, error) {
	proposal, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if !s.policy.View(actor, proposal) {
		return nil, newPermissionError("review", "view", "proposal not visible to this user")
	}

	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ProposalID != proposalID {
		return nil, ErrReviewNotFound
	}

	return review, nil
}

func (s *reviewService) Update(ctx context.Context, proposalID, reviewID uint, req *UpdateReviewRequest, actor *models.User) (*models.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.getProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ProposalID != proposalID {
		return nil, ErrReviewNotFound
	}

	// Revising a submitted review is an admin action; the authoring
	// reviewer cannot change it afterwards
	if !actor.IsAdmin() {
		return nil, newPermissionError("review", "update", "only admins can update reviews")
	}

	review.Rating = req.Rating
	review.Comment = req.Comment

	if err := s.repo.Review().Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	return s.repo.Review().GetByID(ctx, reviewID)
}

func (s *reviewService) RatingOptions() []int {
	return models.ReviewRatings
}

func (s *reviewService) getProposal(ctx context.Context, id uint) (*models.Proposal, error) {
	proposal, err := s.repo.Proposal().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

func (s *reviewService) getReview(ctx context.Context, id uint) (*models.Review, error) {
	review, err := s.repo.Review().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}
