package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/cache"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

type reviewPostgreSQL struct {
	db *gorm.DB
	cm *cache.CacheManager
}

// NewReviewPostgreSQL creates the review repository.
func NewReviewPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.ReviewRepository {
	return &reviewPostgreSQL{db: db, cm: cm}
}

func (r *reviewPostgreSQL) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		// Unique violations surface as gorm.ErrDuplicatedKey via the
		// translated-errors session; callers map them to the conflict path
		return fmt.Errorf("create review: %w", err)
	}

	cache.InvalidateReviewCache(ctx, r.cm, review.ProposalID)
	return nil
}

func (r *reviewPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewPostgreSQL) ListByProposal(ctx context.Context, proposalID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewPostgreSQL) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating":  review.Rating,
			"comment": review.Comment,
		}).Error
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	cache.InvalidateReviewCache(ctx, r.cm, review.ProposalID)
	return nil
}

func (r *reviewPostgreSQL) ExistsForReviewer(ctx context.Context, proposalID, reviewerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("proposal_id = ? AND user_id = ?", proposalID, reviewerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return count > 0, nil
}
