package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/cache"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

type proposalPostgreSQL struct {
	db *gorm.DB
	cm *cache.CacheManager
}

// NewProposalPostgreSQL creates the proposal repository backed by
// Postgres with Redis read caching.
func NewProposalPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.ProposalRepository {
	return &proposalPostgreSQL{db: db, cm: cm}
}

func (r *proposalPostgreSQL) Create(ctx context.Context, proposal *models.Proposal) error {
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}

	cache.InvalidateProposalCache(ctx, r.cm, proposal.ID)
	return nil
}

func (r *proposalPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Proposal, error) {
	var proposal models.Proposal

	key := fmt.Sprintf("id:%d", id)
	err := r.cm.Proposal.CacheOrExecute(ctx, key, &proposal, cache.ProposalCacheConfig.TTL, func() (interface{}, error) {
		var p models.Proposal
		err := r.db.WithContext(ctx).
			Preload("User").
			Preload("Tags").
			Preload("Reviews").
			Preload("Reviews.Reviewer").
			First(&p, id).Error
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}

	return &proposal, nil
}

func (r *proposalPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Proposal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []*models.Proposal
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get proposals by ids: %w", err)
	}

	// Re-order to match the requested ID order (search hit order)
	byID := make(map[uint]*models.Proposal, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	ordered := make([]*models.Proposal, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

func (r *proposalPostgreSQL) List(ctx context.Context, filters repositories.ProposalFilters) ([]*models.Proposal, int64, error) {
	query := ApplyProposalFilters(r.db.WithContext(ctx).Model(&models.Proposal{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}

	var proposals []*models.Proposal
	err := ApplyPagination(query, filters.Limit, filters.Offset).
		Preload("User").
		Preload("Tags").
		Order(orderMostRecent).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list proposals: %w", err)
	}

	return proposals, total, nil
}

func (r *proposalPostgreSQL) Update(ctx context.Context, proposal *models.Proposal) error {
	// Scalar columns only; tags go through ReplaceTags
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", proposal.ID).
		Updates(map[string]interface{}{
			"title":       proposal.Title,
			"description": proposal.Description,
			"file_path":   proposal.FilePath,
			"status":      proposal.Status,
		}).Error
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}

	cache.InvalidateProposalCache(ctx, r.cm, proposal.ID)
	return nil
}

func (r *proposalPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.ProposalStatus) error {
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}

	cache.InvalidateProposalCache(ctx, r.cm, id)
	return nil
}

func (r *proposalPostgreSQL) Delete(ctx context.Context, id uint) error {
	// Join rows first; reviews are removed by the FK cascade
	if err := r.db.WithContext(ctx).Exec("DELETE FROM proposal_tag WHERE proposal_id = ?", id).Error; err != nil {
		return fmt.Errorf("delete proposal tags: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&models.Proposal{}, id).Error; err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}

	cache.InvalidateProposalCache(ctx, r.cm, id)
	return nil
}

func (r *proposalPostgreSQL) ReplaceTags(ctx context.Context, proposal *models.Proposal, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Model(proposal).Association("Tags").Replace(tags)
	if err != nil {
		return fmt.Errorf("replace proposal tags: %w", err)
	}

	cache.InvalidateProposalCache(ctx, r.cm, proposal.ID)
	return nil
}

// ratedRow is the scan target for the top-rated aggregation.
type ratedRow struct {
	ID            uint    `gorm:"column:id"`
	AverageRating float64 `gorm:"column:average_rating"`
	ReviewCount   int64   `gorm:"column:review_count"`
}

func (r *proposalPostgreSQL) TopRated(ctx context.Context, minAverage float64, limit int) ([]*repositories.RatedProposal, error) {
	var rated []*repositories.RatedProposal

	key := fmt.Sprintf("limit:%d", limit)
	err := r.cm.TopRated.CacheOrExecute(ctx, key, &rated, cache.TopRatedCacheConfig.TTL, func() (interface{}, error) {
		var rows []ratedRow
		err := r.db.WithContext(ctx).
			Table("proposals").
			Select("proposals.id, AVG(reviews.rating) AS average_rating, COUNT(reviews.id) AS review_count").
			Joins("JOIN reviews ON reviews.proposal_id = proposals.id").
			Where("proposals.status = ?", models.StatusApproved).
			Group("proposals.id").
			Having("AVG(reviews.rating) >= ?", minAverage).
			Order("average_rating DESC, review_count DESC, proposals.id ASC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("top rated query: %w", err)
		}

		ids := make([]uint, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}

		proposals, err := r.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}

		aggregates := make(map[uint]ratedRow, len(rows))
		for _, row := range rows {
			aggregates[row.ID] = row
		}

		result := make([]*repositories.RatedProposal, 0, len(proposals))
		for _, p := range proposals {
			agg := aggregates[p.ID]
			// The status may have moved between the aggregate scan and
			// the rehydration load; re-check eligibility
			if !repositories.QualifiesTopRated(p.Status, agg.AverageRating, agg.ReviewCount, minAverage) {
				continue
			}
			result = append(result, &repositories.RatedProposal{
				Proposal:      *p,
				AverageRating: agg.AverageRating,
				ReviewCount:   agg.ReviewCount,
			})
		}
		repositories.SortRated(result)

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return rated, nil
}

func (r *proposalPostgreSQL) ReviewAggregates(ctx context.Context, proposalID uint) (float64, int64, error) {
	var row struct {
		AverageRating float64 `gorm:"column:average_rating"`
		ReviewCount   int64   `gorm:"column:review_count"`
	}

	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Where("proposal_id = ?", proposalID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("review aggregates: %w", err)
	}

	return row.AverageRating, row.ReviewCount, nil
}
