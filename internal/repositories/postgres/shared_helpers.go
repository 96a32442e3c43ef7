package postgres

import (
	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/repositories"
)

// orderMostRecent is the listing order for proposals. The id tie-break
// keeps pagination stable for rows created in the same instant.
const orderMostRecent = "created_at DESC, id DESC"

// ApplyProposalFilters applies the composable listing filters to a
// proposal query. Search matches the title case-insensitively; the tag
// filter uses a join-table subquery to avoid duplicated rows.
func ApplyProposalFilters(query *gorm.DB, filters repositories.ProposalFilters) *gorm.DB {
	if filters.Search != nil && *filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+*filters.Search+"%")
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if len(filters.TagIDs) > 0 {
		query = query.Where(
			"id IN (SELECT proposal_id FROM proposal_tag WHERE tag_id IN ?)",
			filters.TagIDs,
		)
	}
	return query
}

// ApplyPagination applies limit/offset when set.
func ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
