package repositories

import (
	"context"

	"github.com/confhub/proposal-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ProposalFilters struct {
	Search *string                `json:"search"`
	Status *models.ProposalStatus `json:"status"`
	UserID *uint                  `json:"user_id"`
	TagIDs []uint                 `json:"tag_ids"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type TagFilters struct {
	Search *string `json:"search"`
}

// ===== AGGREGATE STRUCTS =====

// RatedProposal carries a proposal with its review aggregates,
// computed by SQL AVG/COUNT over the reviews table.
type RatedProposal struct {
	models.Proposal
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// ===== REPOSITORY INTERFACES =====

type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uint) (*models.Proposal, error)
	// GetByIDs returns proposals preserving the order of the given IDs.
	// IDs without a matching row are skipped.
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Proposal, error)
	List(ctx context.Context, filters ProposalFilters) ([]*models.Proposal, int64, error)
	Update(ctx context.Context, proposal *models.Proposal) error
	UpdateStatus(ctx context.Context, id uint, status models.ProposalStatus) error
	Delete(ctx context.Context, id uint) error
	ReplaceTags(ctx context.Context, proposal *models.Proposal, tags []models.Tag) error

	// TopRated returns approved proposals whose average rating meets
	// minAverage and that have at least one review, ordered by average
	// rating then review count, both descending.
	TopRated(ctx context.Context, minAverage float64, limit int) ([]*RatedProposal, error)

	// ReviewAggregates returns (average rating, review count) for one proposal.
	ReviewAggregates(ctx context.Context, proposalID uint) (float64, int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	ListByProposal(ctx context.Context, proposalID uint) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	ExistsForReviewer(ctx context.Context, proposalID, reviewerID uint) (bool, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context, filters TagFilters) ([]*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// FindOrCreateByNames resolves tag names to rows, creating missing ones.
	FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
