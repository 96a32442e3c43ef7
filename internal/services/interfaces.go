package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request types are shared with the validator package
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type CreateProposalRequest = validator.ProposalCreateRequest
type UpdateProposalRequest = validator.ProposalUpdateRequest
type CreateReviewRequest = validator.ReviewCreateRequest
type UpdateReviewRequest = validator.ReviewUpdateRequest
type CreateTagRequest = validator.TagCreateRequest

// Pagination and top-rated bounds
const (
	DefaultPerPage = 15
	MinPerPage     = 1
	MaxPerPage     = 100

	TopRatedDefaultLimit = 10
	TopRatedMaxLimit     = 50
	TopRatedMinAverage   = 4.0
)

// ProposalListParams are the composable listing filters as received
// from the query string, before clamping.
type ProposalListParams struct {
	Search  string
	Status  *models.ProposalStatus
	TagIDs  []uint
	UserID  *uint
	Page    int
	PerPage int
}

type ProposalResponse struct {
	*models.Proposal
	AverageRating *float64 `json:"average_rating,omitempty"`
	ReviewCount   int64    `json:"review_count"`
	CanEdit       bool     `json:"can_edit"`
	CanDelete     bool     `json:"can_delete"`
}

type ProposalListResponse struct {
	Proposals []*ProposalResponse `json:"proposals"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
}

type TopRatedProposalResponse struct {
	*models.Proposal
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// FileStore is the slice of the storage backend the services need:
// resolving and removing stored attachments.
type FileStore interface {
	AbsPath(storedPath string) (string, error)
	Exists(storedPath string) bool
	Remove(storedPath string) error
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

type ProposalService interface {
	List(ctx context.Context, params ProposalListParams, actor *models.User) (*ProposalListResponse, error)
	Create(ctx context.Context, req *CreateProposalRequest, filePath *string, actor *models.User) (*ProposalResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*ProposalResponse, error)
	Update(ctx context.Context, id uint, req *UpdateProposalRequest, newFilePath *string, actor *models.User) (*ProposalResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	TopRated(ctx context.Context, limit int) ([]*TopRatedProposalResponse, error)

	// FilePath resolves the stored attachment to an absolute path for
	// the download endpoint.
	FilePath(ctx context.Context, id uint, actor *models.User) (string, error)

	// UpdateStatus is the admin-gated flat status update. The
	// status-changed event fires only when the value actually changed.
	UpdateStatus(ctx context.Context, id uint, status models.ProposalStatus, actor *models.User) (*ProposalResponse, error)
}

type ReviewService interface {
	ListByProposal(ctx context.Context, proposalID uint, actor *models.User) ([]*models.Review, error)
	Create(ctx context.Context, proposalID uint, req *CreateReviewRequest, actor *models.User) (*models.Review, error)
	GetByID(ctx context.Context, proposalID, reviewID uint, actor *models.User) (*models.Review, error)
	Update(ctx context.Context, proposalID, reviewID uint, req *UpdateReviewRequest, actor *models.User) (*models.Review, error)

	// RatingOptions returns the discrete rating scale for clients.
	RatingOptions() []int
}

type TagService interface {
	List(ctx context.Context, search *string) ([]*models.Tag, error)
	Create(ctx context.Context, req *CreateTagRequest) (*models.Tag, error)
}

type ExportService interface {
	// ProposalsWorkbook renders every proposal with its review
	// aggregates into an Excel workbook.
	ProposalsWorkbook(ctx context.Context) (*excelize.File, error)
}

// ServiceManager provides access to all services with lifecycle management
type ServiceManager interface {
	Auth() AuthService
	Proposal() ProposalService
	Review() ReviewService
	Tag() TagService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
