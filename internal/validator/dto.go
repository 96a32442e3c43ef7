package validator

import (
	"github.com/confhub/proposal-service/internal/models"
)

// RegisterRequest represents the public registration payload
type RegisterRequest struct {
	Name     string          `json:"name" form:"name" validate:"required,max=100"`
	Email    string          `json:"email" form:"email" validate:"required,email,max=255"`
	Password string          `json:"password" form:"password" validate:"required,min=8,max=72"`
	Role     models.UserRole `json:"role" form:"role" validate:"required,registration_role"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProposalCreateRequest represents the proposal submission payload.
// The optional PDF travels as a multipart file part, not in this struct.
type ProposalCreateRequest struct {
	Title       string   `json:"title" form:"title" validate:"required,max=255"`
	Description string   `json:"description" form:"description" validate:"required"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

// ProposalUpdateRequest represents a partial proposal update
type ProposalUpdateRequest struct {
	Title       *string  `json:"title" form:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" form:"description" validate:"omitempty,min=1"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

// ReviewCreateRequest represents a review submission
type ReviewCreateRequest struct {
	Rating  int     `json:"rating" validate:"required,review_rating"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// ReviewUpdateRequest represents a review update
type ReviewUpdateRequest struct {
	Rating  int     `json:"rating" validate:"required,review_rating"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// StatusUpdateRequest represents the admin status change payload
type StatusUpdateRequest struct {
	Status models.ProposalStatus `json:"status" validate:"required,proposal_status"`
}

// TagCreateRequest represents tag creation
type TagCreateRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
