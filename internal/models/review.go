package models

import (
	"time"
)

// ReviewRatings is the discrete rating scale. 10 marks an exceptional
// "must accept" vote and is intentionally outside the 1-5 range.
var ReviewRatings = []int{1, 2, 3, 4, 5, 10}

func ValidRating(rating int) bool {
	for _, r := range ReviewRatings {
		if rating == r {
			return true
		}
	}
	return false
}

type Review struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	ProposalID uint    `json:"proposal_id" gorm:"not null;uniqueIndex:idx_reviews_proposal_reviewer"`
	UserID     uint    `json:"user_id" gorm:"not null;uniqueIndex:idx_reviews_proposal_reviewer"`
	Rating     int     `json:"rating" gorm:"not null"`
	Comment    *string `json:"comment" gorm:"type:text"`

	Proposal *Proposal `json:"proposal,omitempty" gorm:"foreignKey:ProposalID"`
	Reviewer *User     `json:"reviewer,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
