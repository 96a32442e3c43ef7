package models

import (
	"time"
)

type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusApproved ProposalStatus = "approved"
	StatusRejected ProposalStatus = "rejected"
)

// ProposalStatuses lists every valid proposal status value.
var ProposalStatuses = []ProposalStatus{StatusPending, StatusApproved, StatusRejected}

func (s ProposalStatus) Valid() bool {
	for _, v := range ProposalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Proposal struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:255"`
	Description string         `json:"description" gorm:"not null;type:text"`
	FilePath    *string        `json:"file_path" gorm:"size:500"`
	Status      ProposalStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tags    []Tag    `json:"tags,omitempty" gorm:"many2many:proposal_tag;"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}
