package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReviewer UserRole = "reviewer"
	RoleSpeaker  UserRole = "speaker"
)

// RegistrableRoles lists the roles accepted by public registration.
// Admin accounts are provisioned out-of-band.
var RegistrableRoles = []UserRole{RoleSpeaker, RoleReviewer}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanReview reports whether the user may review proposals.
// Admins implicitly satisfy the reviewer capability.
func (u *User) CanReview() bool {
	return u.Role == RoleReviewer || u.Role == RoleAdmin
}

// IsSpeaker reports whether the user may submit proposals.
func (u *User) IsSpeaker() bool {
	return u.Role == RoleSpeaker || u.Role == RoleAdmin
}
