package services

import (
	"testing"

	"github.com/confhub/proposal-service/internal/models"
)

func TestProposalPolicy(t *testing.T) {
	policy := ProposalPolicy{}

	adminUser := &models.User{ID: 1, Role: models.RoleAdmin}
	reviewerUser := &models.User{ID: 2, Role: models.RoleReviewer}
	ownerUser := &models.User{ID: 3, Role: models.RoleSpeaker}
	otherSpeaker := &models.User{ID: 4, Role: models.RoleSpeaker}

	proposal := &models.Proposal{ID: 10, UserID: ownerUser.ID}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"nil user cannot list", policy.ViewAny(nil), false},
		{"speaker can list", policy.ViewAny(ownerUser), true},

		{"owner views own proposal", policy.View(ownerUser, proposal), true},
		{"reviewer views any proposal", policy.View(reviewerUser, proposal), true},
		{"admin views any proposal", policy.View(adminUser, proposal), true},
		{"other speaker cannot view", policy.View(otherSpeaker, proposal), false},

		{"speaker can create", policy.Create(ownerUser), true},
		{"reviewer cannot create", policy.Create(reviewerUser), false},
		{"admin can create", policy.Create(adminUser), true},

		{"owner can update", policy.Update(ownerUser, proposal), true},
		{"reviewer cannot update", policy.Update(reviewerUser, proposal), false},
		{"admin can update", policy.Update(adminUser, proposal), true},

		{"owner can delete", policy.Delete(ownerUser, proposal), true},
		{"other speaker cannot delete", policy.Delete(otherSpeaker, proposal), false},

		{"download mirrors view", policy.Download(otherSpeaker, proposal), false},

		{"reviewer can review", policy.Review(reviewerUser), true},
		{"speaker cannot review", policy.Review(ownerUser), false},
		{"admin can review", policy.Review(adminUser), true},

		{"admin changes status", policy.ChangeStatus(adminUser), true},
		{"reviewer cannot change status", policy.ChangeStatus(reviewerUser), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}
