package services

import (
	"github.com/confhub/proposal-service/internal/models"
)

// ProposalPolicy holds the per-action authorization predicates for
// proposals. Admins pass every check.
type ProposalPolicy struct{}

// ViewAny reports whether the user may list proposals at all.
// Everyone authenticated can; visibility scoping happens in the query.
func (ProposalPolicy) ViewAny(user *models.User) bool {
	return user != nil
}

// View reports whether the user may see one proposal. Speakers see only
// their own; reviewers and admins see all.
func (ProposalPolicy) View(user *models.User, proposal *models.Proposal) bool {
	if user == nil {
		return false
	}
	if user.CanReview() {
		return true
	}
	return proposal.UserID == user.ID
}

// Create reports whether the user may submit proposals.
func (ProposalPolicy) Create(user *models.User) bool {
	return user != nil && user.IsSpeaker()
}

// Update reports whether the user may modify a proposal.
func (ProposalPolicy) Update(user *models.User, proposal *models.Proposal) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || proposal.UserID == user.ID
}

// Delete mirrors Update: owner or admin.
func (ProposalPolicy) Delete(user *models.User, proposal *models.Proposal) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || proposal.UserID == user.ID
}

// Download follows the same visibility rule as View.
func (ProposalPolicy) Download(user *models.User, proposal *models.Proposal) bool {
	return ProposalPolicy{}.View(user, proposal)
}

// Review reports whether the user may rate and comment on proposals.
func (ProposalPolicy) Review(user *models.User) bool {
	return user != nil && user.CanReview()
}

// ChangeStatus is admin-only.
func (ProposalPolicy) ChangeStatus(user *models.User) bool {
	return user != nil && user.IsAdmin()
}
