package repositories

import (
	"sort"

	"github.com/confhub/proposal-service/internal/models"
)

// QualifiesTopRated reports whether a proposal belongs on the top-rated
// board: approved, at least one review, and an average rating at or
// above the threshold.
func QualifiesTopRated(status models.ProposalStatus, average float64, reviewCount int64, minAverage float64) bool {
	return status == models.StatusApproved && reviewCount > 0 && average >= minAverage
}

// SortRated orders rated proposals best first: higher average, then
// more reviews, then lower id so ties page deterministically.
func SortRated(rated []*RatedProposal) {
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].AverageRating != rated[j].AverageRating {
			return rated[i].AverageRating > rated[j].AverageRating
		}
		if rated[i].ReviewCount != rated[j].ReviewCount {
			return rated[i].ReviewCount > rated[j].ReviewCount
		}
		return rated[i].Proposal.ID < rated[j].Proposal.ID
	})
}
