package repositories

import (
	"testing"

	"github.com/confhub/proposal-service/internal/models"
)

func TestQualifiesTopRated(t *testing.T) {
	tests := []struct {
		name    string
		status  models.ProposalStatus
		average float64
		count   int64
		want    bool
	}{
		{"approved above threshold", models.StatusApproved, 4.5, 3, true},
		{"approved exactly at threshold", models.StatusApproved, 4.0, 1, true},
		{"approved below threshold", models.StatusApproved, 3.9, 6, false},
		{"pending with a perfect average", models.StatusPending, 5.0, 2, false},
		{"rejected with a perfect average", models.StatusRejected, 5.0, 2, false},
		{"approved without reviews", models.StatusApproved, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualifiesTopRated(tt.status, tt.average, tt.count, 4.0)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortRated(t *testing.T) {
	rated := []*RatedProposal{
		{Proposal: models.Proposal{ID: 1}, AverageRating: 4.2, ReviewCount: 3},
		{Proposal: models.Proposal{ID: 2}, AverageRating: 4.8, ReviewCount: 5},
		{Proposal: models.Proposal{ID: 3}, AverageRating: 4.8, ReviewCount: 9},
		{Proposal: models.Proposal{ID: 4}, AverageRating: 4.2, ReviewCount: 3},
	}

	SortRated(rated)

	want := []uint{3, 2, 1, 4}
	for i, r := range rated {
		if r.Proposal.ID != want[i] {
			t.Fatalf("position %d: got id %d, want %d", i, r.Proposal.ID, want[i])
		}
	}
}
