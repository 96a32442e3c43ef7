package search

import (
	"context"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

// ProposalIndex abstracts the full-text search backend. The concrete
// implementation is chosen once at startup and injected; services never
// consult configuration at request time.
type ProposalIndex interface {
	// Enabled reports whether this index actually serves queries.
	// When false, callers fall back to SQL filtering.
	Enabled() bool

	// Search returns matching proposal IDs in relevance order, plus the
	// total hit count for pagination.
	Search(ctx context.Context, query string, filters repositories.ProposalFilters) ([]uint, int64, error)

	// Save upserts a proposal record into the index.
	Save(ctx context.Context, proposal *models.Proposal) error

	// Delete removes a proposal record from the index.
	Delete(ctx context.Context, proposalID uint) error
}

// NoopIndex is used when no search backend is configured.
type NoopIndex struct{}

func NewNoopIndex() *NoopIndex {
	return &NoopIndex{}
}

func (NoopIndex) Enabled() bool { return false }

func (NoopIndex) Search(context.Context, string, repositories.ProposalFilters) ([]uint, int64, error) {
	return nil, 0, nil
}

func (NoopIndex) Save(context.Context, *models.Proposal) error { return nil }

func (NoopIndex) Delete(context.Context, uint) error { return nil }
