package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	algoliasearch "github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

// proposalRecord is the shape stored in the Algolia index.
type proposalRecord struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      uint   `json:"user_id"`
	TagIDs      []uint `json:"tag_ids"`
}

// AlgoliaIndex implements ProposalIndex against a hosted Algolia index.
type AlgoliaIndex struct {
	index *algoliasearch.Index
}

// NewAlgoliaIndex creates the Algolia-backed proposal index.
func NewAlgoliaIndex(appID, apiKey, indexName string) *AlgoliaIndex {
	client := algoliasearch.NewClient(appID, apiKey)
	return &AlgoliaIndex{index: client.InitIndex(indexName)}
}

func (a *AlgoliaIndex) Enabled() bool { return true }

func (a *AlgoliaIndex) Search(ctx context.Context, query string, filters repositories.ProposalFilters) ([]uint, int64, error) {
	page := 0
	hitsPerPage := filters.Limit
	if hitsPerPage > 0 && filters.Offset > 0 {
		page = filters.Offset / hitsPerPage
	}

	opts := []interface{}{ctx, opt.HitsPerPage(hitsPerPage), opt.Page(page)}
	if f := buildFilters(filters); f != "" {
		opts = append(opts, opt.Filters(f))
	}

	res, err := a.index.Search(query, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("algolia search: %w", err)
	}

	ids := make([]uint, 0, len(res.Hits))
	for _, hit := range res.Hits {
		objectID, ok := hit["objectID"].(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(objectID, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	return ids, int64(res.NbHits), nil
}

func (a *AlgoliaIndex) Save(ctx context.Context, proposal *models.Proposal) error {
	tagIDs := make([]uint, len(proposal.Tags))
	for i, tag := range proposal.Tags {
		tagIDs[i] = tag.ID
	}

	record := proposalRecord{
		ObjectID:    strconv.FormatUint(uint64(proposal.ID), 10),
		Title:       proposal.Title,
		Description: proposal.Description,
		Status:      string(proposal.Status),
		UserID:      proposal.UserID,
		TagIDs:      tagIDs,
	}

	if _, err := a.index.SaveObject(record, ctx); err != nil {
		return fmt.Errorf("algolia save object: %w", err)
	}
	return nil
}

func (a *AlgoliaIndex) Delete(ctx context.Context, proposalID uint) error {
	objectID := strconv.FormatUint(uint64(proposalID), 10)
	if _, err := a.index.DeleteObject(objectID, ctx); err != nil {
		return fmt.Errorf("algolia delete object: %w", err)
	}
	return nil
}

// buildFilters translates listing filters into Algolia filter syntax,
// e.g. `status:approved AND user_id = 5 AND (tag_ids = 1 OR tag_ids = 2)`.
func buildFilters(filters repositories.ProposalFilters) string {
	var parts []string

	if filters.Status != nil {
		parts = append(parts, "status:"+string(*filters.Status))
	}
	if filters.UserID != nil {
		parts = append(parts, fmt.Sprintf("user_id = %d", *filters.UserID))
	}
	if len(filters.TagIDs) > 0 {
		tagParts := make([]string, len(filters.TagIDs))
		for i, id := range filters.TagIDs {
			tagParts[i] = fmt.Sprintf("tag_ids = %d", id)
		}
		parts = append(parts, "("+strings.Join(tagParts, " OR ")+")")
	}

	return strings.Join(parts, " AND ")
}
