package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
	"github.com/confhub/proposal-service/internal/validator"
)

type tagService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

// NewTagService creates the tag service.
func NewTagService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) TagService {
	return &tagService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *tagService) List(ctx context.Context, search *string) ([]*models.Tag, error) {
	return s.repo.Tag().List(ctx, repositories.TagFilters{Search: search})
}

func (s *tagService) Create(ctx context.Context, req *CreateTagRequest) (*models.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)

	// Find-or-create keeps tag names unique without surfacing conflicts
	tags, err := s.repo.Tag().FindOrCreateByNames(ctx, []string{name})
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	if len(tags) == 0 {
		return nil, ValidationErrors{{
			Field:   "name",
			Message: "is required",
			Rule:    "required",
		}}
	}

	tag := tags[0]
	return &tag, nil
}
