package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/cache"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

type tagPostgreSQL struct {
	db *gorm.DB
	cm *cache.CacheManager
}

// NewTagPostgreSQL creates the tag repository.
func NewTagPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.TagRepository {
	return &tagPostgreSQL{db: db, cm: cm}
}

func (r *tagPostgreSQL) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("create tag: %w", err)
	}

	cache.InvalidateTagCache(ctx, r.cm)
	return nil
}

func (r *tagPostgreSQL) List(ctx context.Context, filters repositories.TagFilters) ([]*models.Tag, error) {
	var tags []*models.Tag

	key := "list:all"
	if filters.Search != nil && *filters.Search != "" {
		key = "list:search:" + strings.ToLower(*filters.Search)
	}

	err := r.cm.Tag.CacheOrExecute(ctx, key, &tags, cache.TagCacheConfig.TTL, func() (interface{}, error) {
		query := r.db.WithContext(ctx).Model(&models.Tag{})
		if filters.Search != nil && *filters.Search != "" {
			query = query.Where("name ILIKE ?", "%"+*filters.Search+"%")
		}

		var rows []*models.Tag
		if err := query.Order("name ASC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return tags, nil
}

func (r *tagPostgreSQL) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagPostgreSQL) FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	created := false

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		result := r.db.WithContext(ctx).Where(models.Tag{Name: name}).FirstOrCreate(&tag)
		if result.Error != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", name, result.Error)
		}
		if result.RowsAffected > 0 {
			created = true
		}

		tags = append(tags, tag)
	}

	if created {
		cache.InvalidateTagCache(ctx, r.cm)
	}

	return tags, nil
}
