package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/cache"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

type userPostgreSQL struct {
	db *gorm.DB
	cm *cache.CacheManager
}

// NewUserPostgreSQL creates the user repository.
func NewUserPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.UserRepository {
	return &userPostgreSQL{db: db, cm: cm}
}

func (r *userPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID serves the session middleware on every authenticated request,
// so it is cached. The password hash does not survive the JSON roundtrip;
// credential checks must use GetByEmail.
func (r *userPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	key := fmt.Sprintf("id:%d", id)
	err := r.cm.User.CacheOrExecute(ctx, key, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userPostgreSQL) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check email existence: %w", err)
	}
	return count > 0, nil
}
