// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByHash(ctx, hash)
package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user, assigning a fresh hash when none is set.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	if user.Hash == "" {
		user.Hash = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = entities.RoleUser
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByHash retrieves a user by their hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByMobilePhone retrieves a user by their mobile phone, the login
// identifier.
func (r *Repository) GetByMobilePhone(ctx context.Context, mobilePhone string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("mobile_phone = ?", mobilePhone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.User{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var users []entities.User
	err := query.Order("created_at DESC").Find(&users).Error
	return users, total, err
}

// Update applies field updates to a user by hash.
func (r *Repository) Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.User, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("hash = ?", hash).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByHash(ctx, hash)
}

// Delete soft-deletes a user.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&entities.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
