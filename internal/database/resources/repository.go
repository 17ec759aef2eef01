// Package resources provides database operations for learning resources.
package resources

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all resource database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new resources repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a resource, assigning a fresh hash when none is set.
func (r *Repository) Create(ctx context.Context, resource *entities.Resource) error {
	if resource.Hash == "" {
		resource.Hash = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(resource).Error
}

// GetByHash retrieves a resource by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.Resource, error) {
	var resource entities.Resource
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&resource).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Type       string
	Language   string
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// List returns resources matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.Resource, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Resource{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var resources []entities.Resource
	err := query.Order("created_at DESC").Find(&resources).Error
	return resources, total, err
}

// Update applies field updates to a resource by hash.
func (r *Repository) Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Resource, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Resource{}).
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

// Delete soft-deletes a resource.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&entities.Resource{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
