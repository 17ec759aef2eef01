// Package lessons provides database operations for lesson content.
package lessons

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all lesson database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new lessons repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a lesson.
func (r *Repository) Create(ctx context.Context, lesson *entities.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

// GetByHash retrieves a lesson by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.Lesson, error) {
	var lesson entities.Lesson
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	LessonType    string
	FromCourse    string
	PublishedOnly bool
	Search        string
	Limit         int
	Offset        int
}

// List returns lessons matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.Lesson, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Lesson{})
	if filter.LessonType != "" {
		query = query.Where("lesson_type = ?", filter.LessonType)
	}
	if filter.FromCourse != "" {
		query = query.Where("from_course = ?", filter.FromCourse)
	}
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
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

	var lessons []entities.Lesson
	err := query.Order("created_at DESC").Find(&lessons).Error
	return lessons, total, err
}

// Update applies field updates to a lesson by hash.
func (r *Repository) Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Lesson, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Lesson{}).
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

// Delete soft-deletes a lesson.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&entities.Lesson{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTypes returns the active lesson types.
func (r *Repository) ListTypes(ctx context.Context) ([]entities.LessonType, error) {
	var types []entities.LessonType
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&types).Error
	return types, err
}
