// Package results provides database operations for the append-only lesson
// result history. Rows are inserted once and never updated, except for the
// social counters and sharing flag which do not touch the learning log.
package results

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles lesson-result database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new results repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a result snapshot.
func (r *Repository) Create(ctx context.Context, result *entities.LessonResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// GetByHash retrieves a single snapshot.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.LessonResult, error) {
	var result entities.LessonResult
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	UserHash   string
	LessonHash string
	SharedOnly bool
	Limit      int
	Offset     int
}

// List returns snapshots matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.LessonResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.LessonResult{})
	if filter.UserHash != "" {
		query = query.Where("user_hash = ?", filter.UserHash)
	}
	if filter.LessonHash != "" {
		query = query.Where("lesson_hash = ?", filter.LessonHash)
	}
	if filter.SharedOnly {
		query = query.Where("is_shared = ?", true)
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

	var results []entities.LessonResult
	err := query.Order("created_at DESC").Find(&results).Error
	return results, total, err
}

// SetShared flips the sharing flag on a snapshot.
func (r *Repository) SetShared(ctx context.Context, hash string, shared bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.LessonResult{}).
		Where("hash = ?", hash).
		Update("is_shared", shared)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddLike increments the like counter.
func (r *Repository) AddLike(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.LessonResult{}).
		Where("hash = ?", hash).
		Update("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
