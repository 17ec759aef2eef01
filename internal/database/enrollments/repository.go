// Package enrollments provides database operations for course enrollments.
package enrollments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all enrollment (user_courses) database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new enrollments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a fresh enrollment in the ENROLLED state. Returns
// gorm.ErrDuplicatedKey behavior through the driver if one already exists;
// callers check with Get first.
func (r *Repository) Create(ctx context.Context, userHash, courseHash string) (*entities.Enrollment, error) {
	now := time.Now().UTC()
	enrollment := &entities.Enrollment{
		UserHash:       userHash,
		CourseHash:     courseHash,
		Status:         entities.CourseEnrolled,
		LastAccessedAt: &now,
	}
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Get retrieves the enrollment for a (user, course) pair.
func (r *Repository) Get(ctx context.Context, userHash, courseHash string) (*entities.Enrollment, error) {
	var enrollment entities.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_hash = ? AND course_hash = ?", userHash, courseHash).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetByID retrieves an enrollment by primary key.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Enrollment, error) {
	var enrollment entities.Enrollment
	if err := r.db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// SetStatus updates the status of an existing enrollment. A non-nil
// completion stamps the completion date and forces the cached progress
// to 100.
func (r *Repository) SetStatus(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, now time.Time, completion *time.Time) (*entities.Enrollment, error) {
	updates := map[string]interface{}{
		"status":           target,
		"last_accessed_at": now,
		"updated_at":       now,
	}
	if completion != nil {
		updates["completion_date"] = *completion
		updates["progress_percentage"] = 100.0
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Enrollment{}).
		Where("user_hash = ? AND course_hash = ?", userHash, courseHash).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, userHash, courseHash)
}

// SetRating stores the user's course rating.
func (r *Repository) SetRating(ctx context.Context, userHash, courseHash string, rating float64) (*entities.Enrollment, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Enrollment{}).
		Where("user_hash = ? AND course_hash = ?", userHash, courseHash).
		Update("user_rating", rating)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, userHash, courseHash)
}

// SetProgressPercentage updates the cached progress value. Used by the
// background recompute task only; the value is derived, never authoritative.
func (r *Repository) SetProgressPercentage(ctx context.Context, userHash, courseHash string, percentage float64) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Enrollment{}).
		Where("user_hash = ? AND course_hash = ?", userHash, courseHash).
		Update("progress_percentage", percentage)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	UserHash   string
	CourseHash string
	Status     entities.CourseStatus
	Limit      int
	Offset     int
}

// List returns enrollments matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Enrollment{})
	if filter.UserHash != "" {
		query = query.Where("user_hash = ?", filter.UserHash)
	}
	if filter.CourseHash != "" {
		query = query.Where("course_hash = ?", filter.CourseHash)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var enrollments []entities.Enrollment
	err := query.Order("created_at DESC").Find(&enrollments).Error
	return enrollments, total, err
}

// ListActive returns every enrollment still in a non-terminal working state.
// Used by the periodic progress rollup.
func (r *Repository) ListActive(ctx context.Context) ([]entities.Enrollment, error) {
	var enrollments []entities.Enrollment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.CourseStatus{
			entities.CourseEnrolled,
			entities.CourseInProgress,
			entities.CoursePaused,
		}).
		Find(&enrollments).Error
	return enrollments, err
}

// Delete removes an enrollment row entirely. Administrative use only; the
// state machines never delete.
func (r *Repository) Delete(ctx context.Context, userHash, courseHash string) error {
	result := r.db.WithContext(ctx).
		Where("user_hash = ? AND course_hash = ?", userHash, courseHash).
		Delete(&entities.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
