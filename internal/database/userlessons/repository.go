// Package userlessons provides database operations for per-user lesson
// progress (user_lessons) and its append-only result history.
package userlessons

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all lesson-progress database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new user-lessons repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves the progress record for a (user, lesson) pair.
func (r *Repository) Get(ctx context.Context, userHash, lessonHash string) (*entities.LessonProgress, error) {
	var record entities.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_hash = ? AND lesson_hash = ?", userHash, lessonHash).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a single progress record.
func (r *Repository) Create(ctx context.Context, record *entities.LessonProgress) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateMissing bulk-inserts progress rows, skipping any that already
// exist. One statement with conflict-skip so concurrent enrollments can
// never produce duplicates.
func (r *Repository) CreateMissing(ctx context.Context, rows []entities.LessonProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// SetStatus updates the status of an existing record, touching
// last_accessed. A non-nil progress overwrites the progress value.
func (r *Repository) SetStatus(ctx context.Context, userHash, lessonHash string, target entities.LessonStatus, now time.Time, progress *float64) (*entities.LessonProgress, error) {
	updates := map[string]interface{}{
		"status":        target,
		"last_accessed": now,
		"updated_at":    now,
	}
	if progress != nil {
		updates["progress"] = *progress
	}

	result := r.db.WithContext(ctx).
		Model(&entities.LessonProgress{}).
		Where("user_hash = ? AND lesson_hash = ?", userHash, lessonHash).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, userHash, lessonHash)
}

// RecordProgress persists a progress report: status and progress value are
// overwritten, summary keys are shallow-merged into the learning log.
// Read-modify-write; concurrent reports are last-write-wins on the summary,
// which is acceptable because the full history lives in the results table.
func (r *Repository) RecordProgress(ctx context.Context, userHash, lessonHash string, progress float64, target entities.LessonStatus, summary map[string]interface{}, now time.Time) (*entities.LessonProgress, error) {
	record, err := r.Get(ctx, userHash, lessonHash)
	if err != nil {
		return nil, err
	}

	if record.LearningLog == nil {
		record.LearningLog = map[string]interface{}{}
	}
	for k, v := range summary {
		record.LearningLog[k] = v
	}
	record.Progress = progress
	record.Status = target
	record.LastAccessed = &now
	record.UpdatedAt = now

	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// SetShared flips the sharing flag.
func (r *Repository) SetShared(ctx context.Context, userHash, lessonHash string, shared bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.LessonProgress{}).
		Where("user_hash = ? AND lesson_hash = ?", userHash, lessonHash).
		Update("is_shared", shared)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetDisplayStatus stores an administrative status (locked, archived,
// deleted) directly, bypassing the transition machine.
func (r *Repository) SetDisplayStatus(ctx context.Context, userHash, lessonHash string, status entities.LessonStatus) (*entities.LessonProgress, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.LessonProgress{}).
		Where("user_hash = ? AND lesson_hash = ?", userHash, lessonHash).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, userHash, lessonHash)
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	UserHash    string
	TeacherHash string
	LessonHash  string
	FromCourse  string
	Status      entities.LessonStatus
	Limit       int
	Offset      int
}

// List returns progress records matching the filter, most recently
// accessed first, plus the unpaginated total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.LessonProgress, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.LessonProgress{})
	if filter.UserHash != "" {
		query = query.Where("user_hash = ?", filter.UserHash)
	}
	if filter.TeacherHash != "" {
		query = query.Where("teacher_hash = ?", filter.TeacherHash)
	}
	if filter.LessonHash != "" {
		query = query.Where("lesson_hash = ?", filter.LessonHash)
	}
	if filter.FromCourse != "" {
		query = query.Where("from_course = ?", filter.FromCourse)
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

	var records []entities.LessonProgress
	err := query.Order("updated_at DESC").Find(&records).Error
	return records, total, err
}

// Delete removes a progress record. Administrative use only.
func (r *Repository) Delete(ctx context.Context, userHash, lessonHash string) error {
	result := r.db.WithContext(ctx).
		Where("user_hash = ? AND lesson_hash = ?", userHash, lessonHash).
		Delete(&entities.LessonProgress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
