// Package courses provides database operations for courses and the
// course-lesson membership relation the status machines read.
package courses

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all course database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new courses repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a course.
func (r *Repository) Create(ctx context.Context, course *entities.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// GetByHash retrieves a course by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.Course, error) {
	var course entities.Course
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Language   string
	Difficulty string
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// List returns courses matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Course{})
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
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

	var courses []entities.Course
	err := query.Order("created_at DESC").Find(&courses).Error
	return courses, total, err
}

// Update applies field updates to a course by hash.
func (r *Repository) Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Course, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Course{}).
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

// Delete soft-deletes a course.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&entities.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddLesson attaches a lesson to a course at the given position.
func (r *Repository) AddLesson(ctx context.Context, courseHash, lessonHash string, orderIndex int, visible bool) error {
	membership := entities.CourseLesson{
		CourseHash: courseHash,
		LessonHash: lessonHash,
		OrderIndex: orderIndex,
		IsVisible:  visible,
	}
	return r.db.WithContext(ctx).Create(&membership).Error
}

// VisibleLessons returns visible memberships of a course ordered by order
// index ascending. A missing index sorts as zero.
func (r *Repository) VisibleLessons(ctx context.Context, courseHash string) ([]entities.CourseLesson, error) {
	var memberships []entities.CourseLesson
	err := r.db.WithContext(ctx).
		Where("course_hash = ? AND is_visible = ?", courseHash, true).
		Order("COALESCE(order_index, 0) ASC").
		Find(&memberships).Error
	return memberships, err
}

// CourseForLesson returns the hash of the course owning a lesson, or
// gorm.ErrRecordNotFound for a standalone lesson.
func (r *Repository) CourseForLesson(ctx context.Context, lessonHash string) (string, error) {
	var membership entities.CourseLesson
	err := r.db.WithContext(ctx).
		Where("lesson_hash = ?", lessonHash).
		First(&membership).Error
	if err != nil {
		return "", err
	}
	return membership.CourseHash, nil
}

// CompletionCounts returns the number of visible+published memberships of a
// course and how many of them the user has completed. Always recomputed
// from current rows, never cached.
func (r *Repository) CompletionCounts(ctx context.Context, userHash, courseHash string) (int64, int64, error) {
	base := r.db.WithContext(ctx).
		Table("course_lessons cl").
		Joins("JOIN lessons l ON l.hash = cl.lesson_hash").
		Where("cl.course_hash = ? AND cl.is_visible = ? AND l.is_published = ?", courseHash, true, true).
		Where("l.deleted_at IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	err := r.db.WithContext(ctx).
		Table("course_lessons cl").
		Joins("JOIN lessons l ON l.hash = cl.lesson_hash").
		Joins("JOIN user_lessons ul ON ul.lesson_hash = cl.lesson_hash AND ul.user_hash = ?", userHash).
		Where("cl.course_hash = ? AND cl.is_visible = ? AND l.is_published = ?", courseHash, true, true).
		Where("l.deleted_at IS NULL").
		Where("ul.status = ?", entities.LessonCompleted).
		Count(&completed).Error
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

// LessonsOfCourse returns the visible lessons of a course joined to their
// content rows, in course order.
func (r *Repository) LessonsOfCourse(ctx context.Context, courseHash string) ([]entities.Lesson, error) {
	var lessons []entities.Lesson
	err := r.db.WithContext(ctx).
		Table("lessons").
		Joins("JOIN course_lessons cl ON cl.lesson_hash = lessons.hash").
		Where("cl.course_hash = ? AND cl.is_visible = ?", courseHash, true).
		Where("lessons.deleted_at IS NULL").
		Order("COALESCE(cl.order_index, 0) ASC").
		Find(&lessons).Error
	return lessons, err
}
