package status

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// EnrollmentStore is the persistence surface the course machine needs.
// SetStatus updates status and updated_at; a non-nil completion additionally
// stamps the completion date and forces the cached progress to 100.
type EnrollmentStore interface {
	Get(ctx context.Context, userHash, courseHash string) (*entities.Enrollment, error)
	SetStatus(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, now time.Time, completion *time.Time) (*entities.Enrollment, error)
}

// MembershipReader provides read-only access to the course_lessons relation.
type MembershipReader interface {
	// VisibleLessons returns visible memberships of a course ordered by
	// order index ascending (missing index sorts as 0).
	VisibleLessons(ctx context.Context, courseHash string) ([]entities.CourseLesson, error)
	// CourseForLesson returns the hash of the course owning a lesson, or
	// gorm.ErrRecordNotFound for a standalone lesson.
	CourseForLesson(ctx context.Context, lessonHash string) (string, error)
	// CompletionCounts returns the number of visible+published memberships
	// of a course and how many of them the user has completed.
	CompletionCounts(ctx context.Context, userHash, courseHash string) (total, completed int64, err error)
}

// ProgressSeeder batch-creates lesson-progress rows, silently skipping
// rows that already exist.
type ProgressSeeder interface {
	CreateMissing(ctx context.Context, rows []entities.LessonProgress) error
}

// CourseManager owns the enrollment lifecycle. Collaborators are narrow
// interfaces so the manager can be unit-tested with fakes.
type CourseManager struct {
	enrollments EnrollmentStore
	memberships MembershipReader
	seeder      ProgressSeeder
}

func NewCourseManager(enrollments EnrollmentStore, memberships MembershipReader, seeder ProgressSeeder) *CourseManager {
	return &CourseManager{
		enrollments: enrollments,
		memberships: memberships,
		seeder:      seeder,
	}
}

// ChangeOption tweaks side-effect behavior of a course status change.
type ChangeOption func(*changeOptions)

type changeOptions struct {
	allLessons bool
}

// WithAllLessons makes the ENROLLED side effect create progress rows for
// every visible lesson of the course instead of only the first one.
func WithAllLessons() ChangeOption {
	return func(o *changeOptions) {
		o.allLessons = true
	}
}

// ChangeStatus validates and applies a status transition for the
// (userHash, courseHash) enrollment, then runs the side effects of the new
// status. The status write always happens before side effects run, so
// side-effect logic observes post-transition state.
func (m *CourseManager) ChangeStatus(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, opts ...ChangeOption) (*entities.Enrollment, error) {
	var o changeOptions
	for _, opt := range opts {
		opt(&o)
	}

	current, err := m.enrollments.Get(ctx, userHash, courseHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("load enrollment", err)
	}

	if !CourseTransitionAllowed(current.Status, target) {
		return nil, &InvalidTransitionError{
			Entity:    "enrollment",
			Current:   string(current.Status),
			Requested: string(target),
		}
	}

	now := time.Now().UTC()
	var completion *time.Time
	if target == entities.CourseCompleted {
		completion = &now
	}

	updated, err := m.enrollments.SetStatus(ctx, userHash, courseHash, target, now, completion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("update enrollment status", err)
	}

	if err := m.dispatch(ctx, userHash, courseHash, target, o); err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *CourseManager) dispatch(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, o changeOptions) error {
	switch target {
	case entities.CourseEnrolled:
		return m.SeedLessonProgress(ctx, userHash, courseHash, o.allLessons)
	case entities.CourseInProgress, entities.CourseCompleted, entities.CourseDropped, entities.CoursePaused:
		// Reserved extension points; intentionally inert today.
		return nil
	}
	return nil
}

// SeedLessonProgress creates the user's lesson-progress rows for a course:
// only the first visible lesson by default, all of them when allLessons is
// set. A course without lessons is a no-op. Creation is idempotent --
// existing rows are skipped, so repeated or concurrent enrollments never
// produce duplicates. Also invoked directly by the enrollment endpoint
// right after the initial ENROLLED insert.
func (m *CourseManager) SeedLessonProgress(ctx context.Context, userHash, courseHash string, allLessons bool) error {
	memberships, err := m.memberships.VisibleLessons(ctx, courseHash)
	if err != nil {
		return dependency("list course lessons", err)
	}
	if len(memberships) == 0 {
		return nil // no lessons available yet
	}
	if !allLessons {
		memberships = memberships[:1]
	}

	now := time.Now().UTC()
	rows := make([]entities.LessonProgress, 0, len(memberships))
	for _, cl := range memberships {
		rows = append(rows, entities.LessonProgress{
			UserHash:     userHash,
			LessonHash:   cl.LessonHash,
			Status:       entities.LessonNotStarted,
			Progress:     0.0,
			LastAccessed: &now,
			LearningLog:  map[string]interface{}{},
			IsShared:     false,
			FromCourse:   courseHash,
		})
	}

	if err := m.seeder.CreateMissing(ctx, rows); err != nil {
		return dependency("create lesson progress records", err)
	}
	return nil
}

// Status returns the current persisted enrollment status.
func (m *CourseManager) Status(ctx context.Context, userHash, courseHash string) (entities.CourseStatus, error) {
	enrollment, err := m.enrollments.Get(ctx, userHash, courseHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", dependency("load enrollment", err)
	}
	return enrollment.Status, nil
}
