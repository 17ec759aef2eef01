package status

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// LessonProgressStore is the persistence surface the lesson machine needs.
type LessonProgressStore interface {
	Get(ctx context.Context, userHash, lessonHash string) (*entities.LessonProgress, error)
	SetStatus(ctx context.Context, userHash, lessonHash string, target entities.LessonStatus, now time.Time, progress *float64) (*entities.LessonProgress, error)
	// RecordProgress persists a progress report: status and progress value
	// are overwritten, summary keys are shallow-merged into the learning log.
	RecordProgress(ctx context.Context, userHash, lessonHash string, progress float64, target entities.LessonStatus, summary map[string]interface{}, now time.Time) (*entities.LessonProgress, error)
}

// EnrollmentAdvancer is the slice of the course machine the lesson machine
// cascades into. Satisfied by *CourseManager.
type EnrollmentAdvancer interface {
	Status(ctx context.Context, userHash, courseHash string) (entities.CourseStatus, error)
	ChangeStatus(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, opts ...ChangeOption) (*entities.Enrollment, error)
}

// ProgressRecomputeQueuer enqueues a deferred refresh of the cached course
// progress percentage. Satisfied by *tasks.Client.
type ProgressRecomputeQueuer interface {
	QueueProgressRecompute(userHash, courseHash string) error
}

// LessonManager owns the lesson-progress lifecycle, including the cascades
// that promote or complete the owning course enrollment.
type LessonManager struct {
	progress    LessonProgressStore
	memberships MembershipReader
	courses     EnrollmentAdvancer
	results     ResultStore
	recompute   ProgressRecomputeQueuer
}

func NewLessonManager(progress LessonProgressStore, memberships MembershipReader, courses EnrollmentAdvancer, results ResultStore) *LessonManager {
	return &LessonManager{
		progress:    progress,
		memberships: memberships,
		courses:     courses,
		results:     results,
	}
}

// ChangeStatus validates and applies a lesson status transition for the
// (userHash, lessonHash) record, then runs the side effects of the new
// status. Completing a lesson forces progress to 100 regardless of what
// was recorded before.
func (m *LessonManager) ChangeStatus(ctx context.Context, userHash, lessonHash string, target entities.LessonStatus) (*entities.LessonProgress, error) {
	current, err := m.progress.Get(ctx, userHash, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("load lesson progress", err)
	}

	if !LessonTransitionAllowed(current.Status, target) {
		return nil, &InvalidTransitionError{
			Entity:    "lesson",
			Current:   string(current.Status),
			Requested: string(target),
		}
	}

	now := time.Now().UTC()
	var progress *float64
	if target == entities.LessonCompleted {
		full := 100.0
		progress = &full
	}

	updated, err := m.progress.SetStatus(ctx, userHash, lessonHash, target, now, progress)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("update lesson status", err)
	}

	switch target {
	case entities.LessonInProgress:
		err = m.promoteCourse(ctx, userHash, lessonHash)
	case entities.LessonCompleted:
		err = m.maybeCompleteCourse(ctx, userHash, lessonHash)
	}
	if err != nil {
		return nil, err
	}

	m.queueRecompute(ctx, userHash, lessonHash)
	return updated, nil
}

// SetRecomputeQueuer attaches the queue used to refresh the cached course
// progress percentage after a lesson status change. Optional; with no
// queue attached the periodic rollup sweep remains the only refresher.
func (m *LessonManager) SetRecomputeQueuer(q ProgressRecomputeQueuer) {
	m.recompute = q
}

// queueRecompute enqueues a progress recomputation for the lesson's owning
// course. Best effort: standalone lessons have no course, and an enqueue
// failure is healed by the next sweep.
func (m *LessonManager) queueRecompute(ctx context.Context, userHash, lessonHash string) {
	if m.recompute == nil {
		return
	}
	courseHash, err := m.memberships.CourseForLesson(ctx, lessonHash)
	if err != nil {
		return
	}
	if err := m.recompute.QueueProgressRecompute(userHash, courseHash); err != nil {
		log.Printf("Failed to queue progress recompute for %s/%s: %v", userHash, courseHash, err)
	}
}

// cascadeIgnorable reports whether a course-side failure may be dropped by
// a lesson cascade. The lesson write has already happened at that point, so
// a missing enrollment or one in a state the cascade cannot advance (say, a
// paused course whose last lesson just got completed) must not turn the
// succeeded operation into an error. Dependency failures still surface.
func cascadeIgnorable(err error) bool {
	var invalid *InvalidTransitionError
	return errors.Is(err, ErrNotFound) || errors.As(err, &invalid)
}

// promoteCourse moves the owning course's enrollment from ENROLLED to
// IN_PROGRESS when the user starts their first lesson. Standalone lessons
// and missing enrollments are fine; any other failure surfaces.
func (m *LessonManager) promoteCourse(ctx context.Context, userHash, lessonHash string) error {
	courseHash, err := m.memberships.CourseForLesson(ctx, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return dependency("resolve lesson course", err)
	}

	current, err := m.courses.Status(ctx, userHash, courseHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if current != entities.CourseEnrolled {
		return nil
	}

	_, err = m.courses.ChangeStatus(ctx, userHash, courseHash, entities.CourseInProgress)
	if err != nil && !cascadeIgnorable(err) {
		return err
	}
	return nil
}

// maybeCompleteCourse completes the owning course's enrollment once every
// visible, published lesson of the course is completed by the user.
func (m *LessonManager) maybeCompleteCourse(ctx context.Context, userHash, lessonHash string) error {
	courseHash, err := m.memberships.CourseForLesson(ctx, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return dependency("resolve lesson course", err)
	}

	total, completed, err := m.memberships.CompletionCounts(ctx, userHash, courseHash)
	if err != nil {
		return dependency("count completed lessons", err)
	}
	if total == 0 || completed < total {
		return nil
	}

	current, err := m.courses.Status(ctx, userHash, courseHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if current == entities.CourseCompleted {
		return nil
	}

	_, err = m.courses.ChangeStatus(ctx, userHash, courseHash, entities.CourseCompleted)
	if err != nil && !cascadeIgnorable(err) {
		return err
	}
	return nil
}

// Status returns the current persisted lesson progress status.
func (m *LessonManager) Status(ctx context.Context, userHash, lessonHash string) (entities.LessonStatus, error) {
	record, err := m.progress.Get(ctx, userHash, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", dependency("load lesson progress", err)
	}
	return record.Status, nil
}
