package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bamboo/internal/entities"
)

func TestCourseManager_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("applies allowed transition and bumps updated_at", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.add("user-1", "course-1", entities.CourseEnrolled)
		before := m.enrollments.records["user-1|course-1"].UpdatedAt

		time.Sleep(time.Millisecond)
		updated, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseInProgress)
		require.NoError(t, err)
		assert.Equal(t, entities.CourseInProgress, updated.Status)
		assert.True(t, updated.UpdatedAt.After(before))
	})

	t.Run("rejects disallowed transition and leaves state unchanged", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.add("user-1", "course-1", entities.CourseEnrolled)

		_, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseCompleted)
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, string(entities.CourseEnrolled), invalid.Current)
		assert.Equal(t, string(entities.CourseCompleted), invalid.Requested)
		assert.Equal(t, entities.CourseEnrolled, m.enrollments.records["user-1|course-1"].Status)
	})

	t.Run("missing enrollment surfaces not found", func(t *testing.T) {
		m := newTestMachines()
		_, err := m.courses.ChangeStatus(ctx, "user-1", "ghost", entities.CourseInProgress)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("completing stamps completion date and full progress", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.add("user-1", "course-1", entities.CourseInProgress)

		updated, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseCompleted)
		require.NoError(t, err)
		require.NotNil(t, updated.CompletionDate)
		assert.Equal(t, 100.0, updated.ProgressPercentage)
		assert.True(t, updated.IsCompleted())
	})

	t.Run("dropped may re-enroll", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.add("user-1", "course-1", entities.CourseDropped)

		updated, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseEnrolled)
		require.NoError(t, err)
		assert.Equal(t, entities.CourseEnrolled, updated.Status)
	})

	t.Run("store failure wraps as dependency error", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.failing = true

		_, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseInProgress)
		var dep *DependencyError
		assert.ErrorAs(t, err, &dep)
	})
}

func TestCourseManager_SeedLessonProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds only first visible lesson by default", func(t *testing.T) {
		m := newTestMachines()
		m.memberships.addLesson("course-1", "lesson-2", 2, true)
		m.memberships.addLesson("course-1", "lesson-1", 1, true)
		m.memberships.addLesson("course-1", "lesson-3", 3, true)

		require.NoError(t, m.courses.SeedLessonProgress(ctx, "user-1", "course-1", false))

		require.Len(t, m.progress.records, 1)
		record := m.progress.records["user-1|lesson-1"]
		require.NotNil(t, record, "lowest order index wins")
		assert.Equal(t, entities.LessonNotStarted, record.Status)
		assert.Equal(t, 0.0, record.Progress)
		assert.Equal(t, "course-1", record.FromCourse)
	})

	t.Run("seeds every visible lesson when requested", func(t *testing.T) {
		m := newTestMachines()
		m.memberships.addLesson("course-1", "lesson-1", 1, true)
		m.memberships.addLesson("course-1", "lesson-2", 2, true)

		require.NoError(t, m.courses.SeedLessonProgress(ctx, "user-1", "course-1", true))
		assert.Len(t, m.progress.records, 2)
	})

	t.Run("course without lessons is a no-op", func(t *testing.T) {
		m := newTestMachines()
		require.NoError(t, m.courses.SeedLessonProgress(ctx, "user-1", "course-1", false))
		assert.Empty(t, m.progress.records)
		assert.Zero(t, m.progress.createCalls)
	})

	t.Run("seeding twice never duplicates rows", func(t *testing.T) {
		m := newTestMachines()
		m.memberships.addLesson("course-1", "lesson-1", 1, true)
		m.progress.add("user-1", "lesson-1", entities.LessonInProgress)

		require.NoError(t, m.courses.SeedLessonProgress(ctx, "user-1", "course-1", false))

		require.Len(t, m.progress.records, 1)
		// Existing row untouched, not reset to not_started.
		assert.Equal(t, entities.LessonInProgress, m.progress.records["user-1|lesson-1"].Status)
	})

	t.Run("re-enrolling after drop reuses existing rows", func(t *testing.T) {
		m := newTestMachines()
		m.enrollments.add("user-1", "course-1", entities.CourseDropped)
		m.memberships.addLesson("course-1", "lesson-1", 1, true)
		m.progress.add("user-1", "lesson-1", entities.LessonCompleted)

		_, err := m.courses.ChangeStatus(ctx, "user-1", "course-1", entities.CourseEnrolled)
		require.NoError(t, err)
		assert.Len(t, m.progress.records, 1)
		assert.Equal(t, entities.LessonCompleted, m.progress.records["user-1|lesson-1"].Status)
	})
}
