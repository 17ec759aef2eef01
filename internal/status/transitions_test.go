package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bamboo/internal/entities"
)

func TestCourseTransitionAllowed(t *testing.T) {
	allCourse := []entities.CourseStatus{
		entities.CourseEnrolled,
		entities.CourseInProgress,
		entities.CourseCompleted,
		entities.CourseDropped,
		entities.CoursePaused,
	}

	allowed := map[entities.CourseStatus][]entities.CourseStatus{
		entities.CourseEnrolled:   {entities.CourseInProgress, entities.CourseDropped},
		entities.CourseInProgress: {entities.CourseCompleted, entities.CourseDropped, entities.CoursePaused},
		entities.CoursePaused:     {entities.CourseInProgress, entities.CourseDropped},
		entities.CourseDropped:    {entities.CourseEnrolled},
		entities.CourseCompleted:  {},
	}

	for _, from := range allCourse {
		for _, to := range allCourse {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			got := CourseTransitionAllowed(from, to)
			assert.Equalf(t, want, got, "%s -> %s", from, to)
		}
	}

	t.Run("completed is terminal", func(t *testing.T) {
		for _, to := range allCourse {
			assert.False(t, CourseTransitionAllowed(entities.CourseCompleted, to))
		}
	})

	t.Run("unknown status never transitions", func(t *testing.T) {
		assert.False(t, CourseTransitionAllowed("BOGUS", entities.CourseEnrolled))
	})
}

func TestLessonTransitionAllowed(t *testing.T) {
	assert.True(t, LessonTransitionAllowed(entities.LessonNotStarted, entities.LessonInProgress))
	assert.True(t, LessonTransitionAllowed(entities.LessonInProgress, entities.LessonCompleted))

	assert.False(t, LessonTransitionAllowed(entities.LessonNotStarted, entities.LessonCompleted))
	assert.False(t, LessonTransitionAllowed(entities.LessonCompleted, entities.LessonInProgress))
	assert.False(t, LessonTransitionAllowed(entities.LessonCompleted, entities.LessonNotStarted))
	assert.False(t, LessonTransitionAllowed(entities.LessonInProgress, entities.LessonNotStarted))

	t.Run("administrative states outside the machine", func(t *testing.T) {
		assert.False(t, LessonTransitionAllowed(entities.LessonLocked, entities.LessonInProgress))
		assert.False(t, LessonTransitionAllowed(entities.LessonInProgress, entities.LessonArchived))
	})
}

func TestValidStatuses(t *testing.T) {
	assert.True(t, ValidCourseStatus(entities.CoursePaused))
	assert.False(t, ValidCourseStatus("paused"))

	assert.True(t, ValidLessonStatus(entities.LessonNotStarted))
	assert.False(t, ValidLessonStatus(entities.LessonArchived))
	assert.True(t, entities.ValidLessonDisplayStatus(entities.LessonArchived))
}
