// Package status implements the coupled state machines that drive course
// enrollments and per-lesson progress. The two managers talk to each other
// through narrow interfaces so either can be tested with a fake counterpart:
// enrolling seeds lesson-progress rows, starting a lesson promotes the
// enrollment, and completing the last lesson completes the course.
package status

import "github.com/mrlokans/bamboo/internal/entities"

// courseTransitions is the allowed-transition table for enrollments.
// COMPLETED is terminal; DROPPED allows re-enrollment.
var courseTransitions = map[entities.CourseStatus][]entities.CourseStatus{
	entities.CourseEnrolled:   {entities.CourseInProgress, entities.CourseDropped},
	entities.CourseInProgress: {entities.CourseCompleted, entities.CourseDropped, entities.CoursePaused},
	entities.CoursePaused:     {entities.CourseInProgress, entities.CourseDropped},
	entities.CourseCompleted:  {},
	entities.CourseDropped:    {entities.CourseEnrolled},
}

// lessonTransitions is the allowed-transition table for lesson progress.
// The administrative display states are deliberately absent.
var lessonTransitions = map[entities.LessonStatus][]entities.LessonStatus{
	entities.LessonNotStarted: {entities.LessonInProgress},
	entities.LessonInProgress: {entities.LessonCompleted},
	entities.LessonCompleted:  {},
}

// CourseTransitionAllowed reports whether an enrollment may move from
// current to next. Pure; no persistence involved.
func CourseTransitionAllowed(current, next entities.CourseStatus) bool {
	allowed, ok := courseTransitions[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

// LessonTransitionAllowed reports whether lesson progress may move from
// current to next.
func LessonTransitionAllowed(current, next entities.LessonStatus) bool {
	allowed, ok := lessonTransitions[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

// ValidCourseStatus reports whether s is one of the five enrollment states.
func ValidCourseStatus(s entities.CourseStatus) bool {
	_, ok := courseTransitions[s]
	return ok
}

// ValidLessonStatus reports whether s is one of the machine's lesson states.
func ValidLessonStatus(s entities.LessonStatus) bool {
	_, ok := lessonTransitions[s]
	return ok
}
