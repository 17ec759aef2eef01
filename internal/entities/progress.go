package entities

import (
	"time"

	"gorm.io/datatypes"
)

// CourseStatus is the lifecycle state of a user's course enrollment.
// Values are uppercase on the wire for historical reasons.
type CourseStatus string

const (
	CourseEnrolled   CourseStatus = "ENROLLED"
	CourseInProgress CourseStatus = "IN_PROGRESS"
	CourseCompleted  CourseStatus = "COMPLETED"
	CourseDropped    CourseStatus = "DROPPED"
	CoursePaused     CourseStatus = "PAUSED"
)

// LessonStatus is the lifecycle state of a user's lesson progress.
type LessonStatus string

const (
	LessonNotStarted LessonStatus = "not_started"
	LessonInProgress LessonStatus = "in_progress"
	LessonCompleted  LessonStatus = "completed"

	// Administrative display states. Settable through the CRUD layer but
	// outside the transition machine.
	LessonLocked   LessonStatus = "locked"
	LessonArchived LessonStatus = "archived"
	LessonDeleted  LessonStatus = "deleted"
)

// ValidLessonDisplayStatus reports whether s is acceptable as a stored
// lesson-progress status, including the administrative states.
func ValidLessonDisplayStatus(s LessonStatus) bool {
	switch s {
	case LessonNotStarted, LessonInProgress, LessonCompleted,
		LessonLocked, LessonArchived, LessonDeleted:
		return true
	}
	return false
}

// Enrollment is a user's participation record in a course ("user_courses").
// Identity is the (UserHash, CourseHash) pair. ProgressPercentage is a
// cached value derived from lesson progress, never authoritative.
type Enrollment struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	UserHash           string       `gorm:"uniqueIndex:idx_user_course;size:64" json:"user_hash"`
	CourseHash         string       `gorm:"uniqueIndex:idx_user_course;size:64" json:"course_hash"`
	Status             CourseStatus `gorm:"size:20;default:'ENROLLED'" json:"status"`
	ProgressPercentage float64      `gorm:"default:0" json:"progress_percentage"`
	LastAccessedAt     *time.Time   `json:"last_accessed_at,omitempty"`
	CompletionDate     *time.Time   `json:"completion_date,omitempty"`
	UserRating         *float64     `json:"user_rating,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "user_courses"
}

func (e *Enrollment) IsCompleted() bool {
	return e.Status == CourseCompleted
}

func (e *Enrollment) IsActive() bool {
	return e.Status == CourseEnrolled || e.Status == CourseInProgress || e.Status == CoursePaused
}

// LessonProgress is a user's participation record in a single lesson
// ("user_lessons"). FromCourse is empty for standalone lessons taken
// outside any course.
type LessonProgress struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserHash     string            `gorm:"uniqueIndex:idx_user_lesson;size:64" json:"user_hash"`
	LessonHash   string            `gorm:"uniqueIndex:idx_user_lesson;size:64" json:"lesson_hash"`
	TeacherHash  string            `gorm:"index;size:64" json:"teacher_hash,omitempty"`
	Status       LessonStatus      `gorm:"size:20;default:'not_started'" json:"status"`
	Progress     float64           `gorm:"default:0" json:"progress"`
	Score        float64           `gorm:"default:0" json:"score"`
	LastAccessed *time.Time        `json:"last_accessed,omitempty"`
	LearningLog  datatypes.JSONMap `json:"learning_log,omitempty"`
	IsShared     bool              `gorm:"default:false" json:"is_shared"`
	FromCourse   string            `gorm:"index;size:64" json:"from_course,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (LessonProgress) TableName() string {
	return "user_lessons"
}

// LessonResult is one immutable progress snapshot ("user_lesson_results").
// Rows are only ever appended; the mutable summary lives in
// LessonProgress.LearningLog.
type LessonResult struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Hash        string            `gorm:"uniqueIndex;size:64" json:"hash"`
	UserHash    string            `gorm:"index:idx_result_user_lesson;size:64" json:"user_hash"`
	LessonHash  string            `gorm:"index:idx_result_user_lesson;size:64" json:"lesson_hash"`
	LearningLog datatypes.JSONMap `json:"learning_log"`
	Score       float64           `gorm:"default:0" json:"score"`
	IsShared    bool              `gorm:"default:false" json:"is_shared"`
	Likes       int               `gorm:"default:0" json:"likes"`
	Comments    int               `gorm:"default:0" json:"comments"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (LessonResult) TableName() string {
	return "user_lesson_results"
}
