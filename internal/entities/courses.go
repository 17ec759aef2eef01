package entities

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Hash               string         `gorm:"uniqueIndex;size:64" json:"hash"`
	Title              string         `gorm:"index;size:512" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Language           string         `gorm:"index;size:32" json:"language"`
	FolderName         string         `gorm:"size:255" json:"folder_name"`
	Difficulty         string         `gorm:"size:32" json:"difficulty"`
	DurationHours      float64        `json:"duration_hours"`
	Prerequisites      string         `gorm:"type:text" json:"prerequisites,omitempty"`
	LearningObjectives string         `gorm:"type:text" json:"learning_objectives"`
	Status             string         `gorm:"size:32" json:"status,omitempty"`
	Thumbnail          string         `gorm:"size:1024" json:"thumbnail,omitempty"`
	IsActive           bool           `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Lessons []CourseLesson `gorm:"foreignKey:CourseHash;references:Hash" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Lesson struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Hash            string         `gorm:"uniqueIndex;size:64" json:"hash"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	LessonType      string         `gorm:"index;size:64" json:"lesson_type,omitempty"`
	LessonContent   string         `gorm:"type:text" json:"lesson_content,omitempty"`
	Target          string         `gorm:"type:text" json:"target,omitempty"`
	FilePath        string         `gorm:"size:1024" json:"file_path,omitempty"`
	ThumbnailPath   string         `gorm:"size:1024" json:"thumbnail_path,omitempty"`
	CreatedBy       string         `gorm:"size:255" json:"created_by,omitempty"`
	FromCourse      string         `gorm:"index;size:64" json:"from_course,omitempty"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	IsPreview       bool           `gorm:"default:false" json:"is_preview"`
	IsPublished     bool           `gorm:"default:false" json:"is_published"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// CourseLesson is the ordered membership of a lesson in a course.
// The status machines only ever read this relation.
type CourseLesson struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CourseHash string    `gorm:"uniqueIndex:idx_course_lesson;size:64" json:"course_hash"`
	LessonHash string    `gorm:"uniqueIndex:idx_course_lesson;size:64" json:"lesson_hash"`
	OrderIndex int       `gorm:"default:0" json:"order_index"`
	IsVisible  bool      `gorm:"default:true" json:"is_visible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CourseLesson) TableName() string {
	return "course_lessons"
}

type LessonType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:64" json:"name"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LessonType) TableName() string {
	return "lesson_types"
}
