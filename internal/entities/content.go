package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Resource struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Hash        string         `gorm:"uniqueIndex;size:64" json:"hash"`
	Title       string         `gorm:"index;size:512" json:"title"`
	Type        string         `gorm:"index;size:64" json:"type"`
	URL         string         `gorm:"size:2048" json:"url,omitempty"`
	FilePath    string         `gorm:"size:1024" json:"file_path,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Language    string         `gorm:"index;size:32" json:"language,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}

// Page is a user-authored generated page, with its edit history kept as an
// append-only JSON array alongside the current body.
type Page struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Hash            string         `gorm:"uniqueIndex;size:64" json:"hash"`
	UserMobilePhone string         `gorm:"index;size:20" json:"user_mobile_phone"`
	CourseID        string         `gorm:"index;size:64" json:"course_id"`
	Page            string         `gorm:"type:text" json:"page"`
	PageTitle       string         `gorm:"size:512" json:"page_title"`
	PageType        string         `gorm:"size:64" json:"page_type"`
	PageVersion     string         `gorm:"size:32" json:"page_version"`
	PageHistory     datatypes.JSON `json:"page_history,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Page) TableName() string {
	return "user_pages"
}
