package entities

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ValidRole reports whether r is one of the known user roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Hash           string         `gorm:"uniqueIndex;size:64" json:"hash"`
	MobilePhone    string         `gorm:"uniqueIndex;size:20" json:"mobile_phone"`
	Email          string         `gorm:"index;size:255" json:"email,omitempty"`
	FullName       string         `gorm:"size:255" json:"full_name,omitempty"`
	HashedPassword string         `gorm:"size:255" json:"-"`
	Role           Role           `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user may act on other users' records.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeacher
}

type UserGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Hash        string    `gorm:"uniqueIndex;size:64" json:"hash"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	OwnerHash   string    `gorm:"index;size:64" json:"owner_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []UserGroupMember `gorm:"foreignKey:GroupHash;references:Hash" json:"members,omitempty"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}

type UserGroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupHash string    `gorm:"uniqueIndex:idx_group_member;size:64" json:"group_hash"`
	UserHash  string    `gorm:"uniqueIndex:idx_group_member;size:64" json:"user_hash"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (UserGroupMember) TableName() string {
	return "user_group_members"
}

// UserShare records a publicly shared recording or lesson artifact.
type UserShare struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Hash                 string    `gorm:"uniqueIndex;size:64" json:"hash"`
	Path                 string    `gorm:"size:1024" json:"path"`
	CourseID             string    `gorm:"index;size:64" json:"course_id"`
	Lesson               string    `gorm:"size:255" json:"lesson"`
	UserName             string    `gorm:"size:255" json:"user_name"`
	Date                 string    `gorm:"size:32" json:"date"`
	HasPronunciationData bool      `gorm:"default:false" json:"has_pronunciation_data"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (UserShare) TableName() string {
	return "user_shares"
}
