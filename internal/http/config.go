package http

import (
	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/crypto"
	"github.com/mrlokans/bamboo/internal/database"
	"github.com/mrlokans/bamboo/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	AuthService *auth.Service
	ShareCodec  *crypto.ShareCodec

	// Stores backing the controllers
	Users       UsersStore
	PageOwners  PageOwnerResolver
	Courses     CoursesStore
	Lessons     LessonsStore
	Enrollments EnrollmentsStore
	UserLessons UserLessonsStore
	Results     ResultsStore
	Resources   ResourcesStore
	Pages       PagesStore
	Groups      GroupsStore

	// Status machines
	CourseMachine CourseMachine
	LessonMachine LessonMachine

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
