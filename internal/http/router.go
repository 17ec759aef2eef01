package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bamboo/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	authMiddleware := auth.NewMiddleware(cfg.AuthService)

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	usersController := NewUsersController(cfg.Users)
	coursesController := NewCoursesController(cfg.Courses)
	lessonsController := NewLessonsController(cfg.Lessons)
	enrollmentsController := NewEnrollmentsController(cfg.Enrollments, cfg.CourseMachine)
	userLessonsController := NewUserLessonsController(cfg.UserLessons, cfg.LessonMachine, cfg.ShareCodec)
	resultsController := NewResultsController(cfg.Results, cfg.ShareCodec)
	resourcesController := NewResourcesController(cfg.Resources)
	pagesController := NewPagesController(cfg.Pages, cfg.PageOwners)
	groupsController := NewGroupsController(cfg.Groups)

	v1 := router.Group("/api/v1")

	// Public endpoints: registration, login, liveness and share-token
	// resolution. Everything else requires a bearer token.
	v1.GET("/health", health.Status)
	v1.GET("/ping", health.Ping)
	v1.POST("/auth/signup", authController.Signup)
	v1.POST("/auth/login", authController.Login)
	v1.GET("/user-lessons/shared/:token", userLessonsController.GetShared)
	v1.GET("/results/shared/:token", resultsController.GetShared)

	authed := v1.Group("")
	authed.Use(authMiddleware.Handler())
	{
		authed.GET("/auth/me", authController.Me)

		// Catalogue reads
		authed.GET("/courses", coursesController.List)
		authed.GET("/courses/:hash", coursesController.Get)
		authed.GET("/courses/:hash/lessons", coursesController.Lessons)
		authed.GET("/lessons", lessonsController.List)
		authed.GET("/lessons/types", lessonsController.Types)
		authed.GET("/lessons/:hash", lessonsController.Get)
		authed.GET("/resources", resourcesController.List)
		authed.GET("/resources/:hash", resourcesController.Get)

		// Enrollments
		authed.GET("/user-courses", enrollmentsController.List)
		authed.POST("/user-courses", enrollmentsController.Enroll)
		authed.GET("/user-courses/:course", enrollmentsController.Get)
		authed.PUT("/user-courses/:course/status", enrollmentsController.ChangeStatus)
		authed.PUT("/user-courses/:course/complete", enrollmentsController.Complete)
		authed.PUT("/user-courses/:course/rate", enrollmentsController.Rate)

		// Lesson records
		authed.GET("/user-lessons", userLessonsController.List)
		authed.POST("/user-lessons", userLessonsController.Start)
		authed.GET("/user-lessons/:lesson", userLessonsController.Get)
		authed.PUT("/user-lessons/:lesson/status", userLessonsController.ChangeStatus)
		authed.PUT("/user-lessons/:lesson/progress", userLessonsController.RecordProgress)
		authed.PUT("/user-lessons/:lesson/complete", userLessonsController.Complete)
		authed.PUT("/user-lessons/:lesson/share", userLessonsController.Share)
		authed.PUT("/user-lessons/:lesson/unshare", userLessonsController.Unshare)

		// Result snapshots
		authed.GET("/results", resultsController.List)
		authed.GET("/results/:hash", resultsController.Get)
		authed.PUT("/results/:hash/share", resultsController.Share)
		authed.PUT("/results/:hash/like", resultsController.Like)

		// Pages
		authed.GET("/pages", pagesController.List)
		authed.POST("/pages", pagesController.Create)
		authed.GET("/pages/:hash", pagesController.Get)
		authed.PUT("/pages/:hash", pagesController.Update)
		authed.DELETE("/pages/:hash", pagesController.Delete)

		// Study groups
		authed.GET("/groups", groupsController.List)
		authed.POST("/groups", groupsController.Create)
		authed.GET("/groups/:hash", groupsController.Get)
		authed.GET("/groups/:hash/members", groupsController.Members)
		authed.PUT("/groups/:hash/join", groupsController.Join)
		authed.PUT("/groups/:hash/leave", groupsController.Leave)
		authed.DELETE("/groups/:hash", groupsController.Delete)

		// Profiles
		authed.GET("/users/:hash", usersController.Get)
		authed.PUT("/users/:hash", usersController.Update)
	}

	staff := authed.Group("")
	staff.Use(auth.RequireStaff())
	{
		// Catalogue management
		staff.POST("/courses", coursesController.Create)
		staff.PUT("/courses/:hash", coursesController.Update)
		staff.DELETE("/courses/:hash", coursesController.Delete)
		staff.POST("/courses/:hash/lessons", coursesController.AddLesson)
		staff.POST("/lessons", lessonsController.Create)
		staff.PUT("/lessons/:hash", lessonsController.Update)
		staff.DELETE("/lessons/:hash", lessonsController.Delete)
		staff.POST("/resources", resourcesController.Create)
		staff.PUT("/resources/:hash", resourcesController.Update)
		staff.DELETE("/resources/:hash", resourcesController.Delete)

		// User administration
		staff.GET("/users", usersController.List)
		staff.DELETE("/users/:hash", usersController.Delete)
		staff.DELETE("/user-courses/:course/of/:user", enrollmentsController.Delete)
		staff.PUT("/user-lessons/:lesson/of/:user/display-status", userLessonsController.SetDisplayStatus)
		staff.DELETE("/user-lessons/:lesson/of/:user", userLessonsController.Delete)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		staff.GET("/tasks/types", tasksController.ListTaskTypes)
		staff.GET("/tasks/:id", tasksController.GetTaskStatus)
		staff.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
