package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/database/enrollments"
	"github.com/mrlokans/bamboo/internal/entities"
	"github.com/mrlokans/bamboo/internal/status"
)

// EnrollmentsStore defines database operations for enrollment management.
type EnrollmentsStore interface {
	Create(ctx context.Context, userHash, courseHash string) (*entities.Enrollment, error)
	Get(ctx context.Context, userHash, courseHash string) (*entities.Enrollment, error)
	List(ctx context.Context, filter enrollments.ListFilter) ([]entities.Enrollment, int64, error)
	SetRating(ctx context.Context, userHash, courseHash string, rating float64) (*entities.Enrollment, error)
	Delete(ctx context.Context, userHash, courseHash string) error
}

// CourseMachine is the slice of the course state machine the controller
// drives.
type CourseMachine interface {
	ChangeStatus(ctx context.Context, userHash, courseHash string, target entities.CourseStatus, opts ...status.ChangeOption) (*entities.Enrollment, error)
	SeedLessonProgress(ctx context.Context, userHash, courseHash string, allLessons bool) error
}

type EnrollmentsController struct {
	store   EnrollmentsStore
	machine CourseMachine
}

func NewEnrollmentsController(store EnrollmentsStore, machine CourseMachine) *EnrollmentsController {
	return &EnrollmentsController{store: store, machine: machine}
}

type enrollRequest struct {
	CourseHash string `json:"course_hash" binding:"required"`
	AllLessons bool   `json:"all_lessons"`
}

// Enroll creates an enrollment and seeds the initial lesson-progress rows.
// POST /api/v1/user-courses
func (ec *EnrollmentsController) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "course_hash is required")
		return
	}
	userHash := auth.GetUserHash(c)
	ctx := c.Request.Context()

	if existing, err := ec.store.Get(ctx, userHash, req.CourseHash); err == nil && existing != nil {
		respondConflict(c, "already enrolled in this course")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "check enrollment")
		return
	}

	enrollment, err := ec.store.Create(ctx, userHash, req.CourseHash)
	if err != nil {
		respondInternalError(c, err, "create enrollment")
		return
	}

	// Same side effect as the ENROLLED transition: seed progress rows for
	// the first visible lesson (or all of them on request).
	if err := ec.machine.SeedLessonProgress(ctx, userHash, req.CourseHash, req.AllLessons); err != nil {
		respondStatusError(c, err, "seed lesson progress")
		return
	}

	respondCreated(c, enrollment)
}

// List returns the caller's enrollments; staff may list any user's.
// GET /api/v1/user-courses
func (ec *EnrollmentsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	userHash := auth.GetUserHash(c)
	if requested := c.Query("user_hash"); requested != "" {
		user := auth.GetUser(c)
		if user == nil || !user.IsStaff() {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
			return
		}
		userHash = requested
	}

	records, total, err := ec.store.List(c.Request.Context(), enrollments.ListFilter{
		UserHash:   userHash,
		CourseHash: c.Query("course_hash"),
		Status:     entities.CourseStatus(c.Query("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "list enrollments")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns the caller's enrollment for one course.
// GET /api/v1/user-courses/:course
func (ec *EnrollmentsController) Get(c *gin.Context) {
	courseHash, ok := requireParam(c, "course")
	if !ok {
		return
	}

	enrollment, err := ec.store.Get(c.Request.Context(), auth.GetUserHash(c), courseHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "enrollment")
			return
		}
		respondInternalError(c, err, "get enrollment")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus runs a course status transition for the caller.
// PUT /api/v1/user-courses/:course/status
func (ec *EnrollmentsController) ChangeStatus(c *gin.Context) {
	courseHash, ok := requireParam(c, "course")
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	target := entities.CourseStatus(req.Status)
	if !status.ValidCourseStatus(target) {
		respondBadRequest(c, "unknown course status: "+req.Status)
		return
	}

	enrollment, err := ec.machine.ChangeStatus(c.Request.Context(), auth.GetUserHash(c), courseHash, target)
	if err != nil {
		respondStatusError(c, err, "change enrollment status")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Complete marks the caller's enrollment completed through the machine.
// PUT /api/v1/user-courses/:course/complete
func (ec *EnrollmentsController) Complete(c *gin.Context) {
	courseHash, ok := requireParam(c, "course")
	if !ok {
		return
	}

	enrollment, err := ec.machine.ChangeStatus(c.Request.Context(), auth.GetUserHash(c), courseHash, entities.CourseCompleted)
	if err != nil {
		respondStatusError(c, err, "complete enrollment")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

type rateRequest struct {
	Rating float64 `json:"rating" binding:"required"`
}

// Rate stores a course rating between 1.0 and 5.0.
// PUT /api/v1/user-courses/:course/rate
func (ec *EnrollmentsController) Rate(c *gin.Context) {
	courseHash, ok := requireParam(c, "course")
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating is required")
		return
	}
	if req.Rating < 1.0 || req.Rating > 5.0 {
		respondBadRequest(c, "rating must be between 1.0 and 5.0")
		return
	}

	enrollment, err := ec.store.SetRating(c.Request.Context(), auth.GetUserHash(c), courseHash, req.Rating)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "enrollment")
			return
		}
		respondInternalError(c, err, "rate course")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Delete removes an enrollment record. Staff only.
// DELETE /api/v1/user-courses/:course/of/:user
func (ec *EnrollmentsController) Delete(c *gin.Context) {
	userHash, ok := requireParam(c, "user")
	if !ok {
		return
	}
	courseHash, ok := requireParam(c, "course")
	if !ok {
		return
	}

	if err := ec.store.Delete(c.Request.Context(), userHash, courseHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "enrollment")
			return
		}
		respondInternalError(c, err, "delete enrollment")
		return
	}

	respondSuccess(c, "enrollment deleted")
}
