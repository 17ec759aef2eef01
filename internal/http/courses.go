package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/database/courses"
	"github.com/mrlokans/bamboo/internal/entities"
)

// CoursesStore defines database operations for the course catalogue.
type CoursesStore interface {
	Create(ctx context.Context, course *entities.Course) error
	GetByHash(ctx context.Context, hash string) (*entities.Course, error)
	List(ctx context.Context, filter courses.ListFilter) ([]entities.Course, int64, error)
	Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Course, error)
	Delete(ctx context.Context, hash string) error
	AddLesson(ctx context.Context, courseHash, lessonHash string, orderIndex int, visible bool) error
	LessonsOfCourse(ctx context.Context, courseHash string) ([]entities.Lesson, error)
}

type CoursesController struct {
	store CoursesStore
}

func NewCoursesController(store CoursesStore) *CoursesController {
	return &CoursesController{store: store}
}

type createCourseRequest struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description"`
	Language           string  `json:"language" binding:"required"`
	Difficulty         string  `json:"difficulty"`
	DurationHours      float64 `json:"duration_hours"`
	Prerequisites      string  `json:"prerequisites"`
	LearningObjectives string  `json:"learning_objectives"`
	Thumbnail          string  `json:"thumbnail"`
}

// Create adds a course to the catalogue. Staff only.
// POST /api/v1/courses
func (cc *CoursesController) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and language are required")
		return
	}

	course := &entities.Course{
		Hash:               uuid.NewString(),
		Title:              req.Title,
		Description:        req.Description,
		Language:           req.Language,
		Difficulty:         req.Difficulty,
		DurationHours:      req.DurationHours,
		Prerequisites:      req.Prerequisites,
		LearningObjectives: req.LearningObjectives,
		Thumbnail:          req.Thumbnail,
		IsActive:           true,
	}
	if err := cc.store.Create(c.Request.Context(), course); err != nil {
		respondInternalError(c, err, "create course")
		return
	}

	respondCreated(c, course)
}

// List returns catalogue courses with optional language, difficulty and
// title search filters.
// GET /api/v1/courses
func (cc *CoursesController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	records, total, err := cc.store.List(c.Request.Context(), courses.ListFilter{
		Language:   c.Query("language"),
		Difficulty: c.Query("difficulty"),
		ActiveOnly: c.Query("include_inactive") != "true",
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "list courses")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns a single course.
// GET /api/v1/courses/:hash
func (cc *CoursesController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	course, err := cc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "course")
			return
		}
		respondInternalError(c, err, "get course")
		return
	}

	c.JSON(http.StatusOK, course)
}

// Update patches course fields. Staff only.
// PUT /api/v1/courses/:hash
func (cc *CoursesController) Update(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}
	// The hash is the public identity; it never changes.
	delete(updates, "hash")
	delete(updates, "id")

	course, err := cc.store.Update(c.Request.Context(), hash, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "course")
			return
		}
		respondInternalError(c, err, "update course")
		return
	}

	c.JSON(http.StatusOK, course)
}

// Delete soft-deletes a course. Staff only.
// DELETE /api/v1/courses/:hash
func (cc *CoursesController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := cc.store.Delete(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "course")
			return
		}
		respondInternalError(c, err, "delete course")
		return
	}

	respondSuccess(c, "course deleted")
}

// Lessons returns the visible lessons of a course in order.
// GET /api/v1/courses/:hash/lessons
func (cc *CoursesController) Lessons(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	lessons, err := cc.store.LessonsOfCourse(c.Request.Context(), hash)
	if err != nil {
		respondInternalError(c, err, "list course lessons")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: lessons})
}

type addLessonRequest struct {
	LessonHash string `json:"lesson_hash" binding:"required"`
	OrderIndex int    `json:"order_index"`
	IsVisible  *bool  `json:"is_visible"`
}

// AddLesson attaches a lesson to a course. Staff only.
// POST /api/v1/courses/:hash/lessons
func (cc *CoursesController) AddLesson(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	var req addLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "lesson_hash is required")
		return
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	if err := cc.store.AddLesson(c.Request.Context(), hash, req.LessonHash, req.OrderIndex, visible); err != nil {
		respondInternalError(c, err, "attach lesson")
		return
	}

	respondSuccess(c, "lesson attached")
}
