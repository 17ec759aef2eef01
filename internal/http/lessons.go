package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/database/lessons"
	"github.com/mrlokans/bamboo/internal/entities"
)

// LessonsStore defines database operations for the lesson catalogue.
type LessonsStore interface {
	Create(ctx context.Context, lesson *entities.Lesson) error
	GetByHash(ctx context.Context, hash string) (*entities.Lesson, error)
	List(ctx context.Context, filter lessons.ListFilter) ([]entities.Lesson, int64, error)
	Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Lesson, error)
	Delete(ctx context.Context, hash string) error
	ListTypes(ctx context.Context) ([]entities.LessonType, error)
}

type LessonsController struct {
	store LessonsStore
}

func NewLessonsController(store LessonsStore) *LessonsController {
	return &LessonsController{store: store}
}

type createLessonRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	LessonType      string `json:"lesson_type"`
	LessonContent   string `json:"lesson_content"`
	Target          string `json:"target"`
	FromCourse      string `json:"from_course"`
	IsPreview       bool   `json:"is_preview"`
	IsPublished     bool   `json:"is_published"`
}

// Create adds a lesson to the catalogue. Staff only.
// POST /api/v1/lessons
func (lc *LessonsController) Create(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	lesson := &entities.Lesson{
		Hash:            uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		LessonType:      req.LessonType,
		LessonContent:   req.LessonContent,
		Target:          req.Target,
		FromCourse:      req.FromCourse,
		IsActive:        true,
		IsPreview:       req.IsPreview,
		IsPublished:     req.IsPublished,
	}
	if err := lc.store.Create(c.Request.Context(), lesson); err != nil {
		respondInternalError(c, err, "create lesson")
		return
	}

	respondCreated(c, lesson)
}

// List returns catalogue lessons with optional type, course and title
// search filters.
// GET /api/v1/lessons
func (lc *LessonsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	records, total, err := lc.store.List(c.Request.Context(), lessons.ListFilter{
		LessonType:    c.Query("lesson_type"),
		FromCourse:    c.Query("from_course"),
		PublishedOnly: c.Query("include_unpublished") != "true",
		Search:        c.Query("search"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondInternalError(c, err, "list lessons")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns a single lesson.
// GET /api/v1/lessons/:hash
func (lc *LessonsController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	lesson, err := lc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson")
			return
		}
		respondInternalError(c, err, "get lesson")
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// Update patches lesson fields. Staff only.
// PUT /api/v1/lessons/:hash
func (lc *LessonsController) Update(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}
	delete(updates, "hash")
	delete(updates, "id")

	lesson, err := lc.store.Update(c.Request.Context(), hash, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson")
			return
		}
		respondInternalError(c, err, "update lesson")
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// Delete soft-deletes a lesson. Staff only.
// DELETE /api/v1/lessons/:hash
func (lc *LessonsController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := lc.store.Delete(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson")
			return
		}
		respondInternalError(c, err, "delete lesson")
		return
	}

	respondSuccess(c, "lesson deleted")
}

// Types returns the active lesson types.
// GET /api/v1/lessons/types
func (lc *LessonsController) Types(c *gin.Context) {
	types, err := lc.store.ListTypes(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list lesson types")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: types})
}
