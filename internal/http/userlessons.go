package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/crypto"
	"github.com/mrlokans/bamboo/internal/database/userlessons"
	"github.com/mrlokans/bamboo/internal/entities"
	"github.com/mrlokans/bamboo/internal/status"
)

// UserLessonsStore defines database operations for per-user lesson records.
type UserLessonsStore interface {
	Get(ctx context.Context, userHash, lessonHash string) (*entities.LessonProgress, error)
	Create(ctx context.Context, record *entities.LessonProgress) error
	List(ctx context.Context, filter userlessons.ListFilter) ([]entities.LessonProgress, int64, error)
	SetShared(ctx context.Context, userHash, lessonHash string, shared bool) error
	SetDisplayStatus(ctx context.Context, userHash, lessonHash string, status entities.LessonStatus) (*entities.LessonProgress, error)
	Delete(ctx context.Context, userHash, lessonHash string) error
}

// LessonMachine is the slice of the lesson state machine the controller
// drives.
type LessonMachine interface {
	ChangeStatus(ctx context.Context, userHash, lessonHash string, target entities.LessonStatus) (*entities.LessonProgress, error)
	RecordProgress(ctx context.Context, userHash, lessonHash string, progress float64, fragment map[string]interface{}) (*entities.LessonProgress, error)
}

type UserLessonsController struct {
	store   UserLessonsStore
	machine LessonMachine
	codec   *crypto.ShareCodec
}

func NewUserLessonsController(store UserLessonsStore, machine LessonMachine, codec *crypto.ShareCodec) *UserLessonsController {
	return &UserLessonsController{store: store, machine: machine, codec: codec}
}

type startLessonRequest struct {
	LessonHash  string `json:"lesson_hash" binding:"required"`
	TeacherHash string `json:"teacher_hash"`
}

// Start creates a not_started progress record for a standalone lesson.
// Course lessons get their rows seeded on enrollment instead.
// POST /api/v1/user-lessons
func (uc *UserLessonsController) Start(c *gin.Context) {
	var req startLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "lesson_hash is required")
		return
	}
	userHash := auth.GetUserHash(c)
	ctx := c.Request.Context()

	if existing, err := uc.store.Get(ctx, userHash, req.LessonHash); err == nil && existing != nil {
		respondConflict(c, "lesson already started")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "check lesson record")
		return
	}

	now := time.Now()
	record := &entities.LessonProgress{
		UserHash:     userHash,
		LessonHash:   req.LessonHash,
		TeacherHash:  req.TeacherHash,
		Status:       entities.LessonNotStarted,
		LastAccessed: &now,
		LearningLog:  datatypes.JSONMap{},
	}
	if err := uc.store.Create(ctx, record); err != nil {
		respondInternalError(c, err, "create lesson record")
		return
	}

	respondCreated(c, record)
}

// List returns the caller's lesson records; staff may list any user's.
// GET /api/v1/user-lessons
func (uc *UserLessonsController) List(c *gin.Context) {
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

	records, total, err := uc.store.List(c.Request.Context(), userlessons.ListFilter{
		UserHash:    userHash,
		TeacherHash: c.Query("teacher_hash"),
		LessonHash:  c.Query("lesson_hash"),
		FromCourse:  c.Query("from_course"),
		Status:      entities.LessonStatus(c.Query("status")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondInternalError(c, err, "list lesson records")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns the caller's record for one lesson.
// GET /api/v1/user-lessons/:lesson
func (uc *UserLessonsController) Get(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}

	record, err := uc.store.Get(c.Request.Context(), auth.GetUserHash(c), lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson record")
			return
		}
		respondInternalError(c, err, "get lesson record")
		return
	}

	c.JSON(http.StatusOK, record)
}

// ChangeStatus runs a lesson status transition for the caller.
// PUT /api/v1/user-lessons/:lesson/status
func (uc *UserLessonsController) ChangeStatus(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	target := entities.LessonStatus(req.Status)
	if !status.ValidLessonStatus(target) {
		respondBadRequest(c, "unknown lesson status: "+req.Status)
		return
	}

	record, err := uc.machine.ChangeStatus(c.Request.Context(), auth.GetUserHash(c), lessonHash, target)
	if err != nil {
		respondStatusError(c, err, "change lesson status")
		return
	}

	c.JSON(http.StatusOK, record)
}

type setDisplayStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetDisplayStatus moves a lesson record into an administrative display
// state (locked, archived, deleted) without running the state machine.
// Staff only.
// PUT /api/v1/user-lessons/:lesson/of/:user/display-status
func (uc *UserLessonsController) SetDisplayStatus(c *gin.Context) {
	userHash, ok := requireParam(c, "user")
	if !ok {
		return
	}
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}
	var req setDisplayStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	target := entities.LessonStatus(req.Status)
	if !entities.ValidLessonDisplayStatus(target) {
		respondBadRequest(c, "unknown lesson status: "+req.Status)
		return
	}

	record, err := uc.store.SetDisplayStatus(c.Request.Context(), userHash, lessonHash, target)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson record")
			return
		}
		respondInternalError(c, err, "set display status")
		return
	}

	c.JSON(http.StatusOK, record)
}

type recordProgressRequest struct {
	Progress float64                `json:"progress"`
	Fragment map[string]interface{} `json:"fragment"`
}

// RecordProgress stores a progress report, appends a result snapshot and
// updates the lesson status accordingly.
// PUT /api/v1/user-lessons/:lesson/progress
func (uc *UserLessonsController) RecordProgress(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}
	var req recordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid progress payload")
		return
	}

	record, err := uc.machine.RecordProgress(c.Request.Context(), auth.GetUserHash(c), lessonHash, req.Progress, req.Fragment)
	if err != nil {
		respondStatusError(c, err, "record progress")
		return
	}

	c.JSON(http.StatusOK, record)
}

// Complete marks a lesson completed through the machine.
// PUT /api/v1/user-lessons/:lesson/complete
func (uc *UserLessonsController) Complete(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}

	record, err := uc.machine.ChangeStatus(c.Request.Context(), auth.GetUserHash(c), lessonHash, entities.LessonCompleted)
	if err != nil {
		respondStatusError(c, err, "complete lesson")
		return
	}

	c.JSON(http.StatusOK, record)
}

type shareResponse struct {
	Token string `json:"token"`
}

// Share marks the record shared and returns an opaque share token.
// PUT /api/v1/user-lessons/:lesson/share
func (uc *UserLessonsController) Share(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}
	userHash := auth.GetUserHash(c)
	ctx := c.Request.Context()

	if err := uc.store.SetShared(ctx, userHash, lessonHash, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson record")
			return
		}
		respondInternalError(c, err, "share lesson record")
		return
	}

	token, err := uc.codec.EncodeLesson(userHash, lessonHash)
	if err != nil {
		respondInternalError(c, err, "encode share token")
		return
	}

	c.JSON(http.StatusOK, shareResponse{Token: token})
}

// Unshare revokes sharing for a lesson record. Previously issued tokens
// stop resolving.
// PUT /api/v1/user-lessons/:lesson/unshare
func (uc *UserLessonsController) Unshare(c *gin.Context) {
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}

	if err := uc.store.SetShared(c.Request.Context(), auth.GetUserHash(c), lessonHash, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson record")
			return
		}
		respondInternalError(c, err, "unshare lesson record")
		return
	}

	respondSuccess(c, "lesson record unshared")
}

// GetShared resolves a share token to its lesson record. Unauthenticated:
// the token itself is the capability.
// GET /api/v1/user-lessons/shared/:token
func (uc *UserLessonsController) GetShared(c *gin.Context) {
	token, ok := requireParam(c, "token")
	if !ok {
		return
	}

	userHash, lessonHash, err := uc.codec.DecodeLesson(token)
	if err != nil {
		respondNotFound(c, "shared lesson")
		return
	}

	record, err := uc.store.Get(c.Request.Context(), userHash, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shared lesson")
			return
		}
		respondInternalError(c, err, "resolve shared lesson")
		return
	}
	if !record.IsShared {
		respondNotFound(c, "shared lesson")
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete removes a lesson record. Staff only.
// DELETE /api/v1/user-lessons/:lesson/of/:user
func (uc *UserLessonsController) Delete(c *gin.Context) {
	userHash, ok := requireParam(c, "user")
	if !ok {
		return
	}
	lessonHash, ok := requireParam(c, "lesson")
	if !ok {
		return
	}

	if err := uc.store.Delete(c.Request.Context(), userHash, lessonHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "lesson record")
			return
		}
		respondInternalError(c, err, "delete lesson record")
		return
	}

	respondSuccess(c, "lesson record deleted")
}
