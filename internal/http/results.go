package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/crypto"
	"github.com/mrlokans/bamboo/internal/database/results"
	"github.com/mrlokans/bamboo/internal/entities"
)

// ResultsStore defines database operations for progress snapshots.
type ResultsStore interface {
	GetByHash(ctx context.Context, hash string) (*entities.LessonResult, error)
	List(ctx context.Context, filter results.ListFilter) ([]entities.LessonResult, int64, error)
	SetShared(ctx context.Context, hash string, shared bool) error
	AddLike(ctx context.Context, hash string) error
}

type ResultsController struct {
	store ResultsStore
	codec *crypto.ShareCodec
}

func NewResultsController(store ResultsStore, codec *crypto.ShareCodec) *ResultsController {
	return &ResultsController{store: store, codec: codec}
}

// List returns the caller's result snapshots, newest first.
// GET /api/v1/results
func (rc *ResultsController) List(c *gin.Context) {
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

	records, total, err := rc.store.List(c.Request.Context(), results.ListFilter{
		UserHash:   userHash,
		LessonHash: c.Query("lesson_hash"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "list results")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns a single snapshot owned by the caller.
// GET /api/v1/results/:hash
func (rc *ResultsController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	result, err := rc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "result")
			return
		}
		respondInternalError(c, err, "get result")
		return
	}

	user := auth.GetUser(c)
	if result.UserHash != auth.GetUserHash(c) && (user == nil || !user.IsStaff()) {
		respondNotFound(c, "result")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Share marks a snapshot shared and returns a token for it.
// PUT /api/v1/results/:hash/share
func (rc *ResultsController) Share(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	result, err := rc.store.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "result")
			return
		}
		respondInternalError(c, err, "get result")
		return
	}
	if result.UserHash != auth.GetUserHash(c) {
		respondNotFound(c, "result")
		return
	}

	if err := rc.store.SetShared(ctx, hash, true); err != nil {
		respondInternalError(c, err, "share result")
		return
	}

	token, err := rc.codec.EncodeResult(hash)
	if err != nil {
		respondInternalError(c, err, "encode share token")
		return
	}

	c.JSON(http.StatusOK, shareResponse{Token: token})
}

// GetShared resolves a result share token. Unauthenticated.
// GET /api/v1/results/shared/:token
func (rc *ResultsController) GetShared(c *gin.Context) {
	token, ok := requireParam(c, "token")
	if !ok {
		return
	}

	hash, err := rc.codec.DecodeResult(token)
	if err != nil {
		respondNotFound(c, "shared result")
		return
	}

	result, err := rc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shared result")
			return
		}
		respondInternalError(c, err, "resolve shared result")
		return
	}
	if !result.IsShared {
		respondNotFound(c, "shared result")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Like increments the like counter on a shared snapshot.
// PUT /api/v1/results/:hash/like
func (rc *ResultsController) Like(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := rc.store.AddLike(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "result")
			return
		}
		respondInternalError(c, err, "like result")
		return
	}

	respondSuccess(c, "result liked")
}
