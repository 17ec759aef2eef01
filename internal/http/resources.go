package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/database/resources"
	"github.com/mrlokans/bamboo/internal/entities"
)

// ResourcesStore defines database operations for learning resources.
type ResourcesStore interface {
	Create(ctx context.Context, resource *entities.Resource) error
	GetByHash(ctx context.Context, hash string) (*entities.Resource, error)
	List(ctx context.Context, filter resources.ListFilter) ([]entities.Resource, int64, error)
	Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.Resource, error)
	Delete(ctx context.Context, hash string) error
}

type ResourcesController struct {
	store ResourcesStore
}

func NewResourcesController(store ResourcesStore) *ResourcesController {
	return &ResourcesController{store: store}
}

type createResourceRequest struct {
	Title       string `json:"title" binding:"required"`
	Type        string `json:"type" binding:"required"`
	URL         string `json:"url"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// Create registers a resource. Staff only.
// POST /api/v1/resources
func (rc *ResourcesController) Create(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and type are required")
		return
	}

	resource := &entities.Resource{
		Hash:        uuid.NewString(),
		Title:       req.Title,
		Type:        req.Type,
		URL:         req.URL,
		FilePath:    req.FilePath,
		Description: req.Description,
		Language:    req.Language,
		IsActive:    true,
	}
	if err := rc.store.Create(c.Request.Context(), resource); err != nil {
		respondInternalError(c, err, "create resource")
		return
	}

	respondCreated(c, resource)
}

// List returns resources with optional type, language and title search
// filters.
// GET /api/v1/resources
func (rc *ResourcesController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	records, total, err := rc.store.List(c.Request.Context(), resources.ListFilter{
		Type:       c.Query("type"),
		Language:   c.Query("language"),
		ActiveOnly: c.Query("include_inactive") != "true",
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "list resources")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns a single resource.
// GET /api/v1/resources/:hash
func (rc *ResourcesController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	resource, err := rc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "resource")
			return
		}
		respondInternalError(c, err, "get resource")
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Update patches resource fields. Staff only.
// PUT /api/v1/resources/:hash
func (rc *ResourcesController) Update(c *gin.Context) {
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

	resource, err := rc.store.Update(c.Request.Context(), hash, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "resource")
			return
		}
		respondInternalError(c, err, "update resource")
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Delete soft-deletes a resource. Staff only.
// DELETE /api/v1/resources/:hash
func (rc *ResourcesController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := rc.store.Delete(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "resource")
			return
		}
		respondInternalError(c, err, "delete resource")
		return
	}

	respondSuccess(c, "resource deleted")
}
