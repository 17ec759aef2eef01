package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/database/pages"
	"github.com/mrlokans/bamboo/internal/entities"
)

// PagesStore defines database operations for user-authored pages.
type PagesStore interface {
	Create(ctx context.Context, page *entities.Page) error
	GetByHash(ctx context.Context, hash string) (*entities.Page, error)
	UpdateBody(ctx context.Context, hash, body, title, version string) (*entities.Page, error)
	List(ctx context.Context, filter pages.ListFilter) ([]entities.Page, int64, error)
	Delete(ctx context.Context, hash string) error
}

// PageOwnerResolver looks up the caller so pages can be keyed by the
// account's mobile phone.
type PageOwnerResolver interface {
	GetByHash(ctx context.Context, hash string) (*entities.User, error)
}

type PagesController struct {
	store PagesStore
	users PageOwnerResolver
}

func NewPagesController(store PagesStore, users PageOwnerResolver) *PagesController {
	return &PagesController{store: store, users: users}
}

func (pc *PagesController) callerPhone(c *gin.Context) (string, bool) {
	user, err := pc.users.GetByHash(c.Request.Context(), auth.GetUserHash(c))
	if err != nil {
		respondInternalError(c, err, "resolve caller")
		return "", false
	}
	return user.MobilePhone, true
}

type createPageRequest struct {
	CourseID    string `json:"course_id"`
	Page        string `json:"page" binding:"required"`
	PageTitle   string `json:"page_title" binding:"required"`
	PageType    string `json:"page_type"`
	PageVersion string `json:"page_version"`
}

// Create stores a new page for the caller.
// POST /api/v1/pages
func (pc *PagesController) Create(c *gin.Context) {
	var req createPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page and page_title are required")
		return
	}
	phone, ok := pc.callerPhone(c)
	if !ok {
		return
	}

	page := &entities.Page{
		Hash:            uuid.NewString(),
		UserMobilePhone: phone,
		CourseID:        req.CourseID,
		Page:            req.Page,
		PageTitle:       req.PageTitle,
		PageType:        req.PageType,
		PageVersion:     req.PageVersion,
	}
	if err := pc.store.Create(c.Request.Context(), page); err != nil {
		respondInternalError(c, err, "create page")
		return
	}

	respondCreated(c, page)
}

// List returns the caller's pages with optional course and type filters.
// GET /api/v1/pages
func (pc *PagesController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	phone, ok := pc.callerPhone(c)
	if !ok {
		return
	}

	records, total, err := pc.store.List(c.Request.Context(), pages.ListFilter{
		UserMobilePhone: phone,
		CourseID:        c.Query("course_id"),
		PageType:        c.Query("page_type"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		respondInternalError(c, err, "list pages")
		return
	}

	c.JSON(http.StatusOK, paginated(records, total, limit, offset))
}

// Get returns a single page owned by the caller.
// GET /api/v1/pages/:hash
func (pc *PagesController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	phone, ok := pc.callerPhone(c)
	if !ok {
		return
	}

	page, err := pc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "page")
			return
		}
		respondInternalError(c, err, "get page")
		return
	}
	if page.UserMobilePhone != phone {
		respondNotFound(c, "page")
		return
	}

	c.JSON(http.StatusOK, page)
}

type updatePageRequest struct {
	Page        string `json:"page" binding:"required"`
	PageTitle   string `json:"page_title"`
	PageVersion string `json:"page_version"`
}

// Update replaces the page body, archiving the previous revision into the
// page history.
// PUT /api/v1/pages/:hash
func (pc *PagesController) Update(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	var req updatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page is required")
		return
	}
	phone, ok := pc.callerPhone(c)
	if !ok {
		return
	}

	existing, err := pc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "page")
			return
		}
		respondInternalError(c, err, "get page")
		return
	}
	if existing.UserMobilePhone != phone {
		respondNotFound(c, "page")
		return
	}

	page, err := pc.store.UpdateBody(c.Request.Context(), hash, req.Page, req.PageTitle, req.PageVersion)
	if err != nil {
		respondInternalError(c, err, "update page")
		return
	}

	c.JSON(http.StatusOK, page)
}

// Delete removes a page owned by the caller.
// DELETE /api/v1/pages/:hash
func (pc *PagesController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	phone, ok := pc.callerPhone(c)
	if !ok {
		return
	}

	existing, err := pc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "page")
			return
		}
		respondInternalError(c, err, "get page")
		return
	}
	if existing.UserMobilePhone != phone {
		respondNotFound(c, "page")
		return
	}

	if err := pc.store.Delete(c.Request.Context(), hash); err != nil {
		respondInternalError(c, err, "delete page")
		return
	}

	respondSuccess(c, "page deleted")
}
