package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/entities"
)

// GroupsStore defines database operations for study groups.
type GroupsStore interface {
	Create(ctx context.Context, group *entities.UserGroup) error
	GetByHash(ctx context.Context, hash string) (*entities.UserGroup, error)
	List(ctx context.Context, limit, offset int) ([]entities.UserGroup, int64, error)
	Join(ctx context.Context, groupHash, userHash string) error
	Leave(ctx context.Context, groupHash, userHash string) error
	Members(ctx context.Context, groupHash string) ([]entities.UserGroupMember, error)
	Delete(ctx context.Context, hash string) error
}

type GroupsController struct {
	store GroupsStore
}

func NewGroupsController(store GroupsStore) *GroupsController {
	return &GroupsController{store: store}
}

type createGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create opens a study group with the caller as owner and first member.
// POST /api/v1/groups
func (gc *GroupsController) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	group := &entities.UserGroup{
		Hash:        uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerHash:   auth.GetUserHash(c),
	}
	if err := gc.store.Create(c.Request.Context(), group); err != nil {
		respondInternalError(c, err, "create group")
		return
	}

	respondCreated(c, group)
}

// List returns study groups.
// GET /api/v1/groups
func (gc *GroupsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	groups, total, err := gc.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list groups")
		return
	}

	c.JSON(http.StatusOK, paginated(groups, total, limit, offset))
}

// Get returns a single group.
// GET /api/v1/groups/:hash
func (gc *GroupsController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	group, err := gc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "get group")
		return
	}

	c.JSON(http.StatusOK, group)
}

// Join adds the caller to a group. Joining twice is a no-op.
// PUT /api/v1/groups/:hash/join
func (gc *GroupsController) Join(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if _, err := gc.store.GetByHash(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "get group")
		return
	}

	if err := gc.store.Join(c.Request.Context(), hash, auth.GetUserHash(c)); err != nil {
		respondInternalError(c, err, "join group")
		return
	}

	respondSuccess(c, "joined group")
}

// Leave removes the caller from a group.
// PUT /api/v1/groups/:hash/leave
func (gc *GroupsController) Leave(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := gc.store.Leave(c.Request.Context(), hash, auth.GetUserHash(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "group membership")
			return
		}
		respondInternalError(c, err, "leave group")
		return
	}

	respondSuccess(c, "left group")
}

// Members lists a group's members.
// GET /api/v1/groups/:hash/members
func (gc *GroupsController) Members(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if _, err := gc.store.GetByHash(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "get group")
		return
	}

	members, err := gc.store.Members(c.Request.Context(), hash)
	if err != nil {
		respondInternalError(c, err, "list group members")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: members})
}

// Delete removes a group and its memberships. Owner or staff only.
// DELETE /api/v1/groups/:hash
func (gc *GroupsController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	group, err := gc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "get group")
		return
	}

	caller := auth.GetUser(c)
	if group.OwnerHash != auth.GetUserHash(c) && (caller == nil || !caller.IsStaff()) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the owner may delete a group"})
		return
	}

	if err := gc.store.Delete(c.Request.Context(), hash); err != nil {
		respondInternalError(c, err, "delete group")
		return
	}

	respondSuccess(c, "group deleted")
}
