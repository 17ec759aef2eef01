package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/entities"
)

// UsersStore defines database operations for user administration.
type UsersStore interface {
	GetByHash(ctx context.Context, hash string) (*entities.User, error)
	List(ctx context.Context, limit, offset int) ([]entities.User, int64, error)
	Update(ctx context.Context, hash string, updates map[string]interface{}) (*entities.User, error)
	Delete(ctx context.Context, hash string) error
}

type UsersController struct {
	store UsersStore
}

func NewUsersController(store UsersStore) *UsersController {
	return &UsersController{store: store}
}

// List returns registered users. Staff only.
// GET /api/v1/users
func (uc *UsersController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	users, total, err := uc.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, paginated(users, total, limit, offset))
}

// Get returns a single user. Callers see themselves; staff see anyone.
// GET /api/v1/users/:hash
func (uc *UsersController) Get(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	caller := auth.GetUser(c)
	if hash != auth.GetUserHash(c) && (caller == nil || !caller.IsStaff()) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
		return
	}

	user, err := uc.store.GetByHash(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Update patches profile fields. Role changes require staff.
// PUT /api/v1/users/:hash
func (uc *UsersController) Update(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid user payload")
		return
	}

	caller := auth.GetUser(c)
	staff := caller != nil && caller.IsStaff()
	if hash != auth.GetUserHash(c) && !staff {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
		return
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Role != "" {
		if !staff {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "only staff may change roles"})
			return
		}
		if !entities.ValidRole(entities.Role(req.Role)) {
			respondBadRequest(c, "unknown role: "+req.Role)
			return
		}
		updates["role"] = req.Role
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	user, err := uc.store.Update(c.Request.Context(), hash, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete soft-deletes a user account. Staff only.
// DELETE /api/v1/users/:hash
func (uc *UsersController) Delete(c *gin.Context) {
	hash, ok := requireParam(c, "hash")
	if !ok {
		return
	}

	if err := uc.store.Delete(c.Request.Context(), hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	respondSuccess(c, "user deleted")
}
