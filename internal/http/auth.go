package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/entities"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type signupRequest struct {
	MobilePhone string `json:"mobile_phone" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type loginRequest struct {
	MobilePhone string `json:"mobile_phone" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// Signup registers a new user.
// POST /api/v1/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "mobile_phone and password are required")
		return
	}

	user, token, err := ac.service.Signup(c.Request.Context(), req.MobilePhone, req.Password, req.FullName, req.Email, entities.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondConflict(c, "user already exists")
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "signup")
		}
		return
	}

	respondCreated(c, tokenResponse{Token: token, User: user})
}

// Login exchanges credentials for a bearer token.
// POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "mobile_phone and password are required")
		return
	}

	user, token, err := ac.service.Login(c.Request.Context(), req.MobilePhone, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token, User: user})
}

// Me returns the authenticated user.
// GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authorization required"})
		return
	}
	c.JSON(http.StatusOK, user)
}
