package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserStore is the slice of the users repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByHash(ctx context.Context, hash string) (*entities.User, error)
	GetByMobilePhone(ctx context.Context, mobilePhone string) (*entities.User, error)
}

// Claims are the JWT claims carried by a bearer token.
type Claims struct {
	UserHash string        `json:"user_hash"`
	Role     entities.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies bearer tokens and manages credentials.
type Service struct {
	users      UserStore
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates a new auth service.
func NewService(users UserStore, secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		users:      users,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new user keyed by mobile phone and returns it with a
// fresh bearer token.
func (s *Service) Signup(ctx context.Context, mobilePhone, password, fullName, email string, role entities.Role) (*entities.User, string, error) {
	existing, err := s.users.GetByMobilePhone(ctx, mobilePhone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hashed, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	if role == "" || !entities.ValidRole(role) {
		role = entities.RoleUser
	}
	user := &entities.User{
		MobilePhone:    mobilePhone,
		Email:          email,
		FullName:       fullName,
		HashedPassword: hashed,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh bearer
// token. Unknown phone and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, mobilePhone, password string) (*entities.User, string, error) {
	user, err := s.users.GetByMobilePhone(ctx, mobilePhone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := CheckPassword(password, user.HashedPassword); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a bearer token for the user.
func (s *Service) IssueToken(user *entities.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserHash: user.Hash,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Hash,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveUser loads the user a verified token belongs to.
func (s *Service) ResolveUser(ctx context.Context, claims *Claims) (*entities.User, error) {
	user, err := s.users.GetByHash(ctx, claims.UserHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
