package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

type fakeUserStore struct {
	byHash  map[string]*entities.User
	byPhone map[string]*entities.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byHash:  map[string]*entities.User{},
		byPhone: map[string]*entities.User{},
	}
}

func (s *fakeUserStore) Create(_ context.Context, user *entities.User) error {
	if user.Hash == "" {
		user.Hash = uuid.NewString()
	}
	s.byHash[user.Hash] = user
	s.byPhone[user.MobilePhone] = user
	return nil
}

func (s *fakeUserStore) GetByHash(_ context.Context, hash string) (*entities.User, error) {
	user, ok := s.byHash[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByMobilePhone(_ context.Context, mobilePhone string) (*entities.User, error) {
	user, ok := s.byPhone[mobilePhone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newTestService() (*Service, *fakeUserStore) {
	store := newFakeUserStore()
	return NewService(store, "test-secret", time.Hour, bcrypt.MinCost), store
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		service, store := newTestService()

		user, token, err := service.Signup(ctx, "+4915112345678", "correct-horse", "Ada", "ada@example.com", entities.RoleStudent)
		require.NoError(t, err)
		assert.NotEmpty(t, user.Hash)
		assert.NotEmpty(t, token)
		assert.Equal(t, entities.RoleStudent, user.Role)
		assert.NotEqual(t, "correct-horse", user.HashedPassword)
		assert.Contains(t, store.byPhone, "+4915112345678")
	})

	t.Run("rejects duplicate phone", func(t *testing.T) {
		service, _ := newTestService()

		_, _, err := service.Signup(ctx, "+4915112345678", "correct-horse", "Ada", "", "")
		require.NoError(t, err)

		_, _, err = service.Signup(ctx, "+4915112345678", "other-password", "Eve", "", "")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("rejects short password", func(t *testing.T) {
		service, _ := newTestService()
		_, _, err := service.Signup(ctx, "+4915112345678", "short", "Ada", "", "")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("unknown role downgraded to user", func(t *testing.T) {
		service, _ := newTestService()
		user, _, err := service.Signup(ctx, "+4915112345678", "correct-horse", "Ada", "", "superuser")
		require.NoError(t, err)
		assert.Equal(t, entities.RoleUser, user.Role)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials round-trip through the token", func(t *testing.T) {
		service, _ := newTestService()
		created, _, err := service.Signup(ctx, "+4915112345678", "correct-horse", "Ada", "", entities.RoleTeacher)
		require.NoError(t, err)

		user, token, err := service.Login(ctx, "+4915112345678", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, created.Hash, user.Hash)

		claims, err := service.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, created.Hash, claims.UserHash)
		assert.Equal(t, entities.RoleTeacher, claims.Role)

		resolved, err := service.ResolveUser(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, created.Hash, resolved.Hash)
	})

	t.Run("wrong password and unknown phone look the same", func(t *testing.T) {
		service, _ := newTestService()
		_, _, err := service.Signup(ctx, "+4915112345678", "correct-horse", "Ada", "", "")
		require.NoError(t, err)

		_, _, errWrong := service.Login(ctx, "+4915112345678", "wrong-password")
		_, _, errUnknown := service.Login(ctx, "+490000000000", "correct-horse")
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	})
}

func TestService_ParseToken(t *testing.T) {
	t.Run("rejects garbage", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		service, store := newTestService()
		other := NewService(store, "other-secret", time.Hour, bcrypt.MinCost)

		user := &entities.User{Hash: "u1", Role: entities.RoleUser}
		token, err := other.IssueToken(user)
		require.NoError(t, err)

		_, err = service.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		store := newFakeUserStore()
		service := NewService(store, "test-secret", -time.Minute, bcrypt.MinCost)

		token, err := service.IssueToken(&entities.User{Hash: "u1"})
		require.NoError(t, err)

		_, err = service.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, CheckPassword("correct-horse", hash))
	assert.ErrorIs(t, CheckPassword("wrong", hash), ErrInvalidPassword)

	_, err = HashPassword("short", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
