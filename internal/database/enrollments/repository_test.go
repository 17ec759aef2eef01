package enrollments

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bamboo/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_enrollments_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Enrollment{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CourseEnrolled, created.Status)
	assert.NotNil(t, created.LastAccessedAt)

	got, err := repo.Get(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.Get(ctx, "user-1", "other")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DuplicateEnrollmentRejected(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "course-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "user-1", "course-1")
	assert.Error(t, err, "composite unique index on (user_hash, course_hash)")
}

func TestRepository_SetStatus(t *testing.T) {
	t.Run("updates status and timestamps", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		created, err := repo.Create(ctx, "user-1", "course-1")
		require.NoError(t, err)

		now := time.Now().UTC().Add(time.Second)
		updated, err := repo.SetStatus(ctx, "user-1", "course-1", entities.CourseInProgress, now, nil)
		require.NoError(t, err)
		assert.Equal(t, entities.CourseInProgress, updated.Status)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Nil(t, updated.CompletionDate)
	})

	t.Run("completion stamps date and full progress", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		_, err := repo.Create(ctx, "user-1", "course-1")
		require.NoError(t, err)

		now := time.Now().UTC()
		updated, err := repo.SetStatus(ctx, "user-1", "course-1", entities.CourseCompleted, now, &now)
		require.NoError(t, err)
		require.NotNil(t, updated.CompletionDate)
		assert.Equal(t, 100.0, updated.ProgressPercentage)
	})

	t.Run("missing row reports not found", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()

		now := time.Now().UTC()
		_, err := repo.SetStatus(context.Background(), "nobody", "nothing", entities.CourseDropped, now, nil)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_SetRating(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "course-1")
	require.NoError(t, err)

	updated, err := repo.SetRating(ctx, "user-1", "course-1", 4.5)
	require.NoError(t, err)
	require.NotNil(t, updated.UserRating)
	assert.Equal(t, 4.5, *updated.UserRating)
}

func TestRepository_List(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "course-1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "user-1", "course-2")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "user-2", "course-1")
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.SetStatus(ctx, "user-1", "course-2", entities.CourseDropped, now, nil)
	require.NoError(t, err)

	all, total, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, total)

	mine, _, err := repo.List(ctx, ListFilter{UserHash: "user-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	dropped, _, err := repo.List(ctx, ListFilter{Status: entities.CourseDropped})
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, "course-2", dropped[0].CourseHash)

	paged, total, err := repo.List(ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 2)
	assert.EqualValues(t, 3, total, "total ignores pagination")
}

func TestRepository_ListActive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "course-1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "user-1", "course-2")
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.SetStatus(ctx, "user-1", "course-2", entities.CourseDropped, now, nil)
	require.NoError(t, err)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "course-1", active[0].CourseHash)
}
