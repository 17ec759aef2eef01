package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bamboo/internal/entities"
)

func TestNewDatabase_SQLite(t *testing.T) {
	dbPath := "./test_database_" + t.Name() + ".db"
	defer os.Remove(dbPath)

	db, err := NewDatabase("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	// migrations ran
	assert.True(t, db.DB.Migrator().HasTable(&entities.User{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Course{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Enrollment{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.LessonResult{}))
}

func TestNewDatabase_EmptyDriverDefaultsToSQLite(t *testing.T) {
	dbPath := "./test_database_" + t.Name() + ".db"
	defer os.Remove(dbPath)

	db, err := NewDatabase("", dbPath)
	require.NoError(t, err)
	defer db.Close()
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("oracle", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabase_SeedsLessonTypes(t *testing.T) {
	dbPath := "./test_database_" + t.Name() + ".db"
	defer os.Remove(dbPath)

	db, err := NewDatabase("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.LessonType{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultLessonTypes)), count)

	// seeding is idempotent across restarts
	require.NoError(t, db.Close())
	db2, err := NewDatabase("sqlite", dbPath)
	require.NoError(t, err)
	defer db2.Close()

	require.NoError(t, db2.DB.Model(&entities.LessonType{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultLessonTypes)), count)
}
