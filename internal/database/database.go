package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bamboo/internal/entities"
)

var defaultLessonTypes = []entities.LessonType{
	{Name: "vocabulary", DisplayName: "Vocabulary"},
	{Name: "grammar", DisplayName: "Grammar"},
	{Name: "listening", DisplayName: "Listening"},
	{Name: "speaking", DisplayName: "Speaking"},
	{Name: "reading", DisplayName: "Reading"},
	{Name: "writing", DisplayName: "Writing"},
	{Name: "pronunciation", DisplayName: "Pronunciation"},
	{Name: "conversation", DisplayName: "Conversation"},
	{Name: "quiz", DisplayName: "Quiz"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the configured driver ("sqlite" or "postgres") and
// migrates the schema. dsn is a file path for sqlite and a connection
// string for postgres.
func NewDatabase(driver, dsn string) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.UserGroup{},
		&entities.UserGroupMember{},
		&entities.UserShare{},
		&entities.Course{},
		&entities.Lesson{},
		&entities.CourseLesson{},
		&entities.LessonType{},
		&entities.Enrollment{},
		&entities.LessonProgress{},
		&entities.LessonResult{},
		&entities.Resource{},
		&entities.Page{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedLessonTypes(); err != nil {
		return nil, fmt.Errorf("failed to seed lesson types: %w", err)
	}

	log.Printf("Database initialized (%s)", driverName(driver))

	return database, nil
}

func driverName(driver string) string {
	if driver == "" {
		return "sqlite"
	}
	return driver
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedLessonTypes() error {
	for _, lessonType := range defaultLessonTypes {
		var existing entities.LessonType
		result := d.DB.Where("name = ?", lessonType.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			lessonType.IsActive = true
			if err := d.DB.Create(&lessonType).Error; err != nil {
				return fmt.Errorf("failed to create lesson type %s: %w", lessonType.Name, err)
			}
		}
	}
	return nil
}
