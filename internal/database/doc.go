// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── courses/         # Course catalogue CRUD and course-lesson links
//	├── lessons/         # Lesson catalogue CRUD and lesson types
//	├── enrollments/     # User-course enrollment records
//	├── userlessons/     # Per-lesson progress records
//	├── results/         # Immutable lesson result snapshots
//	├── resources/       # Supplementary learning resources
//	├── pages/           # User notebook pages
//	├── groups/          # Study groups and membership
//	└── users/           # User accounts
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("sqlite", "./app.db")
//
//	// Create domain-specific repositories
//	coursesRepo := courses.NewRepository(db.DB)
//	enrollRepo := enrollments.NewRepository(db.DB)
//
//	// Use repositories
//	course, err := coursesRepo.GetByHash(hash)
//	list, err := enrollRepo.List(enrollments.ListFilter{UserHash: user})
//
// # Interface Implementations
//
// Repositories are consumed through narrow interfaces declared at the point
// of use: courses.Repository satisfies http.CoursesStore and the progress
// counter used by the task queue, enrollments.Repository satisfies
// http.EnrollmentsStore and the scheduler's active-enrollment lister.
//
// # Adding a New Domain
//
// To add a new domain:
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
