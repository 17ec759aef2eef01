// Package pages provides database operations for user-authored pages.
// Every update keeps the previous body in the page's JSON history array so
// edits are never lost.
package pages

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all page database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a page, assigning a fresh hash when none is set.
func (r *Repository) Create(ctx context.Context, page *entities.Page) error {
	if page.Hash == "" {
		page.Hash = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(page).Error
}

// GetByHash retrieves a page by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.Page, error) {
	var page entities.Page
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// historyEntry is one archived page revision.
type historyEntry struct {
	Page        string    `json:"page"`
	PageTitle   string    `json:"page_title"`
	PageVersion string    `json:"page_version"`
	ArchivedAt  time.Time `json:"archived_at"`
}

// UpdateBody replaces the page body, archiving the previous revision into
// the history array first.
func (r *Repository) UpdateBody(ctx context.Context, hash, body, title, version string) (*entities.Page, error) {
	page, err := r.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	var history []historyEntry
	if len(page.PageHistory) > 0 {
		// A corrupt history array is dropped rather than blocking the edit.
		_ = json.Unmarshal(page.PageHistory, &history)
	}
	history = append(history, historyEntry{
		Page:        page.Page,
		PageTitle:   page.PageTitle,
		PageVersion: page.PageVersion,
		ArchivedAt:  time.Now().UTC(),
	})
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	page.Page = body
	if title != "" {
		page.PageTitle = title
	}
	if version != "" {
		page.PageVersion = version
	}
	page.PageHistory = raw

	if err := r.db.WithContext(ctx).Save(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	UserMobilePhone string
	CourseID        string
	PageType        string
	Limit           int
	Offset          int
}

// List returns pages matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entities.Page, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Page{})
	if filter.UserMobilePhone != "" {
		query = query.Where("user_mobile_phone = ?", filter.UserMobilePhone)
	}
	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.PageType != "" {
		query = query.Where("page_type = ?", filter.PageType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var pages []entities.Page
	err := query.Order("updated_at DESC").Find(&pages).Error
	return pages, total, err
}

// Delete removes a page.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&entities.Page{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
