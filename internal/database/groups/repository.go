// Package groups provides database operations for user groups and
// memberships.
package groups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bamboo/internal/entities"
)

// Repository handles all group database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new groups repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a group and enrolls the owner as its first member.
func (r *Repository) Create(ctx context.Context, group *entities.UserGroup) error {
	if group.Hash == "" {
		group.Hash = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := entities.UserGroupMember{
			GroupHash: group.Hash,
			UserHash:  group.OwnerHash,
			JoinedAt:  time.Now().UTC(),
		}
		return tx.Create(&member).Error
	})
}

// GetByHash retrieves a group by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.UserGroup, error) {
	var group entities.UserGroup
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns groups, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.UserGroup, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.UserGroup{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var groups []entities.UserGroup
	err := query.Order("created_at DESC").Find(&groups).Error
	return groups, total, err
}

// Join adds a user to a group. Joining twice is a no-op.
func (r *Repository) Join(ctx context.Context, groupHash, userHash string) error {
	member := entities.UserGroupMember{
		GroupHash: groupHash,
		UserHash:  userHash,
		JoinedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member).Error
}

// Leave removes a user from a group.
func (r *Repository) Leave(ctx context.Context, groupHash, userHash string) error {
	result := r.db.WithContext(ctx).
		Where("group_hash = ? AND user_hash = ?", groupHash, userHash).
		Delete(&entities.UserGroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Members returns the membership rows of a group, oldest first.
func (r *Repository) Members(ctx context.Context, groupHash string) ([]entities.UserGroupMember, error) {
	var members []entities.UserGroupMember
	err := r.db.WithContext(ctx).
		Where("group_hash = ?", groupHash).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// Delete removes a group and its memberships.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_hash = ?", hash).Delete(&entities.UserGroupMember{}).Error; err != nil {
			return err
		}
		result := tx.Where("hash = ?", hash).Delete(&entities.UserGroup{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
