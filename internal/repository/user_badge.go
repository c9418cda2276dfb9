package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBadgeRepository interface {
	// CreateIfNotExists inserts the given awards, skipping every pair which
	// already exists. It returns only the awards inserted by this call.
	CreateIfNotExists(ctx context.Context, userBadges []entity.UserBadge) ([]entity.UserBadge, error)
	GetAll(ctx context.Context, userID string) ([]entity.UserBadge, error)
	GetBadgeIDs(ctx context.Context, userID string) ([]string, error)
	UpdateNotification(ctx context.Context, userID string) error
}

type userBadgeRepository struct{}

func NewUserBadgeRepository() *userBadgeRepository {
	return &userBadgeRepository{}
}

func (r *userBadgeRepository) CreateIfNotExists(
	ctx context.Context, userBadges []entity.UserBadge,
) ([]entity.UserBadge, error) {
	inserted := []entity.UserBadge{}
	err := xcontext.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range userBadges {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userBadges[i])
			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 1 {
				inserted = append(inserted, userBadges[i])
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

func (r *userBadgeRepository) GetAll(ctx context.Context, userID string) ([]entity.UserBadge, error) {
	result := []entity.UserBadge{}
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("awarded_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userBadgeRepository) GetBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	result := []string{}
	err := xcontext.DB(ctx).Model(&entity.UserBadge{}).
		Where("user_id=?", userID).
		Pluck("badge_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userBadgeRepository) UpdateNotification(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Model(&entity.UserBadge{}).
		Where("user_id=? AND was_notified=?", userID, false).
		Update("was_notified", true).Error
}
