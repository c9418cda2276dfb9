package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *entity.Badge) error
	GetByID(ctx context.Context, id string) (*entity.Badge, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Badge, error)
	GetAll(ctx context.Context) ([]entity.Badge, error)
}

type badgeRepository struct{}

func NewBadgeRepository() *badgeRepository {
	return &badgeRepository{}
}

// Create inserts the badge, or updates the existing badge with the same name.
func (r *badgeRepository) Create(ctx context.Context, badge *entity.Badge) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"description":    badge.Description,
				"criteria_type":  badge.CriteriaType,
				"criteria_value": badge.CriteriaValue,
				"icon_url":       badge.IconURL,
			}),
		}).Create(badge).Error
}

func (r *badgeRepository) GetByID(ctx context.Context, id string) (*entity.Badge, error) {
	result := &entity.Badge{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Badge, error) {
	result := []entity.Badge{}
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetAll(ctx context.Context) ([]entity.Badge, error) {
	result := []entity.Badge{}
	if err := xcontext.DB(ctx).Order("criteria_type ASC, criteria_value ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
