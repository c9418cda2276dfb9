package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type StreakEventRepository interface {
	Create(ctx context.Context, event *entity.StreakEvent) error
	Exists(ctx context.Context, userID string) (bool, error)
}

type streakEventRepository struct{}

func NewStreakEventRepository() *streakEventRepository {
	return &streakEventRepository{}
}

func (r *streakEventRepository) Create(ctx context.Context, event *entity.StreakEvent) error {
	return xcontext.DB(ctx).Create(event).Error
}

func (r *streakEventRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.StreakEvent{}).
		Where("user_id=?", userID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
