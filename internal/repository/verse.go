package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type VerseRepository interface {
	Create(ctx context.Context, data *entity.SavedVerse) error
	Count(ctx context.Context, userID string) (int64, error)
}

type verseRepository struct{}

func NewVerseRepository() *verseRepository {
	return &verseRepository{}
}

func (r *verseRepository) Create(ctx context.Context, data *entity.SavedVerse) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *verseRepository) Count(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.SavedVerse{}).
		Where("user_id=?", userID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
