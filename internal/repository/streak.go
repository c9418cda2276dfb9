package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository interface {
	Get(ctx context.Context, userID string) (*entity.StreakRecord, error)
	// GetUserIDs and GetListByLastActiveDate page by user id: they return
	// up to limit rows whose user id is greater than afterUserID.
	GetUserIDs(ctx context.Context, afterUserID string, limit int) ([]string, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.StreakRecord, error)
	GetListByLastActiveDate(
		ctx context.Context, date dateutil.Date, afterUserID string, limit int,
	) ([]entity.StreakRecord, error)

	// Save writes record if record.Version still matches the stored version
	// and increases the version. A record with version zero is inserted. It
	// returns false if another writer won.
	Save(ctx context.Context, record *entity.StreakRecord) (bool, error)
}

type streakRepository struct{}

func NewStreakRepository() *streakRepository {
	return &streakRepository{}
}

func (r *streakRepository) Get(ctx context.Context, userID string) (*entity.StreakRecord, error) {
	result := &entity.StreakRecord{}
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *streakRepository) GetUserIDs(ctx context.Context, afterUserID string, limit int) ([]string, error) {
	result := []string{}
	err := xcontext.DB(ctx).Model(&entity.StreakRecord{}).
		Where("user_id>?", afterUserID).
		Order("user_id ASC").
		Limit(limit).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *streakRepository) GetList(ctx context.Context, offset, limit int) ([]entity.StreakRecord, error) {
	result := []entity.StreakRecord{}
	err := xcontext.DB(ctx).
		Order("user_id ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *streakRepository) GetListByLastActiveDate(
	ctx context.Context, date dateutil.Date, afterUserID string, limit int,
) ([]entity.StreakRecord, error) {
	result := []entity.StreakRecord{}
	err := xcontext.DB(ctx).
		Where("last_active_date=? AND current_streak>0 AND user_id>?", date, afterUserID).
		Order("user_id ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *streakRepository) Save(ctx context.Context, record *entity.StreakRecord) (bool, error) {
	if record.Version == 0 {
		record.Version = 1
		tx := xcontext.DB(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(record)
		if tx.Error != nil {
			record.Version = 0
			return false, tx.Error
		}

		if tx.RowsAffected == 0 {
			record.Version = 0
			return false, nil
		}

		return true, nil
	}

	tx := xcontext.DB(ctx).
		Model(&entity.StreakRecord{}).
		Where("user_id=? AND version=?", record.UserID, record.Version).
		Updates(map[string]any{
			"current_streak":   record.CurrentStreak,
			"longest_streak":   record.LongestStreak,
			"total_points":     record.TotalPoints,
			"last_active_date": record.LastActiveDate,
			"version":          gorm.Expr("version+1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected == 0 {
		return false, nil
	}

	record.Version++
	return true, nil
}
