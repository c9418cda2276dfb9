package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository interface {
	// Complete marks the course as completed. It returns false when the
	// course had already been completed by the user.
	Complete(ctx context.Context, userID, courseID string, at time.Time) (bool, error)
	CountCompleted(ctx context.Context, userID string) (int64, error)
}

type courseRepository struct{}

func NewCourseRepository() *courseRepository {
	return &courseRepository{}
}

func (r *courseRepository) Complete(ctx context.Context, userID, courseID string, at time.Time) (bool, error) {
	changed := false
	err := xcontext.DB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.CourseProgress{
			UserID:      userID,
			CourseID:    courseID,
			Completed:   true,
			CompletedAt: sql.NullTime{Valid: true, Time: at},
		})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 1 {
			changed = true
			return nil
		}

		result = tx.Model(&entity.CourseProgress{}).
			Where("user_id=? AND course_id=? AND completed=?", userID, courseID, false).
			Updates(map[string]any{
				"completed":    true,
				"completed_at": sql.NullTime{Valid: true, Time: at},
			})
		if result.Error != nil {
			return result.Error
		}

		changed = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return changed, nil
}

func (r *courseRepository) CountCompleted(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.CourseProgress{}).
		Where("user_id=? AND completed=?", userID, true).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
