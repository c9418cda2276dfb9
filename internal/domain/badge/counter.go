package badge

import (
	"context"
	"errors"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"gorm.io/gorm"
)

type countFunc func(ctx context.Context, userID string) (int64, error)

type metricCounter struct {
	criteria entity.BadgeCriteria
	count    countFunc
}

func (c *metricCounter) Criteria() entity.BadgeCriteria {
	return c.criteria
}

func (c *metricCounter) Count(ctx context.Context, userID string) (int64, error) {
	return c.count(ctx, userID)
}

func NewVersesSavedCounter(verseRepo repository.VerseRepository) *metricCounter {
	return &metricCounter{criteria: entity.CriteriaVersesSaved, count: verseRepo.Count}
}

func NewContentPostedCounter(postRepo repository.PostRepository) *metricCounter {
	return &metricCounter{criteria: entity.CriteriaContentPosted, count: postRepo.Count}
}

func NewCellsJoinedCounter(cellRepo repository.CellRepository) *metricCounter {
	return &metricCounter{criteria: entity.CriteriaCellsJoined, count: cellRepo.CountMemberships}
}

func NewCoursesCompletedCounter(courseRepo repository.CourseRepository) *metricCounter {
	return &metricCounter{criteria: entity.CriteriaCoursesCompleted, count: courseRepo.CountCompleted}
}

func NewFriendsCounter(friendshipRepo repository.FriendshipRepository) *metricCounter {
	return &metricCounter{criteria: entity.CriteriaFriends, count: friendshipRepo.CountAccepted}
}

func NewStreakDaysCounter(streakRepo repository.StreakRepository) *metricCounter {
	return &metricCounter{
		criteria: entity.CriteriaStreakDays,
		count: func(ctx context.Context, userID string) (int64, error) {
			record, err := getStreakRecord(ctx, streakRepo, userID)
			if err != nil {
				return 0, err
			}

			return int64(record.CurrentStreak), nil
		},
	}
}

func NewTotalPointsCounter(streakRepo repository.StreakRepository) *metricCounter {
	return &metricCounter{
		criteria: entity.CriteriaTotalPoints,
		count: func(ctx context.Context, userID string) (int64, error) {
			record, err := getStreakRecord(ctx, streakRepo, userID)
			if err != nil {
				return 0, err
			}

			return record.TotalPoints, nil
		},
	}
}

func NewFirstEventCounter(streakEventRepo repository.StreakEventRepository) *metricCounter {
	return &metricCounter{
		criteria: entity.CriteriaFirstEvent,
		count: func(ctx context.Context, userID string) (int64, error) {
			exists, err := streakEventRepo.Exists(ctx, userID)
			if err != nil {
				return 0, err
			}

			if exists {
				return 1, nil
			}

			return 0, nil
		},
	}
}

// getStreakRecord returns a zero record for users without any activity.
func getStreakRecord(
	ctx context.Context, streakRepo repository.StreakRepository, userID string,
) (*entity.StreakRecord, error) {
	record, err := streakRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.StreakRecord{UserID: userID}, nil
		}

		return nil, err
	}

	return record, nil
}
