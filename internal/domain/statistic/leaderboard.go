package statistic

import (
	"context"
	"errors"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/koinonia-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

const loadBatchSize = 500

type PointsEntry struct {
	UserID string
	Points int64
	Rank   int
}

type Leaderboard interface {
	GetPoints(ctx context.Context, offset, limit int) ([]PointsEntry, error)
	GetRank(ctx context.Context, userID string) (uint64, error)
}

type leaderboard struct {
	streakRepo  repository.StreakRepository
	redisClient xredis.Client
}

func New(streakRepo repository.StreakRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{streakRepo: streakRepo, redisClient: redisClient}
}

func (l *leaderboard) GetPoints(ctx context.Context, offset, limit int) ([]PointsEntry, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyPointsLeaderboard, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	entries := []PointsEntry{}
	for i, z := range results {
		userID, ok := z.Member.(string)
		if !ok {
			xcontext.Logger(ctx).Warnf("Invalid leaderboard member: %v", z.Member)
			continue
		}

		entries = append(entries, PointsEntry{
			UserID: userID,
			Points: int64(z.Score),
			Rank:   offset + i + 1,
		})
	}

	return entries, nil
}

// GetRank returns the 1-based rank of the user, or 0 if the user is not on
// the leaderboard.
func (l *leaderboard) GetRank(ctx context.Context, userID string) (uint64, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, common.RedisKeyPointsLeaderboard, userID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Errorf("Cannot get rev rank redis: %v", err)
			return 0, errorx.Unknown
		}

		return 0, nil
	}

	return rank + 1, nil
}

// ensureLoaded rebuilds the sorted set from the database if the key didn't
// exist in redis.
func (l *leaderboard) ensureLoaded(ctx context.Context) error {
	ok, err := l.redisClient.Exist(ctx, common.RedisKeyPointsLeaderboard)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if ok {
		return nil
	}

	for offset := 0; ; offset += loadBatchSize {
		records, err := l.streakRepo.GetList(ctx, offset, loadBatchSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load streak records: %v", err)
			return errorx.Unknown
		}

		for _, r := range records {
			err := l.redisClient.ZAdd(ctx, common.RedisKeyPointsLeaderboard,
				redis.Z{Member: r.UserID, Score: float64(r.TotalPoints)})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
				return errorx.Unknown
			}
		}

		if len(records) < loadBatchSize {
			break
		}
	}

	return nil
}
