package statistic

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newSortedSetRedis keeps one sorted set in memory.
func newSortedSetRedis() (*testutil.MockRedisClient, map[string]float64) {
	set := map[string]float64{}
	loaded := false

	sorted := func() []redis.Z {
		result := []redis.Z{}
		for member, score := range set {
			result = append(result, redis.Z{Member: member, Score: score})
		}
		sort.Slice(result, func(i, j int) bool {
			if result[i].Score != result[j].Score {
				return result[i].Score > result[j].Score
			}
			return result[i].Member.(string) > result[j].Member.(string)
		})
		return result
	}

	return &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return loaded, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			loaded = true
			set[z.Member.(string)] = z.Score
			return nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			all := sorted()
			if offset >= len(all) {
				return nil, nil
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end], nil
		},
		ZRevRankFunc: func(ctx context.Context, key string, member string) (uint64, error) {
			for i, z := range sorted() {
				if z.Member == member {
					return uint64(i), nil
				}
			}
			return 0, redis.Nil
		},
	}, set
}

func insertStreak(t *testing.T, ctx context.Context, userID string, points int64) {
	err := xcontext.DB(ctx).Create(&entity.StreakRecord{
		UserID:      userID,
		TotalPoints: points,
		Version:     1,
	}).Error
	require.NoError(t, err)
}

func TestLeaderboard_LoadsFromDatabase(t *testing.T) {
	ctx := testutil.MockContext()
	insertStreak(t, ctx, "user1", 30)
	insertStreak(t, ctx, "user2", 120)
	insertStreak(t, ctx, "user3", 55)

	redisClient, set := newSortedSetRedis()
	l := New(repository.NewStreakRepository(), redisClient)

	entries, err := l.GetPoints(ctx, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []PointsEntry{
		{UserID: "user2", Points: 120, Rank: 1},
		{UserID: "user3", Points: 55, Rank: 2},
	}, entries)
	require.Len(t, set, 3)

	entries, err = l.GetPoints(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []PointsEntry{{UserID: "user1", Points: 30, Rank: 3}}, entries)

	rank, err := l.GetRank(ctx, "user3")
	require.NoError(t, err)
	require.Equal(t, uint64(2), rank)

	rank, err = l.GetRank(ctx, "nobody")
	require.NoError(t, err)
	require.Equal(t, uint64(0), rank)
}

func TestLeaderboard_DoesNotReloadExistingKey(t *testing.T) {
	ctx := testutil.MockContext()
	insertStreak(t, ctx, "user1", 30)

	zadds := 0
	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			require.Equal(t, common.RedisKeyPointsLeaderboard, key)
			return true, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			zadds++
			return nil
		},
	}

	entries, err := New(repository.NewStreakRepository(), redisClient).GetPoints(ctx, 0, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, 0, zadds)
}

func TestLeaderboard_RedisFailure(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	_, err := New(repository.NewStreakRepository(), redisClient).GetPoints(ctx, 0, 10)
	require.ErrorIs(t, err, errorx.Unknown)
}
