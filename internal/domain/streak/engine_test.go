package streak

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/koinonia-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockBadgeEvaluator struct {
	mutex  sync.Mutex
	calls  int
	err    error
	badges []entity.Badge
}

func (m *mockBadgeEvaluator) Evaluate(ctx context.Context, userID string) ([]entity.Badge, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.calls++
	return m.badges, m.err
}

// conflictStreakRepository loses every version check.
type conflictStreakRepository struct {
	repository.StreakRepository
	saves int
}

func (r *conflictStreakRepository) Save(ctx context.Context, record *entity.StreakRecord) (bool, error) {
	r.saves++
	return false, nil
}

func newTestEngine(clock dateutil.Clock, evaluator BadgeEvaluator, redisClient xredis.Client) *Engine {
	return NewEngine(
		repository.NewStreakRepository(),
		repository.NewStreakEventRepository(),
		evaluator,
		redisClient,
		clock,
		time.UTC,
	)
}

func Test_Engine_LogEvent_FirstEvent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	evaluator := &mockBadgeEvaluator{}
	engine := newTestEngine(clock, evaluator, &testutil.MockRedisClient{})

	result, err := engine.LogEvent(ctx, testutil.User1.ID, entity.CellMessage)
	require.NoError(t, err)
	require.Equal(t, 5, result.Points)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, 1, result.Record.LongestStreak)
	require.Equal(t, int64(5), result.Record.TotalPoints)
	require.Equal(t, dateutil.Date{Year: 2024, Month: 3, Day: 1}, result.Record.LastActiveDate)
	require.Equal(t, 1, evaluator.calls)

	record, err := repository.NewStreakRepository().Get(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, result.Record.TotalPoints, record.TotalPoints)
	require.Equal(t, result.Record.LastActiveDate, record.LastActiveDate)
	require.Equal(t, int64(1), record.Version)

	exists, err := repository.NewStreakEventRepository().Exists(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.True(t, exists)
}

func Test_Engine_LogEvent_ConsecutiveDays(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	engine := newTestEngine(clock, nil, &testutil.MockRedisClient{})

	_, err := engine.LogEvent(ctx, testutil.User1.ID, entity.CourseComplete)
	require.NoError(t, err)

	clock.T = clock.T.Add(24 * time.Hour)
	result, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.NoError(t, err)
	require.Equal(t, int64(60), result.Record.TotalPoints)
	require.Equal(t, 2, result.Record.CurrentStreak)
	require.Equal(t, 2, result.Record.LongestStreak)

	// Same day again: only points grow.
	result, err = engine.LogEvent(ctx, testutil.User1.ID, entity.PostContent)
	require.NoError(t, err)
	require.Equal(t, int64(75), result.Record.TotalPoints)
	require.Equal(t, 2, result.Record.CurrentStreak)

	// Skipping two days restarts the streak but keeps the longest.
	clock.T = clock.T.Add(72 * time.Hour)
	result, err = engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSaveWithNote)
	require.NoError(t, err)
	require.Equal(t, int64(95), result.Record.TotalPoints)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, 2, result.Record.LongestStreak)
}

func Test_Engine_LogEvent_ReferenceTimezone(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	// 23:30 UTC on the 1st is already the 2nd in UTC+8.
	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)}
	engine := NewEngine(
		repository.NewStreakRepository(),
		repository.NewStreakEventRepository(),
		nil, nil, clock, time.FixedZone("UTC+8", 8*60*60),
	)

	result, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.NoError(t, err)
	require.Equal(t, dateutil.Date{Year: 2024, Month: 3, Day: 2}, result.Record.LastActiveDate)
	require.Equal(t, dateutil.Date{Year: 2024, Month: 3, Day: 2}, engine.Today())
}

func Test_Engine_LogEvent_InvalidInput(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	engine := newTestEngine(clock, nil, &testutil.MockRedisClient{})

	_, err := engine.LogEvent(ctx, "", entity.VerseSave)
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))

	_, err = engine.LogEvent(ctx, testutil.User1.ID, "pray")
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))

	// Neither call wrote anything.
	exists, err := repository.NewStreakEventRepository().Exists(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repository.NewStreakRepository().Get(ctx, testutil.User1.ID)
	require.Error(t, err)
}

func Test_Engine_LogEvent_BadgeFailureIsIgnored(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	evaluator := &mockBadgeEvaluator{err: errors.New("badge store down")}
	engine := newTestEngine(clock, evaluator, &testutil.MockRedisClient{})

	result, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.NoError(t, err)
	require.Equal(t, int64(10), result.Record.TotalPoints)
	require.Empty(t, result.AwardedBadges)
	require.Equal(t, 1, evaluator.calls)
}

func Test_Engine_LogEvent_ReturnsAwardedBadges(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	evaluator := &mockBadgeEvaluator{badges: []entity.Badge{*testutil.BadgeFirstStep}}
	engine := newTestEngine(clock, evaluator, &testutil.MockRedisClient{})

	result, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.NoError(t, err)
	require.Len(t, result.AwardedBadges, 1)
	require.Equal(t, testutil.BadgeFirstStep.ID, result.AwardedBadges[0].ID)
}

func Test_Engine_LogEvent_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	engine := newTestEngine(clock, nil, &testutil.MockRedisClient{})

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.LogEvent(ctx, testutil.User2.ID, entity.VerseSave)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, errorx.New(errorx.StreakConflict, ""))
		}
	}

	// Every successful call is counted, none is lost.
	record, err := repository.NewStreakRepository().Get(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10*succeeded), record.TotalPoints)
	require.Equal(t, 1, record.CurrentStreak)
	require.Equal(t, int64(succeeded), record.Version)
}

func Test_Engine_LogEvent_GivesUpAfterConflicts(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	streakRepo := &conflictStreakRepository{StreakRepository: repository.NewStreakRepository()}
	evaluator := &mockBadgeEvaluator{}
	engine := NewEngine(
		streakRepo,
		repository.NewStreakEventRepository(),
		evaluator, nil, clock, time.UTC,
	)

	_, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.ErrorIs(t, err, errorx.New(errorx.StreakConflict, ""))
	require.Equal(t, maxSaveAttempts, streakRepo.saves)
	require.Equal(t, 0, evaluator.calls)
}

func Test_Engine_LogEvent_UpdatesLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	var added []redis.Z
	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			require.Equal(t, common.RedisKeyPointsLeaderboard, key)
			return true, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			added = append(added, z)
			return nil
		},
	}
	engine := newTestEngine(clock, nil, redisClient)

	_, err := engine.LogEvent(ctx, testutil.User1.ID, entity.VerseSave)
	require.NoError(t, err)
	_, err = engine.LogEvent(ctx, testutil.User1.ID, entity.PostContent)
	require.NoError(t, err)

	require.Len(t, added, 2)
	require.Equal(t, float64(25), added[1].Score)
	require.Equal(t, testutil.User1.ID, added[1].Member)

	// A broken leaderboard never fails the event.
	redisClient.ZAddFunc = func(ctx context.Context, key string, z redis.Z) error {
		return errors.New("redis down")
	}
	_, err = engine.LogEvent(ctx, testutil.User1.ID, entity.PostContent)
	require.NoError(t, err)

	// Not built yet: nothing is written.
	added = nil
	redisClient.ExistFunc = func(ctx context.Context, key string) (bool, error) { return false, nil }
	redisClient.ZAddFunc = func(ctx context.Context, key string, z redis.Z) error {
		added = append(added, z)
		return nil
	}
	_, err = engine.LogEvent(ctx, testutil.User1.ID, entity.PostContent)
	require.NoError(t, err)
	require.Empty(t, added)
}

func Test_Engine_Get(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	engine := newTestEngine(clock, nil, nil)

	record, err := engine.Get(ctx, testutil.User3.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.User3.ID, record.UserID)
	require.Zero(t, record.CurrentStreak)
	require.True(t, record.LastActiveDate.IsZero())
}
