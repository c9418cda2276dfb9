package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koinonia-lab/backend/internal/domain/badge"
	"github.com/koinonia-lab/backend/internal/domain/streak"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestClock() *dateutil.FixedClock {
	return &dateutil.FixedClock{T: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func newTestBadgeManager(notifier *testutil.MockNotifier) *badge.Manager {
	streakRepo := repository.NewStreakRepository()
	return badge.NewManager(
		repository.NewBadgeRepository(),
		repository.NewUserBadgeRepository(),
		notifier,
		badge.NewVersesSavedCounter(repository.NewVerseRepository()),
		badge.NewContentPostedCounter(repository.NewPostRepository()),
		badge.NewCellsJoinedCounter(repository.NewCellRepository()),
		badge.NewCoursesCompletedCounter(repository.NewCourseRepository()),
		badge.NewFriendsCounter(repository.NewFriendshipRepository()),
		badge.NewStreakDaysCounter(streakRepo),
		badge.NewTotalPointsCounter(streakRepo),
		badge.NewFirstEventCounter(repository.NewStreakEventRepository()),
	)
}

func newTestEngine(clock dateutil.Clock, evaluator streak.BadgeEvaluator) *streak.Engine {
	return streak.NewEngine(
		repository.NewStreakRepository(),
		repository.NewStreakEventRepository(),
		evaluator,
		nil,
		clock,
		time.UTC,
	)
}

type failingEventLogger struct {
	calls int
}

func (l *failingEventLogger) LogEvent(
	ctx context.Context, userID string, eventType entity.StreakEventType,
) (*streak.LogEventResult, error) {
	l.calls++
	return nil, errors.New("database is gone")
}

func getStreak(t *testing.T, ctx context.Context, userID string) entity.StreakRecord {
	record := entity.StreakRecord{}
	err := xcontext.DB(ctx).Where("user_id=?", userID).Take(&record).Error
	require.NoError(t, err)
	return record
}
