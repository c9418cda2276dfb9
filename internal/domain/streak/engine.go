package streak

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/koinonia-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const maxSaveAttempts = 3

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]entity.Badge, error)
}

type LogEventResult struct {
	Points        int
	Record        entity.StreakRecord
	AwardedBadges []entity.Badge
}

type Engine struct {
	streakRepo      repository.StreakRepository
	streakEventRepo repository.StreakEventRepository
	badgeEvaluator  BadgeEvaluator
	redisClient     xredis.Client
	clock           dateutil.Clock
	location        *time.Location
}

func NewEngine(
	streakRepo repository.StreakRepository,
	streakEventRepo repository.StreakEventRepository,
	badgeEvaluator BadgeEvaluator,
	redisClient xredis.Client,
	clock dateutil.Clock,
	location *time.Location,
) *Engine {
	if location == nil {
		location = time.UTC
	}

	return &Engine{
		streakRepo:      streakRepo,
		streakEventRepo: streakEventRepo,
		badgeEvaluator:  badgeEvaluator,
		redisClient:     redisClient,
		clock:           clock,
		location:        location,
	}
}

// Today returns the current calendar date in the reference timezone.
func (e *Engine) Today() dateutil.Date {
	return dateutil.DateOf(e.clock.Now(), e.location)
}

// Get returns the streak record of the user, or a zero record if the user
// never logged any event.
func (e *Engine) Get(ctx context.Context, userID string) (*entity.StreakRecord, error) {
	record, err := e.streakRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.StreakRecord{UserID: userID}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get streak record of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return record, nil
}

// LogEvent records a qualifying activity of the user, updates the streak and
// the points, then evaluates badges. A failed badge evaluation is logged and
// never fails the call.
func (e *Engine) LogEvent(
	ctx context.Context, userID string, eventType entity.StreakEventType,
) (*LogEventResult, error) {
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "User is required")
	}

	points, ok := Points(eventType)
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unknown event type %s", eventType)
	}

	now := e.clock.Now()
	err := e.streakEventRepo.Create(ctx, &entity.StreakEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventType: eventType,
		Points:    points,
		CreatedAt: now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append streak event: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.StreakEventTotal].WithLabelValues(string(eventType)).Inc()

	today := dateutil.DateOf(now, e.location)
	record, err := e.save(ctx, userID, today, points)
	if err != nil {
		return nil, err
	}

	e.updateLeaderboard(ctx, record)

	result := &LogEventResult{Points: points, Record: *record}
	if e.badgeEvaluator != nil {
		awarded, err := e.badgeEvaluator.Evaluate(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot evaluate badges of user %s: %v", userID, err)
		} else {
			result.AwardedBadges = awarded
		}
	}

	return result, nil
}

// save reads the record, applies the event and writes it back only if nobody
// else wrote the record in between. A conflict restarts from the read.
func (e *Engine) save(
	ctx context.Context, userID string, today dateutil.Date, points int,
) (*entity.StreakRecord, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		current, err := e.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := Advance(*current, today, points)
		saved, err := e.streakRepo.Save(ctx, &next)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot save streak record of user %s: %v", userID, err)
			return nil, errorx.Unknown
		}

		if saved {
			return &next, nil
		}

		xcontext.Logger(ctx).Debugf("Streak record of user %s changed concurrently, attempt %d", userID, attempt)
	}

	xcontext.Logger(ctx).Warnf("Give up saving streak record of user %s after %d attempts", userID, maxSaveAttempts)
	return nil, errorx.New(errorx.StreakConflict, "Your activity could not be recorded, please try again")
}

// updateLeaderboard writes the new total of the user only if the leaderboard
// was built. A missing leaderboard is rebuilt from database on next read.
func (e *Engine) updateLeaderboard(ctx context.Context, record *entity.StreakRecord) {
	if e.redisClient == nil {
		return
	}

	exist, err := e.redisClient.Exist(ctx, common.RedisKeyPointsLeaderboard)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot check points leaderboard: %v", err)
		return
	}

	if !exist {
		return
	}

	err = e.redisClient.ZAdd(ctx, common.RedisKeyPointsLeaderboard, redis.Z{
		Score:  float64(record.TotalPoints),
		Member: record.UserID,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update points leaderboard: %v", err)
	}
}
