package cron

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const sweepPageSize = 200

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]entity.Badge, error)
}

// BadgeSweepCronJob evaluates the badges of every user who has ever logged
// a streak event.
type BadgeSweepCronJob struct {
	streakRepo     repository.StreakRepository
	badgeEvaluator BadgeEvaluator
	clock          dateutil.Clock
	interval       time.Duration
	workers        int
}

func NewBadgeSweepCronJob(
	streakRepo repository.StreakRepository,
	badgeEvaluator BadgeEvaluator,
	clock dateutil.Clock,
	interval time.Duration,
	workers int,
) *BadgeSweepCronJob {
	if interval <= 0 {
		interval = time.Hour
	}

	if workers <= 0 {
		workers = 1
	}

	return &BadgeSweepCronJob{
		streakRepo:     streakRepo,
		badgeEvaluator: badgeEvaluator,
		clock:          clock,
		interval:       interval,
		workers:        workers,
	}
}

func (job *BadgeSweepCronJob) Do(ctx context.Context) {
	var evaluated, awarded, failed int64

	lastUserID := ""
	for {
		userIDs, err := job.streakRepo.GetUserIDs(ctx, lastUserID, sweepPageSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user ids after %q: %v", lastUserID, err)
			return
		}

		if len(userIDs) > 0 {
			lastUserID = userIDs[len(userIDs)-1]
		}

		var eg errgroup.Group
		eg.SetLimit(job.workers)
		for _, userID := range userIDs {
			userID := userID
			eg.Go(func() error {
				badges, err := job.badgeEvaluator.Evaluate(ctx, userID)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					xcontext.Logger(ctx).Warnf("Cannot evaluate badges of user %s: %v", userID, err)
					return nil
				}

				atomic.AddInt64(&evaluated, 1)
				atomic.AddInt64(&awarded, int64(len(badges)))
				return nil
			})
		}
		_ = eg.Wait()

		if len(userIDs) < sweepPageSize {
			break
		}
	}

	xcontext.Logger(ctx).Infof("Badge sweep done: evaluated=%d awarded=%d failed=%d",
		evaluated, awarded, failed)
}

func (job *BadgeSweepCronJob) RunNow() bool {
	return false
}

func (job *BadgeSweepCronJob) Next() time.Time {
	return job.clock.Now().Add(job.interval)
}
