package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/koinonia-lab/backend/pkg/xredis"
)

const reminderTTL = 48 * time.Hour

// StreakReminderCronJob reminds users who were active yesterday but not yet
// today that their streak ends at midnight.
type StreakReminderCronJob struct {
	streakRepo  repository.StreakRepository
	notifier    notification.Notifier
	redisClient xredis.Client
	clock       dateutil.Clock
	location    *time.Location
	hour        int
	fanout      int
	pageSize    int
}

func NewStreakReminderCronJob(
	streakRepo repository.StreakRepository,
	notifier notification.Notifier,
	redisClient xredis.Client,
	clock dateutil.Clock,
	location *time.Location,
	hour int,
	fanout int,
) *StreakReminderCronJob {
	if location == nil {
		location = time.UTC
	}

	return &StreakReminderCronJob{
		streakRepo:  streakRepo,
		notifier:    notifier,
		redisClient: redisClient,
		clock:       clock,
		location:    location,
		hour:        hour,
		fanout:      fanout,
		pageSize:    sweepPageSize,
	}
}

func (job *StreakReminderCronJob) Do(ctx context.Context) {
	today := dateutil.DateOf(job.clock.Now(), job.location)
	yesterday := today.AddDays(-1)

	// Users logging an event while the job runs leave the filtered set, so
	// pages are keyed by user id rather than offset.
	lastUserID := ""
	for {
		records, err := job.streakRepo.GetListByLastActiveDate(ctx, yesterday, lastUserID, job.pageSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get streaks at risk: %v", err)
			return
		}

		if len(records) > 0 {
			lastUserID = records[len(records)-1].UserID
		}

		userIDs := []string{}
		streaks := map[string]int{}
		for _, r := range records {
			// The job may run twice a day after a restart.
			ok, err := job.redisClient.SetNX(ctx,
				common.RedisKeyStreakReminder(today.String(), r.UserID), "1", reminderTTL)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot mark reminder of user %s: %v", r.UserID, err)
			} else if !ok {
				continue
			}

			userIDs = append(userIDs, r.UserID)
			streaks[r.UserID] = r.CurrentStreak
		}

		notification.NotifyAll(ctx, job.notifier, userIDs, job.fanout, func(userID string) notification.Message {
			return notification.Message{
				UserID:   userID,
				Title:    "Keep your streak",
				Body:     fmt.Sprintf("You are on a %d day streak. Save a verse or share with your cell today to keep it.", streaks[userID]),
				LinkPath: "/streak",
			}
		})

		if len(records) < job.pageSize {
			break
		}
	}
}

func (job *StreakReminderCronJob) RunNow() bool {
	return false
}

func (job *StreakReminderCronJob) Next() time.Time {
	return dateutil.NextDayAt(job.clock.Now().In(job.location), job.hour)
}
