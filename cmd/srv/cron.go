package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/koinonia-lab/backend/internal/domain/cron"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRedisClient()
	s.loadRepos()
	s.loadNotifier()
	s.loadBadgeManager()
	defer s.stop()

	cfg := xcontext.Configs(s.ctx).Gamification
	fanout := xcontext.Configs(s.ctx).Notification.FanoutSize

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewBadgeSweepCronJob(
		s.streakRepo,
		s.badgeManager,
		s.clock,
		cfg.BadgeSweepInterval,
		cfg.BadgeSweepWorkers,
	))
	cronJobManager.Register(cron.NewStreakReminderCronJob(
		s.streakRepo,
		s.notifier,
		s.redisClient,
		s.clock,
		s.location,
		cfg.ReminderHour,
		fanout,
	))

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(s.ctx).Infof("Starting cron jobs")
	cronJobManager.Start(ctx)
	return nil
}
