package main

import (
	"context"
	"fmt"
	"time"

	"github.com/koinonia-lab/backend/internal/domain"
	"github.com/koinonia-lab/backend/internal/domain/badge"
	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/domain/statistic"
	"github.com/koinonia-lab/backend/internal/domain/streak"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/kafka"
	"github.com/koinonia-lab/backend/pkg/logger"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/koinonia-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	logger      interface{ Sync() error }
	clock       dateutil.Clock
	location    *time.Location
	redisClient xredis.Client
	stoppers    []func(context.Context)

	userRepo         repository.UserRepository
	streakRepo       repository.StreakRepository
	streakEventRepo  repository.StreakEventRepository
	badgeRepo        repository.BadgeRepository
	userBadgeRepo    repository.UserBadgeRepository
	cellRepo         repository.CellRepository
	chatMessageRepo  repository.ChatMessageRepository
	verseRepo        repository.VerseRepository
	postRepo         repository.PostRepository
	courseRepo       repository.CourseRepository
	friendshipRepo   repository.FriendshipRepository
	notificationRepo repository.NotificationRepository

	notifier     notification.Notifier
	badgeManager *badge.Manager
	streakEngine *streak.Engine
	leaderboard  statistic.Leaderboard
	hub          *engagement.Hub

	gamificationDomain domain.GamificationDomain
	badgeDomain        domain.BadgeDomain
	contentDomain      domain.ContentDomain
	chatDomain         domain.ChatDomain
	engagementDomain   domain.EngagementDomain
	notificationDomain domain.NotificationDomain
}

func (s *srv) loadContext() error {
	cfg := s.loadConfig()

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	s.logger = log

	location, err := dateutil.LoadLocation(cfg.Gamification.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Gamification.Timezone, err)
	}

	s.clock = dateutil.SystemClock()
	s.location = location
	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	s.ctx = xcontext.WithLogger(s.ctx, log)
	return nil
}

func (s *srv) syncLogger() {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.ConnectionString())
	case "mysql":
		dialector = mysql.Open(cfg.ConnectionString())
	default:
		panic(fmt.Sprintf("unsupported database driver %s", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.streakRepo = repository.NewStreakRepository()
	s.streakEventRepo = repository.NewStreakEventRepository()
	s.badgeRepo = repository.NewBadgeRepository()
	s.userBadgeRepo = repository.NewUserBadgeRepository()
	s.cellRepo = repository.NewCellRepository()
	s.chatMessageRepo = repository.NewChatMessageRepository()
	s.verseRepo = repository.NewVerseRepository()
	s.postRepo = repository.NewPostRepository()
	s.courseRepo = repository.NewCourseRepository()
	s.friendshipRepo = repository.NewFriendshipRepository()
	s.notificationRepo = repository.NewNotificationRepository()
}

// loadNotifier must be called after loadRepos.
func (s *srv) loadNotifier() {
	cfg := xcontext.Configs(s.ctx)
	deliverer := notification.NewDeliverer(s.notificationRepo)

	switch cfg.Notification.Mode {
	case "kafka":
		publisher, err := kafka.NewPublisher("api", []string{cfg.Kafka.Addr})
		if err != nil {
			panic(err)
		}

		s.stoppers = append(s.stoppers, func(ctx context.Context) {
			if err := publisher.Stop(ctx); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot stop kafka publisher: %v", err)
			}
		})
		s.notifier = notification.NewQueueNotifier(publisher, cfg.Kafka.NotificationTopic)

	default:
		dispatcher := notification.NewDispatcher(
			deliverer, cfg.Notification.Workers, cfg.Notification.QueueSize)
		dispatcher.Start(s.ctx)
		s.stoppers = append(s.stoppers, func(context.Context) { dispatcher.Stop() })
		s.notifier = dispatcher
	}
}

func (s *srv) loadBadgeManager() {
	s.badgeManager = badge.NewManager(
		s.badgeRepo,
		s.userBadgeRepo,
		s.notifier,
		badge.NewVersesSavedCounter(s.verseRepo),
		badge.NewContentPostedCounter(s.postRepo),
		badge.NewCellsJoinedCounter(s.cellRepo),
		badge.NewCoursesCompletedCounter(s.courseRepo),
		badge.NewFriendsCounter(s.friendshipRepo),
		badge.NewStreakDaysCounter(s.streakRepo),
		badge.NewTotalPointsCounter(s.streakRepo),
		badge.NewFirstEventCounter(s.streakEventRepo),
	)
}

func (s *srv) loadEngine() {
	s.streakEngine = streak.NewEngine(
		s.streakRepo,
		s.streakEventRepo,
		s.badgeManager,
		s.redisClient,
		s.clock,
		s.location,
	)
	s.leaderboard = statistic.New(s.streakRepo, s.redisClient)
	s.hub = engagement.NewHub()
}

func (s *srv) loadDomains() {
	s.gamificationDomain = domain.NewGamificationDomain(s.userRepo, s.streakEngine, s.leaderboard)
	s.badgeDomain = domain.NewBadgeDomain(s.badgeRepo, s.userBadgeRepo, s.badgeManager)
	s.contentDomain = domain.NewContentDomain(
		s.verseRepo, s.postRepo, s.courseRepo, s.streakEngine, s.clock)
	s.chatDomain = domain.NewChatDomain(
		s.cellRepo, s.chatMessageRepo, s.userRepo, s.streakEngine, s.notifier, s.hub, s.clock)
	s.engagementDomain = domain.NewEngagementDomain(s.cellRepo, s.chatMessageRepo, s.hub, s.clock)
	s.notificationDomain = domain.NewNotificationDomain(s.notificationRepo)
}

func (s *srv) stop() {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	for i := len(s.stoppers) - 1; i >= 0; i-- {
		s.stoppers[i](ctx)
	}
}
