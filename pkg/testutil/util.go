package testutil

import (
	"context"
	"time"

	"github.com/koinonia-lab/backend/config"
	"github.com/koinonia-lab/backend/migration"
	"github.com/koinonia-lab/backend/pkg/logger"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     "secret",
				Expiration: time.Minute,
			},
		},
		Gamification: config.GamificationConfigs{
			Timezone:           "UTC",
			HighlightThreshold: 15,
			NotificationWindow: 5 * time.Minute,
			BadgeSweepInterval: time.Hour,
			BadgeSweepWorkers:  1,
			ReminderHour:       18,
		},
		Notification: config.NotificationConfigs{
			Mode:       "async",
			Workers:    1,
			QueueSize:  16,
			FanoutSize: 1,
		},
		RateLimit: config.RateLimitConfigs{PerMinute: 60},
	}
}

// MockContext returns a context carrying test configs, a nop logger and a
// fresh in-memory database with every table migrated.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection of an in-memory sqlite database sees its own database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
