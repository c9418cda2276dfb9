package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/koinonia-lab/backend/config"
)

func (s *srv) loadConfig() config.Configs {
	// A missing .env file is fine, the environment is used as is.
	_ = godotenv.Load()

	return config.Configs{
		Env: getEnv("ENV", "local"),
		Log: config.LogConfigs{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100")),
			MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "3")),
			MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "7")),
			Compress:   parseBool(getEnv("LOG_COMPRESS", "false")),
		},
		Database: config.DatabaseConfigs{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Database: getEnv("DB_NAME", "koinonia"),
			User:     getEnv("DB_USER", "mysql"),
			Password: getEnv("DB_PASSWORD", "mysql"),
			LogLevel: getEnv("DB_LOG_LEVEL", "error"),
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{
				Host: getEnv("API_HOST", ""),
				Port: getEnv("API_PORT", "8080"),
				Cert: getEnv("API_CERT", ""),
				Key:  getEnv("API_KEY", ""),
			},
			MaxLimit:     parseInt(getEnv("API_MAX_LIMIT", "50")),
			DefaultLimit: parseInt(getEnv("API_DEFAULT_LIMIT", "10")),
			AllowOrigins: strings.Split(getEnv("API_ALLOW_ORIGINS", "http://localhost:3000"), ","),
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     getEnv("ACCESS_TOKEN_SECRET", "access_token_secret"),
				Expiration: parseDuration(getEnv("ACCESS_TOKEN_DURATION", "5m")),
			},
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr:              getEnv("KAFKA_ADDRESS", "localhost:9092"),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notification"),
			GroupID:           getEnv("KAFKA_GROUP_ID", "notifier"),
		},
		Gamification: config.GamificationConfigs{
			Timezone:           getEnv("GAMIFICATION_TIMEZONE", "UTC"),
			HighlightThreshold: parseInt(getEnv("ENGAGEMENT_HIGHLIGHT_THRESHOLD", "15")),
			NotificationWindow: parseDuration(getEnv("ENGAGEMENT_NOTIFICATION_WINDOW", "5m")),
			BadgeCatalogPath:   getEnv("BADGE_CATALOG_PATH", ""),
			BadgeSweepInterval: parseDuration(getEnv("BADGE_SWEEP_INTERVAL", "1h")),
			BadgeSweepWorkers:  parseInt(getEnv("BADGE_SWEEP_WORKERS", "8")),
			ReminderHour:       parseInt(getEnv("STREAK_REMINDER_HOUR", "18")),
		},
		Notification: config.NotificationConfigs{
			Mode:       getEnv("NOTIFICATION_MODE", "async"),
			Workers:    parseInt(getEnv("NOTIFICATION_WORKERS", "4")),
			QueueSize:  parseInt(getEnv("NOTIFICATION_QUEUE_SIZE", "1024")),
			FanoutSize: parseInt(getEnv("NOTIFICATION_FANOUT_SIZE", "8")),
		},
		RateLimit: config.RateLimitConfigs{
			PerMinute: parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "120")),
		},
	}
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return def
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}

	return duration
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}

	return i
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		panic(err)
	}

	return b
}
