package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Log          LogConfigs
	Database     DatabaseConfigs
	ApiServer    APIServerConfigs
	Auth         AuthConfigs
	Redis        RedisConfigs
	Kafka        KafkaConfigs
	Gamification GamificationConfigs
	Notification NotificationConfigs
	RateLimit    RateLimitConfigs
}

type LogConfigs struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type DatabaseConfigs struct {
	// Driver is either mysql or postgres.
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host,
			d.Port,
			d.User,
			d.Password,
			d.Database,
		)

	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int
	DefaultLimit int
	AllowOrigins []string
}

type AuthConfigs struct {
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr              string
	NotificationTopic string
	GroupID           string
}

type GamificationConfigs struct {
	// Timezone is the single reference location used to decide what "today"
	// is for every user.
	Timezone string

	// HighlightThreshold is the engagement score at which a channel is
	// highlighted.
	HighlightThreshold int

	// NotificationWindow is how long a notification arrival keeps a following
	// view of the same channel counted as a view after notification.
	NotificationWindow time.Duration

	BadgeCatalogPath   string
	BadgeSweepInterval time.Duration
	BadgeSweepWorkers  int
	ReminderHour       int
}

type NotificationConfigs struct {
	// Mode is "async" for the in-process dispatcher or "kafka" to publish on
	// the notification topic.
	Mode       string
	Workers    int
	QueueSize  int
	FanoutSize int
}

type RateLimitConfigs struct {
	PerMinute int
}
