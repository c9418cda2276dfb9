package entity

import "time"

type UserBadge struct {
	UserID      string `gorm:"primaryKey"`
	BadgeID     string `gorm:"primaryKey"`
	AwardedAt   time.Time
	WasNotified bool
}
