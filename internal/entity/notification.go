package entity

import "time"

type Notification struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Body      string
	LinkPath  string
	IsRead    bool
	CreatedAt time.Time `gorm:"index"`
}
