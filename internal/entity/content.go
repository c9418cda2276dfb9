package entity

import (
	"database/sql"
	"time"
)

type SavedVerse struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Reference string `gorm:"not null"`
	Note      sql.NullString
	CreatedAt time.Time
}

type PostKind string

const (
	PostImage = PostKind("image")
	PostVideo = PostKind("video")
)

type Post struct {
	Base
	UserID   string   `gorm:"index;not null"`
	Kind     PostKind `gorm:"not null"`
	Caption  string
	MediaURL string
}

type CourseProgress struct {
	UserID      string `gorm:"primaryKey"`
	CourseID    string `gorm:"primaryKey"`
	Completed   bool
	CompletedAt sql.NullTime
	UpdatedAt   time.Time
}
