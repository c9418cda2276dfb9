package entity

import (
	"time"

	"github.com/koinonia-lab/backend/pkg/dateutil"
)

type StreakEventType string

const (
	VerseSave         = StreakEventType("verse_save")
	VerseSaveWithNote = StreakEventType("verse_save_with_note")
	PostContent       = StreakEventType("post_content")
	CellMessage       = StreakEventType("cell_message")
	CourseComplete    = StreakEventType("course_complete")
)

// StreakRecord is the per-user activity counter. LongestStreak is always at
// least CurrentStreak and TotalPoints never decreases.
type StreakRecord struct {
	UserID         string `gorm:"primaryKey"`
	CurrentStreak  int    `gorm:"not null;default:0"`
	LongestStreak  int    `gorm:"not null;default:0"`
	TotalPoints    int64  `gorm:"not null;default:0"`
	LastActiveDate dateutil.Date
	Version        int64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (StreakRecord) TableName() string {
	return "user_streaks"
}

type StreakEvent struct {
	ID        string          `gorm:"primaryKey"`
	UserID    string          `gorm:"index;not null"`
	EventType StreakEventType `gorm:"not null"`
	Points    int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"index"`
}
