package entity

import "time"

type Cell struct {
	Base
	Name        string `gorm:"not null"`
	Description string
	CreatedBy   string
}

type CellMember struct {
	CellID    string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

type Channel struct {
	Base
	CellID string `gorm:"index;not null"`
	Name   string `gorm:"not null"`
}

type ChannelMessage struct {
	ID        string    `gorm:"primaryKey"`
	ChannelID string    `gorm:"index:idx_channel_created;not null"`
	UserID    string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_channel_created"`
}

// ChannelReadState stores when a member last opened a channel. Messages
// created after LastReadAt are unread.
type ChannelReadState struct {
	ChannelID  string `gorm:"primaryKey"`
	UserID     string `gorm:"primaryKey"`
	LastReadAt time.Time
}
