package entity

import "time"

type FriendshipStatus string

const (
	FriendshipPending  = FriendshipStatus("pending")
	FriendshipAccepted = FriendshipStatus("accepted")
)

type Friendship struct {
	RequesterID string           `gorm:"primaryKey"`
	AddresseeID string           `gorm:"primaryKey;index"`
	Status      FriendshipStatus `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
