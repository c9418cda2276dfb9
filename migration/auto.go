package migration

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

// AutoMigrate creates or updates every table to the latest version.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.StreakRecord{},
		&entity.StreakEvent{},
		&entity.Badge{},
		&entity.UserBadge{},
		&entity.Cell{},
		&entity.CellMember{},
		&entity.Channel{},
		&entity.ChannelMessage{},
		&entity.ChannelReadState{},
		&entity.SavedVerse{},
		&entity.Post{},
		&entity.CourseProgress{},
		&entity.Friendship{},
		&entity.Notification{},
	)
}
