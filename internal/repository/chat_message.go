package repository

import (
	"context"
	"time"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UnreadCount struct {
	ChannelID string
	Unread    int
}

type ChatMessageRepository interface {
	Create(ctx context.Context, data *entity.ChannelMessage) error

	// CountUnread returns, for every channel of the cell, the number of
	// messages written by other users after the user last read the channel.
	CountUnread(ctx context.Context, cellID, userID string) ([]UnreadCount, error)
	MarkRead(ctx context.Context, channelID, userID string, at time.Time) error
}

type chatMessageRepository struct{}

func NewChatMessageRepository() *chatMessageRepository {
	return &chatMessageRepository{}
}

func (r *chatMessageRepository) Create(ctx context.Context, data *entity.ChannelMessage) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *chatMessageRepository) CountUnread(ctx context.Context, cellID, userID string) ([]UnreadCount, error) {
	result := []UnreadCount{}
	err := xcontext.DB(ctx).Raw(`
		SELECT channels.id AS channel_id, COUNT(channel_messages.id) AS unread
		FROM channels
		LEFT JOIN channel_read_states
			ON channel_read_states.channel_id=channels.id AND channel_read_states.user_id=?
		LEFT JOIN channel_messages
			ON channel_messages.channel_id=channels.id AND channel_messages.user_id<>?
			AND (channel_read_states.last_read_at IS NULL OR channel_messages.created_at>channel_read_states.last_read_at)
		WHERE channels.cell_id=? AND channels.deleted_at IS NULL
		GROUP BY channels.id`, userID, userID, cellID).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *chatMessageRepository) MarkRead(ctx context.Context, channelID, userID string, at time.Time) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
		}).
		Create(&entity.ChannelReadState{ChannelID: channelID, UserID: userID, LastReadAt: at}).Error
}
