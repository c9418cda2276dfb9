package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type NotificationRepository interface {
	Create(ctx context.Context, data *entity.Notification) error
	GetList(ctx context.Context, userID string, offset, limit int) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
}

type notificationRepository struct{}

func NewNotificationRepository() *notificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, data *entity.Notification) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *notificationRepository) GetList(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.Notification, error) {
	result := []entity.Notification{}
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("user_id=? AND is_read=?", userID, false).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// MarkRead marks the given notifications as read. An empty ids marks every
// notification of the user.
func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) error {
	tx := xcontext.DB(ctx).Model(&entity.Notification{}).Where("user_id=?", userID)
	if len(ids) > 0 {
		tx = tx.Where("id IN (?)", ids)
	}

	return tx.Update("is_read", true).Error
}
