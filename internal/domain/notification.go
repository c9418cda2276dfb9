package domain

import (
	"context"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type NotificationDomain interface {
	GetNotifications(context.Context, *model.GetNotificationsRequest) (*model.GetNotificationsResponse, error)
	ReadNotifications(context.Context, *model.ReadNotificationsRequest) (*model.ReadNotificationsResponse, error)
}

type notificationDomain struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationDomain(notificationRepo repository.NotificationRepository) *notificationDomain {
	return &notificationDomain{notificationRepo: notificationRepo}
}

func (d *notificationDomain) GetNotifications(
	ctx context.Context, req *model.GetNotificationsRequest,
) (*model.GetNotificationsResponse, error) {
	limit, err := common.NormalizeLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	requestUserID := xcontext.RequestUserID(ctx)
	notifications, err := d.notificationRepo.GetList(ctx, requestUserID, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	unread, err := d.notificationRepo.CountUnread(ctx, requestUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count unread notifications: %v", err)
		return nil, errorx.Unknown
	}

	clientNotifications := []model.Notification{}
	for i := range notifications {
		clientNotifications = append(clientNotifications, convertNotification(&notifications[i]))
	}

	return &model.GetNotificationsResponse{
		Notifications: clientNotifications,
		Unread:        unread,
	}, nil
}

func (d *notificationDomain) ReadNotifications(
	ctx context.Context, req *model.ReadNotificationsRequest,
) (*model.ReadNotificationsResponse, error) {
	err := d.notificationRepo.MarkRead(ctx, xcontext.RequestUserID(ctx), req.IDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark notifications as read: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ReadNotificationsResponse{}, nil
}
