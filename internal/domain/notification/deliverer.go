package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/microcosm-cc/bluemonday"
)

// Deliverer writes the in-app notification row of a message.
type Deliverer struct {
	notificationRepo repository.NotificationRepository
	policy           *bluemonday.Policy
}

func NewDeliverer(notificationRepo repository.NotificationRepository) *Deliverer {
	return &Deliverer{
		notificationRepo: notificationRepo,
		policy:           bluemonday.StrictPolicy(),
	}
}

func (d *Deliverer) Deliver(ctx context.Context, msg Message) error {
	if msg.UserID == "" {
		return errorx.New(errorx.BadRequest, "Notification without recipient")
	}

	notification := &entity.Notification{
		ID:        uuid.NewString(),
		UserID:    msg.UserID,
		Title:     d.policy.Sanitize(msg.Title),
		Body:      d.policy.Sanitize(msg.Body),
		LinkPath:  d.policy.Sanitize(msg.LinkPath),
		CreatedAt: time.Now(),
	}

	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create notification for user %s: %v", msg.UserID, err)
		common.PromCounters[common.NotificationTotal].WithLabelValues("failed").Inc()
		return errorx.Unknown
	}

	common.PromCounters[common.NotificationTotal].WithLabelValues("delivered").Inc()
	return nil
}
