package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/pkg/pubsub"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

// QueueNotifier publishes messages on a message queue topic. The notifier
// command consumes the topic and delivers them.
type QueueNotifier struct {
	publisher pubsub.Publisher
	topic     string
}

func NewQueueNotifier(publisher pubsub.Publisher, topic string) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, topic: topic}
}

func (n *QueueNotifier) Notify(ctx context.Context, msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal notification: %v", err)
		return
	}

	err = n.publisher.Publish(ctx, n.topic, &pubsub.Pack{Key: []byte(msg.UserID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish notification to user %s: %v", msg.UserID, err)
		common.PromCounters[common.NotificationTotal].WithLabelValues("failed").Inc()
	}
}

// SubscribeHandler decodes messages published by QueueNotifier and delivers
// them.
func SubscribeHandler(deliverer *Deliverer) pubsub.SubscribeHandler {
	return func(ctx context.Context, pack *pubsub.Pack, t time.Time) {
		var msg Message
		if err := json.Unmarshal(pack.Msg, &msg); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unmarshal notification: %v", err)
			return
		}

		_ = deliverer.Deliver(ctx, msg)
	}
}
