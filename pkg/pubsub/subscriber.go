package pubsub

import (
	"context"
	"time"
)

type SubscribeHandler func(ctx context.Context, pack *Pack, t time.Time)

type Subscriber interface {
	// Subscribe starts consuming in background and returns once the consumer
	// is ready.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
