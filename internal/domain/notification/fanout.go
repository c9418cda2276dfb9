package notification

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// NotifyAll sends one message per user. A failure for one recipient never
// stops the others.
func NotifyAll(
	ctx context.Context,
	notifier Notifier,
	userIDs []string,
	limit int,
	build func(userID string) Message,
) {
	if limit <= 0 {
		limit = 1
	}

	var eg errgroup.Group
	eg.SetLimit(limit)
	for _, userID := range userIDs {
		userID := userID
		eg.Go(func() error {
			notifier.Notify(ctx, build(userID))
			return nil
		})
	}

	_ = eg.Wait()
}
