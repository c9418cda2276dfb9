package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/pubsub"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func listNotifications(t *testing.T, ctx context.Context, userID string) []entity.Notification {
	result, err := repository.NewNotificationRepository().GetList(ctx, userID, 0, 100)
	require.NoError(t, err)
	return result
}

func TestDeliverer_Deliver(t *testing.T) {
	ctx := testutil.MockContext()
	deliverer := notification.NewDeliverer(repository.NewNotificationRepository())

	err := deliverer.Deliver(ctx, notification.Message{
		UserID:   "user1",
		Title:    "New badge <script>alert(1)</script>unlocked",
		Body:     "You earned the <b>First Step</b> badge.",
		LinkPath: "/badges",
	})
	require.NoError(t, err)

	notifications := listNotifications(t, ctx, "user1")
	require.Len(t, notifications, 1)
	require.Equal(t, "New badge unlocked", notifications[0].Title)
	require.Equal(t, "You earned the First Step badge.", notifications[0].Body)
	require.Equal(t, "/badges", notifications[0].LinkPath)
	require.False(t, notifications[0].IsRead)

	err = deliverer.Deliver(ctx, notification.Message{Title: "nobody"})
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := notification.NewDispatcher(
		notification.NewDeliverer(repository.NewNotificationRepository()), 2, 16)
	dispatcher.Start(ctx)

	for i := 0; i < 5; i++ {
		dispatcher.Notify(ctx, notification.Message{UserID: "user1", Title: fmt.Sprintf("title %d", i)})
	}

	// Stop waits for the queued messages.
	dispatcher.Stop()
	dispatcher.Stop()

	require.Len(t, listNotifications(t, ctx, "user1"), 5)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := notification.NewDispatcher(
		notification.NewDeliverer(repository.NewNotificationRepository()), 1, 2)

	// Workers are not started yet, so only two messages fit in the queue.
	for i := 0; i < 4; i++ {
		dispatcher.Notify(ctx, notification.Message{UserID: "user1", Title: "hi"})
	}

	dispatcher.Start(ctx)
	dispatcher.Stop()

	require.Len(t, listNotifications(t, ctx, "user1"), 2)
}

func TestDispatcher_NotifyAfterStop(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := notification.NewDispatcher(
		notification.NewDeliverer(repository.NewNotificationRepository()), 1, 4)
	dispatcher.Start(ctx)
	dispatcher.Notify(ctx, notification.Message{UserID: "user1", Title: "before"})
	dispatcher.Stop()

	require.NotPanics(t, func() {
		dispatcher.Notify(ctx, notification.Message{UserID: "user1", Title: "after"})
	})

	notifications := listNotifications(t, ctx, "user1")
	require.Len(t, notifications, 1)
	require.Equal(t, "before", notifications[0].Title)
}

func TestDispatcher_ConcurrentNotifyAndStop(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := notification.NewDispatcher(
		notification.NewDeliverer(repository.NewNotificationRepository()), 2, 64)
	dispatcher.Start(ctx)

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				dispatcher.Notify(ctx, notification.Message{UserID: "user1", Title: "hi"})
			}
		}()
	}

	dispatcher.Stop()
	wg.Wait()
}

func TestQueueNotifier(t *testing.T) {
	ctx := testutil.MockContext()

	var packs []*pubsub.Pack
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			require.Equal(t, "notification", topic)
			packs = append(packs, pack)
			return nil
		},
	}

	notifier := notification.NewQueueNotifier(publisher, "notification")
	msg := notification.Message{UserID: "user2", Title: "user1 in #general", Body: "Amen", LinkPath: "/cells/cell1"}
	notifier.Notify(ctx, msg)

	require.Len(t, packs, 1)
	require.Equal(t, []byte("user2"), packs[0].Key)

	decoded := notification.Message{}
	require.NoError(t, json.Unmarshal(packs[0].Msg, &decoded))
	require.Equal(t, msg, decoded)

	// The consumer side writes the row.
	handler := notification.SubscribeHandler(notification.NewDeliverer(repository.NewNotificationRepository()))
	handler(ctx, packs[0], time.Now())
	handler(ctx, &pubsub.Pack{Msg: []byte("not json")}, time.Now())

	notifications := listNotifications(t, ctx, "user2")
	require.Len(t, notifications, 1)
	require.Equal(t, "Amen", notifications[0].Body)
}

func TestQueueNotifier_PublishFailureIsSwallowed(t *testing.T) {
	ctx := testutil.MockContext()
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			return errors.New("broker down")
		},
	}

	notification.NewQueueNotifier(publisher, "notification").
		Notify(ctx, notification.Message{UserID: "user1", Title: "hi"})
}

type blockingNotifier struct {
	mutex   sync.Mutex
	active  int
	maxSeen int
	users   []string
	release chan struct{}
}

func (n *blockingNotifier) Notify(ctx context.Context, msg notification.Message) {
	n.mutex.Lock()
	n.active++
	if n.active > n.maxSeen {
		n.maxSeen = n.active
	}
	n.users = append(n.users, msg.UserID)
	n.mutex.Unlock()

	<-n.release

	n.mutex.Lock()
	n.active--
	n.mutex.Unlock()
}

func TestNotifyAll(t *testing.T) {
	ctx := xcontext.WithRequestUserID(testutil.MockContext(), "user1")
	notifier := &blockingNotifier{release: make(chan struct{})}
	close(notifier.release)

	userIDs := []string{"a", "b", "c", "d", "e"}
	notification.NotifyAll(ctx, notifier, userIDs, 2, func(userID string) notification.Message {
		return notification.Message{UserID: userID, Title: "hello " + userID}
	})

	require.ElementsMatch(t, userIDs, notifier.users)
	require.LessOrEqual(t, notifier.maxSeen, 2)
}
