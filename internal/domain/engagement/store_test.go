package engagement

import (
	"testing"
	"time"

	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *dateutil.FixedClock) {
	clock := &dateutil.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewStore(DefaultHighlightThreshold, DefaultNotificationWindow, clock), clock
}

func TestStore_UnreadAndMessageSent(t *testing.T) {
	store, _ := newTestStore()
	store.Seed(map[string]int{"channel1": 3, "channel2": 1})

	require.Equal(t, 15, store.Score("channel1"))
	require.Equal(t, MessageSent, store.Apply("channel1", MessageSent))
	require.Equal(t, 3*5+8, store.Score("channel1"))
	require.True(t, store.IsHighlighted("channel1"))

	require.Equal(t, MessageSent, store.Apply("channel2", MessageSent))
	require.Equal(t, 13, store.Score("channel2"))
	require.False(t, store.IsHighlighted("channel2"))
}

func TestStore_Threshold(t *testing.T) {
	store, _ := newTestStore()
	store.Seed(map[string]int{"a": 2, "b": 3})

	// 10 is below the threshold, 15 reaches it.
	require.False(t, store.IsHighlighted("a"))
	require.True(t, store.IsHighlighted("b"))

	custom := NewStore(30, 0, nil)
	custom.Seed(map[string]int{"b": 3})
	require.False(t, custom.IsHighlighted("b"))
}

func TestStore_UnknownChannelAndKind(t *testing.T) {
	store, _ := newTestStore()

	require.Equal(t, 0, store.Score("missing"))
	require.False(t, store.IsHighlighted("missing"))

	require.Equal(t, Kind(""), store.Apply("channel1", "SHAKE"))
	require.Equal(t, 0, store.Score("channel1"))
}

func TestStore_NotificationClick(t *testing.T) {
	store, _ := newTestStore()

	// A click without a notification for this channel is not confirmed.
	require.Equal(t, Kind(""), store.Apply("channel1", NotificationClick))
	require.Equal(t, 0, store.Score("channel1"))

	store.Apply("channel1", NotificationArrival)
	require.Equal(t, NotificationClick, store.Apply("channel1", NotificationClick))
	require.Equal(t, 10, store.Score("channel1"))

	// The notification was consumed by the click.
	require.Equal(t, Kind(""), store.Apply("channel1", NotificationClick))
	require.Equal(t, 10, store.Score("channel1"))
}

func TestStore_ViewWindow(t *testing.T) {
	store, clock := newTestStore()

	require.Equal(t, ViewWithoutNotification, store.Apply("channel1", View))
	require.Equal(t, 1, store.Score("channel1"))

	store.Apply("channel1", NotificationArrival)
	clock.T = clock.T.Add(4 * time.Minute)
	require.Equal(t, ViewAfterNotification, store.Apply("channel1", View))
	require.Equal(t, 4, store.Score("channel1"))

	// Outside of the window.
	store.Apply("channel1", NotificationArrival)
	clock.T = clock.T.Add(6 * time.Minute)
	require.Equal(t, ViewWithoutNotification, store.Apply("channel1", ViewAfterNotification))
	require.Equal(t, 5, store.Score("channel1"))

	// A notification on another channel does not count.
	store.Apply("channel2", NotificationArrival)
	require.Equal(t, ViewWithoutNotification, store.Apply("channel1", View))
}

func TestStore_Snapshot(t *testing.T) {
	store, _ := newTestStore()
	store.Seed(map[string]int{"a": 1, "b": 4, "c": 1})
	store.AddUnread("a", 2)
	store.AddUnread("a", 0)

	require.Equal(t, []ChannelScore{
		{ChannelID: "b", Score: 20, Highlighted: true},
		{ChannelID: "a", Score: 15, Highlighted: true},
		{ChannelID: "c", Score: 5, Highlighted: false},
	}, store.Snapshot())
}

func TestStore_Isolated(t *testing.T) {
	s1, _ := newTestStore()
	s2, _ := newTestStore()

	s1.Apply("channel1", MessageSent)
	require.Equal(t, 8, s1.Score("channel1"))
	require.Equal(t, 0, s2.Score("channel1"))
}
