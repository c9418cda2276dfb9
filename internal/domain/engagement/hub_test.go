package engagement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHub_MessageCreated(t *testing.T) {
	hub := NewHub()

	author := NewSession("s1", "cell1", "user1", NewStore(0, 0, nil))
	reader := NewSession("s2", "cell1", "user2", NewStore(0, 0, nil))
	outsider := NewSession("s3", "cell2", "user3", NewStore(0, 0, nil))

	require.NoError(t, hub.Register(author))
	require.NoError(t, hub.Register(reader))
	require.NoError(t, hub.Register(outsider))
	require.Error(t, hub.Register(reader))
	require.Equal(t, 3, hub.Size())

	touched := hub.MessageCreated("cell1", "channel1", "user1")
	require.Equal(t, 2, touched)

	require.Equal(t, Weight(MessageSent), author.Store.Score("channel1"))
	require.Equal(t, UnreadWeight, reader.Store.Score("channel1"))
	require.Equal(t, 0, outsider.Store.Score("channel1"))

	for _, session := range []*Session{author, reader} {
		select {
		case <-session.Changed:
		default:
			t.Fatalf("session %s was not signaled", session.ID)
		}
	}
	require.Len(t, outsider.Changed, 0)

	// The arrival makes a following view count as a view after notification.
	require.Equal(t, ViewAfterNotification, reader.Store.Apply("channel1", View))

	hub.Unregister("s2")
	require.Equal(t, 2, hub.Size())
	require.Equal(t, 1, hub.MessageCreated("cell1", "channel1", "user1"))
	require.Equal(t, 2*Weight(MessageSent), author.Store.Score("channel1"))
}

func TestHub_SignalDoesNotBlock(t *testing.T) {
	hub := NewHub()
	reader := NewSession("s1", "cell1", "user2", NewStore(0, 0, nil))
	require.NoError(t, hub.Register(reader))

	for i := 0; i < 10; i++ {
		hub.MessageCreated("cell1", "channel1", "user1")
	}

	require.Equal(t, 10*UnreadWeight, reader.Store.Score("channel1"))
	require.Len(t, reader.Changed, 1)
}
