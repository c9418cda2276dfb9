package domain

import (
	"testing"

	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestChatDomain(
	eventLogger EventLogger, notifier *testutil.MockNotifier, hub *engagement.Hub,
) *chatDomain {
	return NewChatDomain(
		repository.NewCellRepository(),
		repository.NewChatMessageRepository(),
		repository.NewUserRepository(),
		eventLogger,
		notifier,
		hub,
		newTestClock(),
	)
}

func Test_chatDomain_SendMessage(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	notifier := &testutil.MockNotifier{}
	hub := engagement.NewHub()
	readerSession := engagement.NewSession("s1", testutil.Cell1.ID, testutil.User2.ID,
		engagement.NewStore(0, 0, newTestClock()))
	require.NoError(t, hub.Register(readerSession))

	domain := newTestChatDomain(newTestEngine(newTestClock(), nil), notifier, hub)
	resp, err := domain.SendMessage(ctx, &model.SendMessageRequest{
		ChannelID: testutil.Channel1.ID,
		Content:   "Let us pray for Anna tonight",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	record := getStreak(t, ctx, testutil.User1.ID)
	require.Equal(t, int64(5), record.TotalPoints)

	messages := notifier.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, testutil.User2.ID, messages[0].UserID)
	require.Equal(t, "user1 in #general", messages[0].Title)
	require.Equal(t, "Let us pray for Anna tonight", messages[0].Body)
	require.Equal(t, "/cells/cell1/channels/channel1", messages[0].LinkPath)

	require.Equal(t, engagement.UnreadWeight, readerSession.Store.Score(testutil.Channel1.ID))

	// The author has read everything, the other member has one unread message.
	chatMessageRepo := repository.NewChatMessageRepository()
	unread, err := chatMessageRepo.CountUnread(ctx, testutil.Cell1.ID, testutil.User2.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []repository.UnreadCount{
		{ChannelID: testutil.Channel1.ID, Unread: 1},
		{ChannelID: testutil.Channel2.ID, Unread: 0},
	}, unread)

	unread, err = chatMessageRepo.CountUnread(ctx, testutil.Cell1.ID, testutil.User1.ID)
	require.NoError(t, err)
	for _, u := range unread {
		require.Zero(t, u.Unread)
	}
}

func Test_chatDomain_SendMessage_Errors(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User3.ID)
	testutil.CreateFixtureDb(ctx)

	notifier := &testutil.MockNotifier{}
	logger := &failingEventLogger{}
	domain := newTestChatDomain(logger, notifier, nil)

	_, err := domain.SendMessage(ctx, &model.SendMessageRequest{ChannelID: testutil.Channel1.ID, Content: "hi"})
	require.ErrorIs(t, err, errorx.New(errorx.PermissionDenied, ""))

	_, err = domain.SendMessage(ctx, &model.SendMessageRequest{ChannelID: "unknown", Content: "hi"})
	require.ErrorIs(t, err, errorx.New(errorx.NotFound, ""))

	_, err = domain.SendMessage(ctx, &model.SendMessageRequest{ChannelID: testutil.Channel1.ID, Content: "<script></script>"})
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))

	require.Equal(t, 0, logger.calls)
	require.Empty(t, notifier.Messages())
}

func Test_chatDomain_SendMessage_AccrualFailure(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)

	notifier := &testutil.MockNotifier{}
	logger := &failingEventLogger{}
	domain := newTestChatDomain(logger, notifier, nil)

	_, err := domain.SendMessage(ctx, &model.SendMessageRequest{ChannelID: testutil.Channel2.ID, Content: "Amen"})
	require.NoError(t, err)
	require.Equal(t, 1, logger.calls)
	require.Len(t, notifier.Messages(), 1)
	require.Equal(t, testutil.User1.ID, notifier.Messages()[0].UserID)
}

func Test_preview(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "a"
	}

	require.Equal(t, "short", preview("short"))
	require.Len(t, preview(long), previewLength+3)
}
