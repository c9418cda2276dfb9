package domain

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/testutil"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_engagementDomain_GetChannelScores(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)

	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := xcontext.DB(ctx).Create(&entity.ChannelMessage{
			ID:        "m" + string(rune('a'+i)),
			ChannelID: testutil.Channel1.ID,
			UserID:    testutil.User1.ID,
			Content:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error
		require.NoError(t, err)
	}

	domain := NewEngagementDomain(
		repository.NewCellRepository(),
		repository.NewChatMessageRepository(),
		engagement.NewHub(),
		newTestClock(),
	)

	resp, err := domain.GetChannelScores(ctx, &model.GetChannelScoresRequest{CellID: testutil.Cell1.ID})
	require.NoError(t, err)
	require.Equal(t, []model.ChannelScore{
		{ChannelID: "channel1", ChannelName: "general", Score: 15, Highlighted: true},
		{ChannelID: "channel2", ChannelName: "prayer", Score: 0, Highlighted: false},
	}, resp.Scores)

	// The author has no unread messages.
	resp, err = domain.GetChannelScores(
		xcontext.WithRequestUserID(ctx, testutil.User1.ID),
		&model.GetChannelScoresRequest{CellID: testutil.Cell1.ID})
	require.NoError(t, err)
	require.Zero(t, resp.Scores[0].Score)

	_, err = domain.GetChannelScores(
		xcontext.WithRequestUserID(ctx, testutil.User3.ID),
		&model.GetChannelScoresRequest{CellID: testutil.Cell1.ID})
	require.ErrorIs(t, err, errorx.New(errorx.PermissionDenied, ""))

	_, err = domain.GetChannelScores(ctx, &model.GetChannelScoresRequest{CellID: "unknown"})
	require.ErrorIs(t, err, errorx.New(errorx.NotFound, ""))
}

func Test_engagementDomain_ServeSession(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)

	hub := engagement.NewHub()
	clock := newTestClock()
	domain := NewEngagementDomain(
		repository.NewCellRepository(),
		repository.NewChatMessageRepository(),
		hub,
		clock,
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain.ServeSession(ctx, w, r)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?cell_id=" + testutil.Cell1.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readSnapshot := func() model.EngagementSnapshot {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		snapshot := model.EngagementSnapshot{}
		require.NoError(t, conn.ReadJSON(&snapshot))
		return snapshot
	}

	snapshot := readSnapshot()
	require.Len(t, snapshot.Scores, 2)
	require.Zero(t, snapshot.Scores[0].Score)

	// Sent messages are credited when stored, never from client frames.
	require.NoError(t, conn.WriteJSON(model.EngagementEvent{ChannelID: "channel2", Kind: "MESSAGE_SENT"}))
	snapshot = readSnapshot()
	require.Zero(t, snapshot.Scores[0].Score)
	require.Zero(t, snapshot.Scores[1].Score)

	require.Eventually(t, func() bool { return hub.Size() == 1 }, 5*time.Second, 10*time.Millisecond)
	hub.MessageCreated(testutil.Cell1.ID, "channel2", testutil.User2.ID)
	snapshot = readSnapshot()
	require.Equal(t, model.ChannelScore{ChannelID: "channel2", ChannelName: "prayer", Score: 8}, snapshot.Scores[0])

	// Unknown channels and kinds are ignored but still answered.
	require.NoError(t, conn.WriteJSON(model.EngagementEvent{ChannelID: "channel2", Kind: "SHAKE"}))
	snapshot = readSnapshot()
	require.Equal(t, 8, snapshot.Scores[0].Score)

	// A message of another member reaches the live session.
	hub.MessageCreated(testutil.Cell1.ID, "channel1", testutil.User1.ID)
	snapshot = readSnapshot()
	require.Equal(t, model.ChannelScore{ChannelID: "channel2", ChannelName: "prayer", Score: 8}, snapshot.Scores[0])
	require.Equal(t, model.ChannelScore{ChannelID: "channel1", ChannelName: "general", Score: 5}, snapshot.Scores[1])

	require.NoError(t, conn.WriteJSON(model.EngagementEvent{ChannelID: "channel1", Kind: "VIEW"}))
	snapshot = readSnapshot()
	require.Equal(t, model.ChannelScore{ChannelID: "channel1", ChannelName: "general", Score: 8}, snapshot.Scores[0])

	conn.Close()
	require.Eventually(t, func() bool { return hub.Size() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func Test_engagementDomain_ServeSession_NotMember(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User3.ID)
	testutil.CreateFixtureDb(ctx)

	domain := NewEngagementDomain(
		repository.NewCellRepository(),
		repository.NewChatMessageRepository(),
		engagement.NewHub(),
		newTestClock(),
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain.ServeSession(ctx, w, r)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?cell_id=" + testutil.Cell1.ID
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
