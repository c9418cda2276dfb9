package domain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/router"
	"github.com/koinonia-lab/backend/pkg/ws"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type EngagementDomain interface {
	GetChannelScores(context.Context, *model.GetChannelScoresRequest) (*model.GetChannelScoresResponse, error)
	ServeSession(ctx context.Context, w http.ResponseWriter, r *http.Request)
}

type engagementDomain struct {
	cellRepo        repository.CellRepository
	chatMessageRepo repository.ChatMessageRepository
	hub             *engagement.Hub
	clock           dateutil.Clock
	upgrader        websocket.Upgrader
}

func NewEngagementDomain(
	cellRepo repository.CellRepository,
	chatMessageRepo repository.ChatMessageRepository,
	hub *engagement.Hub,
	clock dateutil.Clock,
) *engagementDomain {
	return &engagementDomain{
		cellRepo:        cellRepo,
		chatMessageRepo: chatMessageRepo,
		hub:             hub,
		clock:           clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the CORS layer of the api server.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (d *engagementDomain) GetChannelScores(
	ctx context.Context, req *model.GetChannelScoresRequest,
) (*model.GetChannelScoresResponse, error) {
	store, names, err := d.newStore(ctx, req.CellID)
	if err != nil {
		return nil, err
	}

	return &model.GetChannelScoresResponse{
		Scores: convertChannelScores(store.Snapshot(), names),
	}, nil
}

// ServeSession upgrades the request to a websocket and keeps an engagement
// store alive until the client disconnects.
func (d *engagementDomain) ServeSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	cellID := r.URL.Query().Get("cell_id")
	store, names, err := d.newStore(ctx, cellID)
	if err != nil {
		router.WriteError(ctx, w, err)
		return
	}

	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot upgrade engagement session: %v", err)
		return
	}

	wsConn := ws.NewConn(conn)
	defer wsConn.Close()

	session := engagement.NewSession(uuid.NewString(), cellID, xcontext.RequestUserID(ctx), store)
	if err := d.hub.Register(session); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot register engagement session: %v", err)
		return
	}
	defer d.hub.Unregister(session.ID)

	if err := d.writeSnapshot(wsConn, store, names); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot write snapshot: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-session.Changed:
			if err := d.writeSnapshot(wsConn, store, names); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot write snapshot: %v", err)
				return
			}

		case msg, ok := <-wsConn.R:
			if !ok {
				return
			}

			var event model.EngagementEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				xcontext.Logger(ctx).Debugf("Invalid engagement event: %v", err)
				continue
			}

			if _, ok := names[event.ChannelID]; !ok {
				xcontext.Logger(ctx).Debugf("Channel %s is not in cell %s", event.ChannelID, cellID)
				continue
			}

			kind := engagement.Kind(event.Kind)
			if kind == engagement.MessageSent {
				// Credited by the hub when the message is stored.
				xcontext.Logger(ctx).Debugf("Ignore client %s event on channel %s", kind, event.ChannelID)
			} else if applied := store.Apply(event.ChannelID, kind); isViewKind(applied) {
				err := d.chatMessageRepo.MarkRead(ctx, event.ChannelID, session.UserID, d.clock.Now())
				if err != nil {
					xcontext.Logger(ctx).Warnf("Cannot mark channel %s as read: %v", event.ChannelID, err)
				}
			}

			if err := d.writeSnapshot(wsConn, store, names); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot write snapshot: %v", err)
				return
			}
		}
	}
}

// newStore builds a store seeded with the unread counts of the request user
// in every channel of the cell. It also returns the channel names.
func (d *engagementDomain) newStore(
	ctx context.Context, cellID string,
) (*engagement.Store, map[string]string, error) {
	if cellID == "" {
		return nil, nil, errorx.New(errorx.BadRequest, "Not allow an empty cell id")
	}

	requestUserID := xcontext.RequestUserID(ctx)
	if err := checkCellMember(ctx, d.cellRepo, cellID, requestUserID); err != nil {
		return nil, nil, err
	}

	channels, err := d.cellRepo.GetChannels(ctx, cellID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get channels of cell: %v", err)
		return nil, nil, errorx.Unknown
	}

	unreadCounts, err := d.chatMessageRepo.CountUnread(ctx, cellID, requestUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count unread messages: %v", err)
		return nil, nil, errorx.Unknown
	}

	names := map[string]string{}
	unread := map[string]int{}
	for _, c := range channels {
		names[c.ID] = c.Name
		unread[c.ID] = 0
	}

	for _, u := range unreadCounts {
		unread[u.ChannelID] = int(u.Unread)
	}

	cfg := xcontext.Configs(ctx).Gamification
	store := engagement.NewStore(cfg.HighlightThreshold, cfg.NotificationWindow, d.clock)
	store.Seed(unread)

	return store, names, nil
}

func (d *engagementDomain) writeSnapshot(
	conn *ws.Connection, store *engagement.Store, names map[string]string,
) error {
	return conn.Write(model.EngagementSnapshot{
		Scores: convertChannelScores(store.Snapshot(), names),
	})
}

func isViewKind(kind engagement.Kind) bool {
	switch kind {
	case engagement.NotificationClick, engagement.ViewAfterNotification, engagement.ViewWithoutNotification:
		return true
	}

	return false
}

func checkCellMember(ctx context.Context, cellRepo repository.CellRepository, cellID, userID string) error {
	if _, err := cellRepo.GetByID(ctx, cellID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found cell")
		}

		xcontext.Logger(ctx).Errorf("Cannot get cell: %v", err)
		return errorx.Unknown
	}

	isMember, err := cellRepo.IsMember(ctx, cellID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check cell membership: %v", err)
		return errorx.Unknown
	}

	if !isMember {
		return errorx.New(errorx.PermissionDenied, "Only members of the cell can do this action")
	}

	return nil
}
