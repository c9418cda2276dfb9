package engagement

import (
	"errors"

	"github.com/puzpuzpuz/xsync"
)

// Session is a live engagement session of one user in one cell.
type Session struct {
	ID     string
	CellID string
	UserID string
	Store  *Store

	// Changed receives a signal when the store was modified from outside the
	// session, so the session can push a new snapshot.
	Changed chan struct{}
}

func NewSession(id, cellID, userID string, store *Store) *Session {
	return &Session{
		ID:      id,
		CellID:  cellID,
		UserID:  userID,
		Store:   store,
		Changed: make(chan struct{}, 1),
	}
}

func (s *Session) signal() {
	select {
	case s.Changed <- struct{}{}:
	default:
		// A snapshot is already pending.
	}
}

// Hub tracks live sessions so new messages can reach their stores.
type Hub struct {
	sessions *xsync.MapOf[string, *Session]
}

func NewHub() *Hub {
	return &Hub{sessions: xsync.NewMapOf[*Session]()}
}

func (h *Hub) Register(session *Session) error {
	if _, existed := h.sessions.LoadOrStore(session.ID, session); existed {
		return errors.New("the session has already registered")
	}

	return nil
}

func (h *Hub) Unregister(sessionID string) {
	h.sessions.Delete(sessionID)
}

func (h *Hub) Size() int {
	return h.sessions.Size()
}

// MessageCreated credits a sent message on the channel to the author's live
// sessions of the cell, and adds one unread message and a notification
// arrival to every other member's. It returns the number of touched sessions.
func (h *Hub) MessageCreated(cellID, channelID, authorID string) int {
	touched := 0
	h.sessions.Range(func(_ string, session *Session) bool {
		if session.CellID != cellID {
			return true
		}

		if session.UserID == authorID {
			session.Store.Apply(channelID, MessageSent)
		} else {
			session.Store.AddUnread(channelID, 1)
			session.Store.Apply(channelID, NotificationArrival)
		}
		session.signal()
		touched++
		return true
	})

	return touched
}
