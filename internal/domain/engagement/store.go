package engagement

import (
	"sort"
	"sync"
	"time"

	"github.com/koinonia-lab/backend/pkg/dateutil"
)

type Kind string

const (
	NotificationClick       = Kind("NOTIFICATION_CLICK")
	ViewWithoutNotification = Kind("VIEW_WITHOUT_NOTIFICATION")
	ViewAfterNotification   = Kind("VIEW_AFTER_NOTIFICATION")
	MessageSent             = Kind("MESSAGE_SENT")

	// NotificationArrival is not scored. It marks that a notification about
	// the channel reached the session.
	NotificationArrival = Kind("NOTIFICATION_ARRIVAL")

	// View lets the session decide whether the view followed a notification.
	View = Kind("VIEW")
)

const (
	UnreadWeight              = 5
	DefaultHighlightThreshold = 15
	DefaultNotificationWindow = 5 * time.Minute
)

var weights = map[Kind]int{
	NotificationClick:       10,
	ViewWithoutNotification: 1,
	ViewAfterNotification:   3,
	MessageSent:             8,
}

// Weight returns the additive score of a kind, 0 for unknown kinds.
func Weight(kind Kind) int {
	return weights[kind]
}

type ChannelScore struct {
	ChannelID   string `json:"channel_id"`
	Score       int    `json:"score"`
	Highlighted bool   `json:"highlighted"`
}

// Store keeps the engagement scores of one session. Scores live as long as
// the store and are never persisted.
type Store struct {
	mutex     sync.Mutex
	scores    map[string]int
	arrivals  map[string]time.Time
	threshold int
	window    time.Duration
	clock     dateutil.Clock
}

func NewStore(threshold int, window time.Duration, clock dateutil.Clock) *Store {
	if threshold <= 0 {
		threshold = DefaultHighlightThreshold
	}

	if window <= 0 {
		window = DefaultNotificationWindow
	}

	if clock == nil {
		clock = dateutil.SystemClock()
	}

	return &Store{
		scores:    make(map[string]int),
		arrivals:  make(map[string]time.Time),
		threshold: threshold,
		window:    window,
		clock:     clock,
	}
}

// Seed sets the baseline score of every given channel from its unread count.
func (s *Store) Seed(unread map[string]int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for channelID, count := range unread {
		if count < 0 {
			count = 0
		}
		s.scores[channelID] = count * UnreadWeight
	}
}

// AddUnread raises the score of a channel for n new unread messages.
func (s *Store) AddUnread(channelID string, n int) {
	if n <= 0 {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.scores[channelID] += n * UnreadWeight
}

// Apply adds the weight of kind to the channel and returns the kind which was
// actually scored. It never fails: unknown kinds are ignored, a click without
// a pending notification is ignored and a view is scored as a view after
// notification only inside the notification window.
func (s *Store) Apply(channelID string, kind Kind) Kind {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.clock.Now()
	switch kind {
	case NotificationArrival:
		s.arrivals[channelID] = now
		return NotificationArrival

	case NotificationClick:
		if _, ok := s.arrivals[channelID]; !ok {
			return ""
		}
		delete(s.arrivals, channelID)

	case View, ViewWithoutNotification, ViewAfterNotification:
		kind = ViewWithoutNotification
		if arrivedAt, ok := s.arrivals[channelID]; ok {
			delete(s.arrivals, channelID)
			if now.Sub(arrivedAt) <= s.window {
				kind = ViewAfterNotification
			}
		}

	case MessageSent:

	default:
		return ""
	}

	s.scores[channelID] += weights[kind]
	return kind
}

func (s *Store) Score(channelID string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.scores[channelID]
}

func (s *Store) IsHighlighted(channelID string) bool {
	return s.Score(channelID) >= s.threshold
}

// Snapshot returns every known channel ordered by score, highest first.
func (s *Store) Snapshot() []ChannelScore {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := make([]ChannelScore, 0, len(s.scores))
	for channelID, score := range s.scores {
		result = append(result, ChannelScore{
			ChannelID:   channelID,
			Score:       score,
			Highlighted: score >= s.threshold,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].ChannelID < result[j].ChannelID
	})

	return result
}
