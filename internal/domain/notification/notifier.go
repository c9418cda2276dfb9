package notification

import "context"

// Message is one in-app notification addressed to a single user.
type Message struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	LinkPath string `json:"link_path"`
}

// Notifier hands a message to the delivery pipeline. It never blocks on the
// delivery itself and never fails the caller. Delivery errors are logged.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}
