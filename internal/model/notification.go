package model

type GetNotificationsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int64          `json:"unread"`
}

type ReadNotificationsRequest struct {
	// IDs is empty to read every notification.
	IDs []string `json:"ids"`
}

type ReadNotificationsResponse struct{}
