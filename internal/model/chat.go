package model

type SendMessageRequest struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

type SendMessageResponse struct {
	ID string `json:"id"`
}

type GetChannelScoresRequest struct {
	CellID string `json:"cell_id"`
}

type GetChannelScoresResponse struct {
	Scores []ChannelScore `json:"scores"`
}

type EngagementSessionRequest struct {
	CellID string `json:"cell_id"`
}

// EngagementEvent is a frame sent by the client on the engagement websocket.
type EngagementEvent struct {
	ChannelID string `json:"channel_id"`
	Kind      string `json:"kind"`
}

// EngagementSnapshot is sent back after every event and after every change
// caused by other members.
type EngagementSnapshot struct {
	Scores []ChannelScore `json:"scores"`
}
