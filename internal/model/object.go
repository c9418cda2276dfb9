package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type Badge struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CriteriaType  string `json:"criteria_type"`
	CriteriaValue int    `json:"criteria_value"`
	IconURL       string `json:"icon_url"`
}

type UserBadge struct {
	Badge       Badge  `json:"badge"`
	AwardedAt   string `json:"awarded_at"`
	WasNotified bool   `json:"was_notified"`
}

type Streak struct {
	UserID         string `json:"user_id"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	TotalPoints    int64  `json:"total_points"`
	LastActiveDate string `json:"last_active_date"`
	AtRisk         bool   `json:"at_risk"`
}

type LeaderboardEntry struct {
	User   User  `json:"user"`
	Points int64 `json:"points"`
	Rank   int   `json:"rank"`
}

type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	LinkPath  string `json:"link_path"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type ChannelScore struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	Score       int    `json:"score"`
	Highlighted bool   `json:"highlighted"`
}
