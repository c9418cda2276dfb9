package model

type GetMyStreakRequest struct{}

type GetMyStreakResponse struct {
	Streak Streak `json:"streak"`
}

type GetPointsLeaderboardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetPointsLeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
