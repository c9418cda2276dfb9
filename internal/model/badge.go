package model

type GetAllBadgesRequest struct{}

type GetAllBadgesResponse struct {
	Badges []Badge `json:"badges"`
}

type GetMyBadgesRequest struct{}

type GetMyBadgesResponse struct {
	Badges []UserBadge `json:"badges"`
}

type GetUserBadgesRequest struct {
	UserID string `json:"user_id"`
}

type GetUserBadgesResponse struct {
	Badges []UserBadge `json:"badges"`
}

type EvaluateMyBadgesRequest struct{}

type EvaluateMyBadgesResponse struct {
	AwardedBadges []Badge `json:"awarded_badges"`
}
