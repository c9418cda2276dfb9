package domain

import (
	"time"

	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func convertUser(user *entity.User) model.User {
	if user == nil {
		return model.User{}
	}

	return model.User{
		ID:             user.ID,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
	}
}

func convertBadge(badge *entity.Badge) model.Badge {
	if badge == nil {
		return model.Badge{}
	}

	return model.Badge{
		ID:            badge.ID,
		Name:          badge.Name,
		Description:   badge.Description,
		CriteriaType:  string(badge.CriteriaType),
		CriteriaValue: badge.CriteriaValue,
		IconURL:       badge.IconURL,
	}
}

func convertBadges(badges []entity.Badge) []model.Badge {
	clientBadges := []model.Badge{}
	for i := range badges {
		clientBadges = append(clientBadges, convertBadge(&badges[i]))
	}

	return clientBadges
}

func convertUserBadge(userBadge *entity.UserBadge, badge model.Badge) model.UserBadge {
	return model.UserBadge{
		Badge:       badge,
		AwardedAt:   userBadge.AwardedAt.Format(defaultTimeLayout),
		WasNotified: userBadge.WasNotified,
	}
}

func convertStreak(record *entity.StreakRecord, atRisk bool) model.Streak {
	return model.Streak{
		UserID:         record.UserID,
		CurrentStreak:  record.CurrentStreak,
		LongestStreak:  record.LongestStreak,
		TotalPoints:    record.TotalPoints,
		LastActiveDate: record.LastActiveDate.String(),
		AtRisk:         atRisk,
	}
}

func convertNotification(n *entity.Notification) model.Notification {
	return model.Notification{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		LinkPath:  n.LinkPath,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertChannelScores(scores []engagement.ChannelScore, names map[string]string) []model.ChannelScore {
	clientScores := []model.ChannelScore{}
	for _, s := range scores {
		clientScores = append(clientScores, model.ChannelScore{
			ChannelID:   s.ChannelID,
			ChannelName: names[s.ChannelID],
			Score:       s.Score,
			Highlighted: s.Highlighted,
		})
	}

	return clientScores
}
