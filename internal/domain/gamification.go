package domain

import (
	"context"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/domain/statistic"
	"github.com/koinonia-lab/backend/internal/domain/streak"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type GamificationDomain interface {
	GetMyStreak(context.Context, *model.GetMyStreakRequest) (*model.GetMyStreakResponse, error)
	GetPointsLeaderboard(context.Context, *model.GetPointsLeaderboardRequest) (*model.GetPointsLeaderboardResponse, error)
}

type gamificationDomain struct {
	userRepo     repository.UserRepository
	streakEngine *streak.Engine
	leaderboard  statistic.Leaderboard
}

func NewGamificationDomain(
	userRepo repository.UserRepository,
	streakEngine *streak.Engine,
	leaderboard statistic.Leaderboard,
) *gamificationDomain {
	return &gamificationDomain{
		userRepo:     userRepo,
		streakEngine: streakEngine,
		leaderboard:  leaderboard,
	}
}

func (d *gamificationDomain) GetMyStreak(
	ctx context.Context, req *model.GetMyStreakRequest,
) (*model.GetMyStreakResponse, error) {
	record, err := d.streakEngine.Get(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	atRisk := streak.IsAtRisk(*record, d.streakEngine.Today())
	return &model.GetMyStreakResponse{Streak: convertStreak(record, atRisk)}, nil
}

func (d *gamificationDomain) GetPointsLeaderboard(
	ctx context.Context, req *model.GetPointsLeaderboardRequest,
) (*model.GetPointsLeaderboardResponse, error) {
	limit, err := common.NormalizeLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	entries, err := d.leaderboard.GetPoints(ctx, req.Offset, limit)
	if err != nil {
		return nil, err
	}

	userIDs := []string{}
	for _, e := range entries {
		userIDs = append(userIDs, e.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users of leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	userMap := map[string]*entity.User{}
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	clientEntries := []model.LeaderboardEntry{}
	for _, e := range entries {
		user := convertUser(userMap[e.UserID])
		user.ID = e.UserID

		clientEntries = append(clientEntries, model.LeaderboardEntry{
			User:   user,
			Points: e.Points,
			Rank:   e.Rank,
		})
	}

	return &model.GetPointsLeaderboardResponse{Entries: clientEntries}, nil
}
