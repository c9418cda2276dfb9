package domain

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]entity.Badge, error)
}

type BadgeDomain interface {
	GetAllBadges(context.Context, *model.GetAllBadgesRequest) (*model.GetAllBadgesResponse, error)
	GetMyBadges(context.Context, *model.GetMyBadgesRequest) (*model.GetMyBadgesResponse, error)
	GetUserBadges(context.Context, *model.GetUserBadgesRequest) (*model.GetUserBadgesResponse, error)
	EvaluateMyBadges(context.Context, *model.EvaluateMyBadgesRequest) (*model.EvaluateMyBadgesResponse, error)
}

type badgeDomain struct {
	badgeRepo      repository.BadgeRepository
	userBadgeRepo  repository.UserBadgeRepository
	badgeEvaluator BadgeEvaluator
}

func NewBadgeDomain(
	badgeRepo repository.BadgeRepository,
	userBadgeRepo repository.UserBadgeRepository,
	badgeEvaluator BadgeEvaluator,
) *badgeDomain {
	return &badgeDomain{
		badgeRepo:      badgeRepo,
		userBadgeRepo:  userBadgeRepo,
		badgeEvaluator: badgeEvaluator,
	}
}

func (d *badgeDomain) GetAllBadges(
	ctx context.Context, req *model.GetAllBadgesRequest,
) (*model.GetAllBadgesResponse, error) {
	badges, err := d.badgeRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all badges: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetAllBadgesResponse{Badges: convertBadges(badges)}, nil
}

func (d *badgeDomain) GetMyBadges(
	ctx context.Context, req *model.GetMyBadgesRequest,
) (*model.GetMyBadgesResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	badges, err := d.getUserBadges(ctx, requestUserID)
	if err != nil {
		return nil, err
	}

	// The client shows the unnotified badges once, so mark them here.
	if err := d.userBadgeRepo.UpdateNotification(ctx, requestUserID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update badge notification: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyBadgesResponse{Badges: badges}, nil
}

func (d *badgeDomain) GetUserBadges(
	ctx context.Context, req *model.GetUserBadgesRequest,
) (*model.GetUserBadgesResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	badges, err := d.getUserBadges(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserBadgesResponse{Badges: badges}, nil
}

func (d *badgeDomain) EvaluateMyBadges(
	ctx context.Context, req *model.EvaluateMyBadgesRequest,
) (*model.EvaluateMyBadgesResponse, error) {
	awarded, err := d.badgeEvaluator.Evaluate(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.EvaluateMyBadgesResponse{AwardedBadges: convertBadges(awarded)}, nil
}

func (d *badgeDomain) getUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error) {
	userBadges, err := d.userBadgeRepo.GetAll(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user badges: %v", err)
		return nil, errorx.Unknown
	}

	badgeIDs := []string{}
	for _, ub := range userBadges {
		badgeIDs = append(badgeIDs, ub.BadgeID)
	}

	badges, err := d.badgeRepo.GetByIDs(ctx, badgeIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges: %v", err)
		return nil, errorx.Unknown
	}

	badgeMap := map[string]*entity.Badge{}
	for i := range badges {
		badgeMap[badges[i].ID] = &badges[i]
	}

	clientBadges := []model.UserBadge{}
	for i := range userBadges {
		badge, ok := badgeMap[userBadges[i].BadgeID]
		if !ok {
			// The badge was removed from the catalog.
			xcontext.Logger(ctx).Warnf("Not found badge %s", userBadges[i].BadgeID)
			continue
		}

		clientBadges = append(clientBadges, convertUserBadge(&userBadges[i], convertBadge(badge)))
	}

	return clientBadges, nil
}
