package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type FriendshipRepository interface {
	Create(ctx context.Context, data *entity.Friendship) error
	CountAccepted(ctx context.Context, userID string) (int64, error)
}

type friendshipRepository struct{}

func NewFriendshipRepository() *friendshipRepository {
	return &friendshipRepository{}
}

func (r *friendshipRepository) Create(ctx context.Context, data *entity.Friendship) error {
	return xcontext.DB(ctx).Create(data).Error
}

// CountAccepted counts accepted friendships on either side of the relation.
func (r *friendshipRepository) CountAccepted(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Friendship{}).
		Where("(requester_id=? OR addressee_id=?) AND status=?", userID, userID, entity.FriendshipAccepted).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
