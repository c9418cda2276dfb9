package repository

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type CellRepository interface {
	Create(ctx context.Context, data *entity.Cell) error
	GetByID(ctx context.Context, id string) (*entity.Cell, error)
	AddMember(ctx context.Context, data *entity.CellMember) error
	IsMember(ctx context.Context, cellID, userID string) (bool, error)
	GetMemberIDs(ctx context.Context, cellID string) ([]string, error)
	CountMemberships(ctx context.Context, userID string) (int64, error)
	CreateChannel(ctx context.Context, data *entity.Channel) error
	GetChannelByID(ctx context.Context, id string) (*entity.Channel, error)
	GetChannels(ctx context.Context, cellID string) ([]entity.Channel, error)
}

type cellRepository struct{}

func NewCellRepository() *cellRepository {
	return &cellRepository{}
}

func (r *cellRepository) Create(ctx context.Context, data *entity.Cell) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *cellRepository) GetByID(ctx context.Context, id string) (*entity.Cell, error) {
	result := &entity.Cell{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *cellRepository) AddMember(ctx context.Context, data *entity.CellMember) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
}

func (r *cellRepository) IsMember(ctx context.Context, cellID, userID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.CellMember{}).
		Where("cell_id=? AND user_id=?", cellID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *cellRepository) GetMemberIDs(ctx context.Context, cellID string) ([]string, error) {
	result := []string{}
	err := xcontext.DB(ctx).Model(&entity.CellMember{}).
		Where("cell_id=?", cellID).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *cellRepository) CountMemberships(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.CellMember{}).
		Where("user_id=?", userID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *cellRepository) CreateChannel(ctx context.Context, data *entity.Channel) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *cellRepository) GetChannelByID(ctx context.Context, id string) (*entity.Channel, error) {
	result := &entity.Channel{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *cellRepository) GetChannels(ctx context.Context, cellID string) ([]entity.Channel, error) {
	result := []entity.Channel{}
	err := xcontext.DB(ctx).
		Where("cell_id=?", cellID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
