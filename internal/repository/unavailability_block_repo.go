package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// UnavailabilityBlockRepository 导师不可用时段数据访问接口
type UnavailabilityBlockRepository interface {
	Create(ctx context.Context, block *model.UnavailabilityBlock) error
	GetByID(ctx context.Context, id string) (*model.UnavailabilityBlock, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]model.UnavailabilityBlock, error)
	Update(ctx context.Context, block *model.UnavailabilityBlock, fields map[string]interface{}) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type unavailabilityBlockRepo struct {
	db *gorm.DB
}

// NewUnavailabilityBlockRepo 创建 UnavailabilityBlockRepository 实现
func NewUnavailabilityBlockRepo(db *gorm.DB) UnavailabilityBlockRepository {
	return &unavailabilityBlockRepo{db: db}
}

func (r *unavailabilityBlockRepo) Create(ctx context.Context, block *model.UnavailabilityBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *unavailabilityBlockRepo) GetByID(ctx context.Context, id string) (*model.UnavailabilityBlock, error) {
	var block model.UnavailabilityBlock
	err := r.db.WithContext(ctx).
		Where("block_id = ?", id).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *unavailabilityBlockRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]model.UnavailabilityBlock, error) {
	var blocks []model.UnavailabilityBlock
	err := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		Order("specific_date ASC, start_time ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *unavailabilityBlockRepo) Update(ctx context.Context, block *model.UnavailabilityBlock, fields map[string]interface{}) error {
	oldVersion := block.Version
	fields["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.UnavailabilityBlock{}).
		Where("block_id = ? AND version = ?", block.BlockID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	block.Version = oldVersion + 1
	return nil
}

func (r *unavailabilityBlockRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.UnavailabilityBlock{}).
			Where("block_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("block_id = ?", id).
			Delete(&model.UnavailabilityBlock{}).Error
	})
}
