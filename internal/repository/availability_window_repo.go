package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// AvailabilityWindowRepository 导师开放窗口数据访问接口
type AvailabilityWindowRepository interface {
	Create(ctx context.Context, window *model.AvailabilityWindow) error
	GetByID(ctx context.Context, id string) (*model.AvailabilityWindow, error)
	// ListActiveByAdvisor 仅返回 is_active = true 的窗口
	ListActiveByAdvisor(ctx context.Context, advisorID string) ([]model.AvailabilityWindow, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]model.AvailabilityWindow, error)
	Update(ctx context.Context, window *model.AvailabilityWindow, fields map[string]interface{}) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type availabilityWindowRepo struct {
	db *gorm.DB
}

// NewAvailabilityWindowRepo 创建 AvailabilityWindowRepository 实现
func NewAvailabilityWindowRepo(db *gorm.DB) AvailabilityWindowRepository {
	return &availabilityWindowRepo{db: db}
}

func (r *availabilityWindowRepo) Create(ctx context.Context, window *model.AvailabilityWindow) error {
	return r.db.WithContext(ctx).Create(window).Error
}

func (r *availabilityWindowRepo) GetByID(ctx context.Context, id string) (*model.AvailabilityWindow, error) {
	var window model.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("window_id = ?", id).
		First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *availabilityWindowRepo) ListActiveByAdvisor(ctx context.Context, advisorID string) ([]model.AvailabilityWindow, error) {
	var windows []model.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("advisor_id = ? AND is_active = ?", advisorID, true).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	return windows, err
}

func (r *availabilityWindowRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]model.AvailabilityWindow, error) {
	var windows []model.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	return windows, err
}

func (r *availabilityWindowRepo) Update(ctx context.Context, window *model.AvailabilityWindow, fields map[string]interface{}) error {
	oldVersion := window.Version
	fields["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.AvailabilityWindow{}).
		Where("window_id = ? AND version = ?", window.WindowID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	window.Version = oldVersion + 1
	return nil
}

func (r *availabilityWindowRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AvailabilityWindow{}).
			Where("window_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("window_id = ?", id).
			Delete(&model.AvailabilityWindow{}).Error
	})
}
