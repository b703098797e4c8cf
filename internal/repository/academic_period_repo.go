package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// AcademicPeriodRepository 学业周期数据访问接口
type AcademicPeriodRepository interface {
	Create(ctx context.Context, period *model.AcademicPeriod) error
	GetByID(ctx context.Context, id string) (*model.AcademicPeriod, error)
	GetActive(ctx context.Context) (*model.AcademicPeriod, error)
	List(ctx context.Context) ([]model.AcademicPeriod, error)
	Update(ctx context.Context, period *model.AcademicPeriod) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// ClearActive 取消所有周期的激活标记（激活新周期前调用）
	ClearActive(ctx context.Context) error
}

type academicPeriodRepo struct {
	db *gorm.DB
}

// NewAcademicPeriodRepo 创建 AcademicPeriodRepository 实现
func NewAcademicPeriodRepo(db *gorm.DB) AcademicPeriodRepository {
	return &academicPeriodRepo{db: db}
}

func (r *academicPeriodRepo) Create(ctx context.Context, period *model.AcademicPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *academicPeriodRepo) GetByID(ctx context.Context, id string) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	err := r.db.WithContext(ctx).
		Where("period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *academicPeriodRepo) GetActive(ctx context.Context) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *academicPeriodRepo) List(ctx context.Context) ([]model.AcademicPeriod, error) {
	var periods []model.AcademicPeriod
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

func (r *academicPeriodRepo) Update(ctx context.Context, period *model.AcademicPeriod) error {
	oldVersion := period.Version
	result := r.db.WithContext(ctx).
		Model(period).
		Where("period_id = ? AND version = ?", period.PeriodID, oldVersion).
		Updates(map[string]interface{}{
			"name":             period.Name,
			"start_date":       period.StartDate,
			"end_date":         period.EndDate,
			"checkpoint1_date": period.Checkpoint1Date,
			"checkpoint2_date": period.Checkpoint2Date,
			"is_active":        period.IsActive,
			"status":           period.Status,
			"updated_by":       period.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	period.Version = oldVersion + 1
	return nil
}

func (r *academicPeriodRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	if err := r.db.WithContext(ctx).
		Model(&model.AcademicPeriod{}).
		Where("period_id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("period_id = ?", id).
		Delete(&model.AcademicPeriod{}).Error
}

func (r *academicPeriodRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.AcademicPeriod{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
