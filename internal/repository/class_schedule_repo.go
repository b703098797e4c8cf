package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// ClassScheduleRepository 课表数据访问接口
type ClassScheduleRepository interface {
	Create(ctx context.Context, schedule *model.ClassSchedule) error
	// BatchCreate ICS 导入批量写入，单事务
	BatchCreate(ctx context.Context, schedules []model.ClassSchedule) error
	GetByID(ctx context.Context, id string) (*model.ClassSchedule, error)
	ListByUser(ctx context.Context, userID string) ([]model.ClassSchedule, error)
	Update(ctx context.Context, schedule *model.ClassSchedule, fields map[string]interface{}) error
	Delete(ctx context.Context, id, deletedBy string) error
	// DeleteBySource 清空某用户某来源的课表（ICS 重导入前用）
	DeleteBySource(ctx context.Context, userID, source, deletedBy string) error
}

type classScheduleRepo struct {
	db *gorm.DB
}

// NewClassScheduleRepo 创建 ClassScheduleRepository 实现
func NewClassScheduleRepo(db *gorm.DB) ClassScheduleRepository {
	return &classScheduleRepo{db: db}
}

func (r *classScheduleRepo) Create(ctx context.Context, schedule *model.ClassSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *classScheduleRepo) BatchCreate(ctx context.Context, schedules []model.ClassSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&schedules, 100).Error
	})
}

func (r *classScheduleRepo) GetByID(ctx context.Context, id string) (*model.ClassSchedule, error) {
	var schedule model.ClassSchedule
	err := r.db.WithContext(ctx).
		Where("class_schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *classScheduleRepo) ListByUser(ctx context.Context, userID string) ([]model.ClassSchedule, error) {
	var schedules []model.ClassSchedule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *classScheduleRepo) Update(ctx context.Context, schedule *model.ClassSchedule, fields map[string]interface{}) error {
	oldVersion := schedule.Version
	fields["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.ClassSchedule{}).
		Where("class_schedule_id = ? AND version = ?", schedule.ClassScheduleID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	schedule.Version = oldVersion + 1
	return nil
}

func (r *classScheduleRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ClassSchedule{}).
			Where("class_schedule_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("class_schedule_id = ?", id).
			Delete(&model.ClassSchedule{}).Error
	})
}

func (r *classScheduleRepo) DeleteBySource(ctx context.Context, userID, source, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ClassSchedule{}).
			Where("user_id = ? AND source = ?", userID, source).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND source = ?", userID, source).
			Delete(&model.ClassSchedule{}).Error
	})
}
