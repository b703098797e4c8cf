package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// ThesisProjectRepository 论文课题数据访问接口
type ThesisProjectRepository interface {
	// Create 在一个事务内创建课题与导师关联
	Create(ctx context.Context, project *model.ThesisProject, supervisors []model.ProjectSupervisor) error
	GetByID(ctx context.Context, id string) (*model.ThesisProject, error)
	// GetActiveByStudent 获取学生当前 ACTIVE 状态的课题
	GetActiveByStudent(ctx context.Context, studentID string) (*model.ThesisProject, error)
	ListByAdvisor(ctx context.Context, advisorID string, offset, limit int) ([]model.ThesisProject, int64, error)
	ListActiveByPeriod(ctx context.Context, periodID string) ([]model.ThesisProject, error)
	UpdateStatus(ctx context.Context, project *model.ThesisProject) error
}

type thesisProjectRepo struct {
	db *gorm.DB
}

// NewThesisProjectRepo 创建 ThesisProjectRepository 实现
func NewThesisProjectRepo(db *gorm.DB) ThesisProjectRepository {
	return &thesisProjectRepo{db: db}
}

func (r *thesisProjectRepo) Create(ctx context.Context, project *model.ThesisProject, supervisors []model.ProjectSupervisor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		for i := range supervisors {
			supervisors[i].ProjectID = project.ProjectID
		}
		if len(supervisors) > 0 {
			if err := tx.Create(&supervisors).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *thesisProjectRepo) GetByID(ctx context.Context, id string) (*model.ThesisProject, error) {
	var project model.ThesisProject
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Period").
		Preload("Supervisors").
		Preload("Supervisors.Advisor").
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *thesisProjectRepo) GetActiveByStudent(ctx context.Context, studentID string) (*model.ThesisProject, error) {
	var project model.ThesisProject
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Period").
		Preload("Supervisors").
		Preload("Supervisors.Advisor").
		Where("student_id = ? AND status = ?", studentID, model.ProjectStatusActive).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *thesisProjectRepo) ListByAdvisor(ctx context.Context, advisorID string, offset, limit int) ([]model.ThesisProject, int64, error) {
	var projects []model.ThesisProject
	var total int64

	sub := r.db.WithContext(ctx).
		Model(&model.ProjectSupervisor{}).
		Select("project_id").
		Where("advisor_id = ?", advisorID)

	db := r.db.WithContext(ctx).
		Model(&model.ThesisProject{}).
		Where("project_id IN (?)", sub)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Student").
		Preload("Supervisors").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, total, err
}

func (r *thesisProjectRepo) ListActiveByPeriod(ctx context.Context, periodID string) ([]model.ThesisProject, error) {
	var projects []model.ThesisProject
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Supervisors").
		Preload("Supervisors.Advisor").
		Where("period_id = ? AND status = ?", periodID, model.ProjectStatusActive).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *thesisProjectRepo) UpdateStatus(ctx context.Context, project *model.ThesisProject) error {
	oldVersion := project.Version
	result := r.db.WithContext(ctx).
		Model(project).
		Where("project_id = ? AND version = ?", project.ProjectID, oldVersion).
		Updates(map[string]interface{}{
			"status":     project.Status,
			"updated_by": project.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	project.Version = oldVersion + 1
	return nil
}
