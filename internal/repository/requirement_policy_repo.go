package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// RequirementPolicyRepository 最低指导次数策略数据访问接口
type RequirementPolicyRepository interface {
	GetByThesisType(ctx context.Context, thesisType string) (*model.RequirementPolicy, error)
	List(ctx context.Context) ([]model.RequirementPolicy, error)
	Update(ctx context.Context, policy *model.RequirementPolicy) error
}

type requirementPolicyRepo struct {
	db *gorm.DB
}

// NewRequirementPolicyRepo 创建 RequirementPolicyRepository 实现
func NewRequirementPolicyRepo(db *gorm.DB) RequirementPolicyRepository {
	return &requirementPolicyRepo{db: db}
}

func (r *requirementPolicyRepo) GetByThesisType(ctx context.Context, thesisType string) (*model.RequirementPolicy, error) {
	var policy model.RequirementPolicy
	err := r.db.WithContext(ctx).
		Where("thesis_type = ?", thesisType).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *requirementPolicyRepo) List(ctx context.Context) ([]model.RequirementPolicy, error) {
	var policies []model.RequirementPolicy
	err := r.db.WithContext(ctx).
		Order("thesis_type ASC").
		Find(&policies).Error
	return policies, err
}

func (r *requirementPolicyRepo) Update(ctx context.Context, policy *model.RequirementPolicy) error {
	oldVersion := policy.Version
	result := r.db.WithContext(ctx).
		Model(&model.RequirementPolicy{}).
		Where("policy_id = ? AND version = ?", policy.PolicyID, oldVersion).
		Updates(map[string]interface{}{
			"required_before_checkpoint1": policy.RequiredBeforeCheckpoint1,
			"required_before_checkpoint2": policy.RequiredBeforeCheckpoint2,
			"updated_by":                  policy.UpdatedBy,
			"version":                     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	policy.Version = oldVersion + 1
	return nil
}
