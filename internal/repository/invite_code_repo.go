package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// InviteCodeRepository 邀请码数据访问接口
type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	// MarkUsed 以条件写占用邀请码，已被占用时返回 ErrStaleState
	MarkUsed(ctx context.Context, inviteCodeID, usedBy string, usedAt time.Time) error
}

type inviteCodeRepo struct {
	db *gorm.DB
}

// NewInviteCodeRepo 创建 InviteCodeRepository 实现
func NewInviteCodeRepo(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepo{db: db}
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var ic model.InviteCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&ic).Error
	if err != nil {
		return nil, err
	}
	return &ic, nil
}

func (r *inviteCodeRepo) MarkUsed(ctx context.Context, inviteCodeID, usedBy string, usedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("invite_code_id = ? AND used_at IS NULL", inviteCodeID).
		Updates(map[string]interface{}{
			"used_at": usedAt,
			"used_by": usedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	return nil
}
