package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
)

// SessionChangeLogRepository 会话变更日志数据访问接口（仅追加）
type SessionChangeLogRepository interface {
	Create(ctx context.Context, log *model.SessionChangeLog) error
	ListBySession(ctx context.Context, sessionID string) ([]model.SessionChangeLog, error)
}

type sessionChangeLogRepo struct {
	db *gorm.DB
}

// NewSessionChangeLogRepo 创建 SessionChangeLogRepository 实现
func NewSessionChangeLogRepo(db *gorm.DB) SessionChangeLogRepository {
	return &sessionChangeLogRepo{db: db}
}

func (r *sessionChangeLogRepo) Create(ctx context.Context, log *model.SessionChangeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *sessionChangeLogRepo) ListBySession(ctx context.Context, sessionID string) ([]model.SessionChangeLog, error) {
	var logs []model.SessionChangeLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
