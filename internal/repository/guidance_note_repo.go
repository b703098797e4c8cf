package repository

import (
	"context"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
)

// GuidanceNoteRepository 指导记录数据访问接口（仅追加）
type GuidanceNoteRepository interface {
	Create(ctx context.Context, note *model.GuidanceNote) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.GuidanceNote, error)
	ListByProject(ctx context.Context, projectID string) ([]model.GuidanceNote, error)
}

type guidanceNoteRepo struct {
	db *gorm.DB
}

// NewGuidanceNoteRepo 创建 GuidanceNoteRepository 实现
func NewGuidanceNoteRepo(db *gorm.DB) GuidanceNoteRepository {
	return &guidanceNoteRepo{db: db}
}

func (r *guidanceNoteRepo) Create(ctx context.Context, note *model.GuidanceNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *guidanceNoteRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.GuidanceNote, error) {
	var note model.GuidanceNote
	err := r.db.WithContext(ctx).
		Preload("Advisor").
		Where("session_id = ?", sessionID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *guidanceNoteRepo) ListByProject(ctx context.Context, projectID string) ([]model.GuidanceNote, error) {
	var notes []model.GuidanceNote
	sub := r.db.WithContext(ctx).
		Model(&model.GuidanceSession{}).
		Select("session_id").
		Where("project_id = ?", projectID)

	err := r.db.WithContext(ctx).
		Preload("Advisor").
		Where("session_id IN (?)", sub).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}
