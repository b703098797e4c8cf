package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// GuidanceSessionRepository 指导会话数据访问接口
type GuidanceSessionRepository interface {
	Create(ctx context.Context, session *model.GuidanceSession, participants []model.SessionParticipant) error
	GetByID(ctx context.Context, id string) (*model.GuidanceSession, error)
	// Update 修改会话的时间/地点等字段，带版本条件写
	Update(ctx context.Context, session *model.GuidanceSession, fields map[string]interface{}) error
	// TransitionStatus 按 WHERE status = from AND version = ? 条件翻转状态，
	// 未命中返回 pkgerrors.ErrStaleState；extra 随状态翻转在同一条件写中落库
	TransitionStatus(ctx context.Context, session *model.GuidanceSession, from, to string, actorID string, extra map[string]interface{}) error
	// CompleteWithNote 在同一事务内翻转状态为 COMPLETED、写入指导记录与变更日志
	CompleteWithNote(ctx context.Context, session *model.GuidanceSession, note *model.GuidanceNote, log *model.SessionChangeLog) error
	// ListByAdvisorAndDate 某导师指定日期下名下所有课题的会话（冲突检测用）
	ListByAdvisorAndDate(ctx context.Context, advisorID string, date time.Time, statuses []string) ([]model.GuidanceSession, error)
	// ListByStudentAndDate 某学生指定日期的会话（含作为团体参与者的会话）
	ListByStudentAndDate(ctx context.Context, studentID string, date time.Time, statuses []string) ([]model.GuidanceSession, error)
	ListByProject(ctx context.Context, projectID string, statuses []string, offset, limit int) ([]model.GuidanceSession, int64, error)
	// ListCompletedByProject 课题全部已完成会话，按日期升序（达标评估用）
	ListCompletedByProject(ctx context.Context, projectID string) ([]model.GuidanceSession, error)
	ListByAdvisorAndRange(ctx context.Context, advisorID string, from, to time.Time, statuses []string) ([]model.GuidanceSession, error)
}

type guidanceSessionRepo struct {
	db *gorm.DB
}

// NewGuidanceSessionRepo 创建 GuidanceSessionRepository 实现
func NewGuidanceSessionRepo(db *gorm.DB) GuidanceSessionRepository {
	return &guidanceSessionRepo{db: db}
}

func (r *guidanceSessionRepo) Create(ctx context.Context, session *model.GuidanceSession, participants []model.SessionParticipant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if len(participants) > 0 {
			for i := range participants {
				participants[i].SessionID = session.SessionID
			}
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *guidanceSessionRepo) GetByID(ctx context.Context, id string) (*model.GuidanceSession, error) {
	var session model.GuidanceSession
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Student").
		Preload("Project.Supervisors").
		Preload("Participants").
		Preload("Participants.Student").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *guidanceSessionRepo) Update(ctx context.Context, session *model.GuidanceSession, fields map[string]interface{}) error {
	oldVersion := session.Version
	fields["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.GuidanceSession{}).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	session.Version = oldVersion + 1
	return nil
}

func (r *guidanceSessionRepo) TransitionStatus(ctx context.Context, session *model.GuidanceSession, from, to string, actorID string, extra map[string]interface{}) error {
	return r.transitionStatus(r.db.WithContext(ctx), session, from, to, actorID, extra)
}

func (r *guidanceSessionRepo) transitionStatus(tx *gorm.DB, session *model.GuidanceSession, from, to string, actorID string, extra map[string]interface{}) error {
	oldVersion := session.Version
	updates := map[string]interface{}{
		"status":     to,
		"updated_by": actorID,
		"version":    oldVersion + 1,
	}
	for k, v := range extra {
		if _, reserved := updates[k]; !reserved {
			updates[k] = v
		}
	}
	result := tx.
		Model(&model.GuidanceSession{}).
		Where("session_id = ? AND status = ? AND version = ?", session.SessionID, from, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	session.Status = to
	session.Version = oldVersion + 1
	return nil
}

func (r *guidanceSessionRepo) CompleteWithNote(ctx context.Context, session *model.GuidanceSession, note *model.GuidanceNote, log *model.SessionChangeLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.transitionStatus(tx, session, model.SessionStatusApproved, model.SessionStatusCompleted, note.AdvisorID, nil); err != nil {
			return err
		}
		if err := tx.Create(note).Error; err != nil {
			return err
		}
		return tx.Create(log).Error
	})
}

func (r *guidanceSessionRepo) ListByAdvisorAndDate(ctx context.Context, advisorID string, date time.Time, statuses []string) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	sub := r.db.WithContext(ctx).
		Model(&model.ProjectSupervisor{}).
		Select("project_id").
		Where("advisor_id = ?", advisorID)

	err := r.db.WithContext(ctx).
		Where("project_id IN (?) AND scheduled_date = ? AND status IN ?", sub, date, statuses).
		Order("start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *guidanceSessionRepo) ListByStudentAndDate(ctx context.Context, studentID string, date time.Time, statuses []string) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	ownProjects := r.db.WithContext(ctx).
		Model(&model.ThesisProject{}).
		Select("project_id").
		Where("student_id = ?", studentID)

	joined := r.db.WithContext(ctx).
		Model(&model.SessionParticipant{}).
		Select("session_id").
		Where("student_id = ?", studentID)

	err := r.db.WithContext(ctx).
		Where("scheduled_date = ? AND status IN ? AND (project_id IN (?) OR session_id IN (?))",
			date, statuses, ownProjects, joined).
		Order("start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *guidanceSessionRepo) ListByProject(ctx context.Context, projectID string, statuses []string, offset, limit int) ([]model.GuidanceSession, int64, error) {
	var sessions []model.GuidanceSession
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.GuidanceSession{}).
		Where("project_id = ?", projectID)
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Participants").
		Offset(offset).Limit(limit).
		Order("scheduled_date DESC, start_time DESC").
		Find(&sessions).Error
	return sessions, total, err
}

func (r *guidanceSessionRepo) ListCompletedByProject(ctx context.Context, projectID string) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.SessionStatusCompleted).
		Order("scheduled_date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *guidanceSessionRepo) ListByAdvisorAndRange(ctx context.Context, advisorID string, from, to time.Time, statuses []string) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	sub := r.db.WithContext(ctx).
		Model(&model.ProjectSupervisor{}).
		Select("project_id").
		Where("advisor_id = ?", advisorID)

	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Student").
		Where("project_id IN (?) AND scheduled_date >= ? AND scheduled_date <= ? AND status IN ?",
			sub, from, to, statuses).
		Order("scheduled_date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}
