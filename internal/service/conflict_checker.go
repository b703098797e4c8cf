package service

import (
	"context"
	"time"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
	"gradguide/backend/pkg/timeutil"
)

// 冲突来源
const (
	ConflictSourceTeaching    = "teaching"    // 导师授课
	ConflictSourceCourse      = "course"      // 学生课程
	ConflictSourceGuidance    = "guidance"    // 已有指导会话
	ConflictSourceUnavailable = "unavailable" // 导师不可用时段
)

// ConflictChecker 预约冲突检测器
// 检测结果按来源返回明细列表，空列表表示无冲突
type ConflictChecker interface {
	// CheckAdvisor 检测导师侧冲突：授课、不可用、已有会话
	CheckAdvisor(ctx context.Context, advisorID string, date time.Time, start, end string, blockingStatuses []string, excludeSessionID string) ([]dto.ConflictInfo, error)
	// CheckStudent 检测学生侧冲突：课程、已有会话
	CheckStudent(ctx context.Context, studentID string, date time.Time, start, end string, blockingStatuses []string, excludeSessionID string) ([]dto.ConflictInfo, error)
}

type conflictChecker struct {
	repo *repository.Repository
}

// NewConflictChecker 创建 ConflictChecker 实例
func NewConflictChecker(repo *repository.Repository) ConflictChecker {
	return &conflictChecker{repo: repo}
}

func (c *conflictChecker) CheckAdvisor(ctx context.Context, advisorID string, date time.Time, start, end string, blockingStatuses []string, excludeSessionID string) ([]dto.ConflictInfo, error) {
	dow := timeutil.DayOfWeek(date)
	var conflicts []dto.ConflictInfo

	// 授课安排
	teaching, err := c.repo.ClassSchedule.ListByUser(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	for i := range teaching {
		cs := &teaching[i]
		if !cs.CoversDate(date, dow) {
			continue
		}
		overlap, err := timeutil.OverlapsHHMM(cs.StartTime, cs.EndTime, start, end)
		if err != nil {
			return nil, err
		}
		if overlap {
			conflicts = append(conflicts, dto.ConflictInfo{
				Source:    ConflictSourceTeaching,
				Label:     cs.CourseName,
				StartTime: cs.StartTime,
				EndTime:   cs.EndTime,
			})
		}
	}

	// 不可用时段
	blocks, err := c.repo.UnavailabilityBlock.ListByAdvisor(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		b := &blocks[i]
		if !b.CoversDate(date, dow) {
			continue
		}
		overlap, err := timeutil.OverlapsHHMM(b.StartTime, b.EndTime, start, end)
		if err != nil {
			return nil, err
		}
		if overlap {
			label := "不可用时段"
			if b.Reason != nil && *b.Reason != "" {
				label = *b.Reason
			}
			conflicts = append(conflicts, dto.ConflictInfo{
				Source:    ConflictSourceUnavailable,
				Label:     label,
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
			})
		}
	}

	// 已有指导会话
	sessions, err := c.repo.GuidanceSession.ListByAdvisorAndDate(ctx, advisorID, timeutil.DateOnly(date), blockingStatuses)
	if err != nil {
		return nil, err
	}
	sessConflicts, err := sessionConflicts(sessions, start, end, excludeSessionID)
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, sessConflicts...)

	return conflicts, nil
}

func (c *conflictChecker) CheckStudent(ctx context.Context, studentID string, date time.Time, start, end string, blockingStatuses []string, excludeSessionID string) ([]dto.ConflictInfo, error) {
	dow := timeutil.DayOfWeek(date)
	var conflicts []dto.ConflictInfo

	// 学生课程
	courses, err := c.repo.ClassSchedule.ListByUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		cs := &courses[i]
		if !cs.CoversDate(date, dow) {
			continue
		}
		overlap, err := timeutil.OverlapsHHMM(cs.StartTime, cs.EndTime, start, end)
		if err != nil {
			return nil, err
		}
		if overlap {
			conflicts = append(conflicts, dto.ConflictInfo{
				Source:    ConflictSourceCourse,
				Label:     cs.CourseName,
				StartTime: cs.StartTime,
				EndTime:   cs.EndTime,
			})
		}
	}

	// 学生已有会话（含团体参与）
	sessions, err := c.repo.GuidanceSession.ListByStudentAndDate(ctx, studentID, timeutil.DateOnly(date), blockingStatuses)
	if err != nil {
		return nil, err
	}
	sessConflicts, err := sessionConflicts(sessions, start, end, excludeSessionID)
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, sessConflicts...)

	return conflicts, nil
}

// sessionConflicts 过滤出与 [start, end) 重叠的会话冲突。
// 存储中出现坏时间格式视为错误上抛，不得静默漏报冲突
func sessionConflicts(sessions []model.GuidanceSession, start, end, excludeSessionID string) ([]dto.ConflictInfo, error) {
	var conflicts []dto.ConflictInfo
	for i := range sessions {
		sess := &sessions[i]
		if sess.SessionID == excludeSessionID {
			continue
		}
		overlap, err := timeutil.OverlapsHHMM(sess.StartTime, sess.EndTime, start, end)
		if err != nil {
			return nil, err
		}
		if !overlap {
			continue
		}
		conflicts = append(conflicts, dto.ConflictInfo{
			Source:    ConflictSourceGuidance,
			Label:     "指导会话 (" + sess.Status + ")",
			StartTime: sess.StartTime,
			EndTime:   sess.EndTime,
		})
	}
	return conflicts, nil
}
