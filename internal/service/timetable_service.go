package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrScheduleNotFound = errors.New("课表条目不存在")
	ErrScheduleNotOwner = errors.New("无权操作他人课表")
	ErrICSEmpty         = errors.New("ICS 文件中没有可导入的课程")
)

// TimetableService 课表业务接口
// 手动维护与 ICS 导入并存；来源为 ics 的条目在重导入时整体替换
type TimetableService interface {
	Create(ctx context.Context, req *dto.CreateClassScheduleRequest, userID string) (*dto.ClassScheduleResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.ClassScheduleResponse, error)
	Update(ctx context.Context, scheduleID string, req *dto.UpdateClassScheduleRequest, userID string) (*dto.ClassScheduleResponse, error)
	Delete(ctx context.Context, scheduleID, userID string) error
	// ImportICS 解析并导入 ICS 课表，先清空该用户既有 ics 来源条目
	ImportICS(ctx context.Context, reader io.Reader, userID string) (*dto.ICSImportResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

func (s *timetableService) Create(ctx context.Context, req *dto.CreateClassScheduleRequest, userID string) (*dto.ClassScheduleResponse, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateRepeatFields(req.RepeatType, req.DayOfWeek, req.SpecificDate); err != nil {
		return nil, err
	}

	schedule := &model.ClassSchedule{
		UserID:     userID,
		CourseName: req.CourseName,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		RepeatType: req.RepeatType,
		Source:     model.ScheduleSourceManual,
	}
	schedule.CreatedBy = &userID
	schedule.UpdatedBy = &userID

	if req.RepeatType == model.RepeatWeekly {
		schedule.DayOfWeek = *req.DayOfWeek
	} else {
		date, err := time.Parse(dateLayout, *req.SpecificDate)
		if err != nil {
			return nil, ErrRepeatFieldsBad
		}
		schedule.SpecificDate = &date
		schedule.DayOfWeek = int(date.Weekday())
		if schedule.DayOfWeek == 0 {
			schedule.DayOfWeek = 7
		}
	}

	if err := s.repo.ClassSchedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建课表条目失败", zap.Error(err))
		return nil, err
	}

	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *timetableService) ListMine(ctx context.Context, userID string) ([]dto.ClassScheduleResponse, error) {
	schedules, err := s.repo.ClassSchedule.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ClassScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, toScheduleResponse(&schedules[i]))
	}
	return result, nil
}

func (s *timetableService) Update(ctx context.Context, scheduleID string, req *dto.UpdateClassScheduleRequest, userID string) (*dto.ClassScheduleResponse, error) {
	schedule, err := s.getOwned(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}

	start, end := schedule.StartTime, schedule.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if err := validateTimeRange(start, end); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"start_time": start,
		"end_time":   end,
		"updated_by": userID,
	}
	if req.CourseName != nil {
		fields["course_name"] = *req.CourseName
	}
	if req.DayOfWeek != nil && schedule.RepeatType == model.RepeatWeekly {
		fields["day_of_week"] = *req.DayOfWeek
	}

	if err := s.repo.ClassSchedule.Update(ctx, schedule, fields); err != nil {
		s.logger.Error("更新课表条目失败", zap.String("id", scheduleID), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.ClassSchedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	resp := toScheduleResponse(updated)
	return &resp, nil
}

func (s *timetableService) Delete(ctx context.Context, scheduleID, userID string) error {
	if _, err := s.getOwned(ctx, scheduleID, userID); err != nil {
		return err
	}
	if err := s.repo.ClassSchedule.Delete(ctx, scheduleID, userID); err != nil {
		s.logger.Error("删除课表条目失败", zap.String("id", scheduleID), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ImportICS — ICS 课表导入
// ════════════════════════════════════════════════════════════

func (s *timetableService) ImportICS(ctx context.Context, reader io.Reader, userID string) (*dto.ICSImportResponse, error) {
	schedules, total, warnings, err := parseICSReader(reader, userID)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrICSEmpty
	}

	// 重导入语义：替换该用户全部 ics 来源条目，手动条目不受影响
	if err := s.repo.ClassSchedule.DeleteBySource(ctx, userID, model.ScheduleSourceICS, userID); err != nil {
		s.logger.Error("清空旧 ICS 课表失败", zap.Error(err))
		return nil, err
	}
	for i := range schedules {
		schedules[i].CreatedBy = &userID
		schedules[i].UpdatedBy = &userID
	}
	if err := s.repo.ClassSchedule.BatchCreate(ctx, schedules); err != nil {
		s.logger.Error("批量写入课表失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 课表导入完成",
		zap.String("user_id", userID),
		zap.Int("total_events", total),
		zap.Int("imported", len(schedules)))

	return &dto.ICSImportResponse{
		TotalEvents: total,
		Imported:    len(schedules),
		Skipped:     total - len(schedules),
		Warnings:    warnings,
	}, nil
}

func (s *timetableService) getOwned(ctx context.Context, scheduleID, userID string) (*model.ClassSchedule, error) {
	schedule, err := s.repo.ClassSchedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, err
	}
	if schedule.UserID != userID {
		return nil, ErrScheduleNotOwner
	}
	return schedule, nil
}

func toScheduleResponse(schedule *model.ClassSchedule) dto.ClassScheduleResponse {
	resp := dto.ClassScheduleResponse{
		ID:         schedule.ClassScheduleID,
		CourseName: schedule.CourseName,
		RepeatType: schedule.RepeatType,
		DayOfWeek:  schedule.DayOfWeek,
		StartTime:  schedule.StartTime,
		EndTime:    schedule.EndTime,
		Source:     schedule.Source,
		CreatedAt:  schedule.CreatedAt.Format(time.RFC3339),
	}
	if schedule.SpecificDate != nil {
		d := schedule.SpecificDate.Format(dateLayout)
		resp.SpecificDate = &d
	}
	return resp
}
