package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
)

// ── 学业周期模块业务错误 ──

var (
	ErrPeriodNotFound = errors.New("学业周期不存在")
	ErrNoActivePeriod = errors.New("当前无激活的学业周期")
	ErrPeriodBadDates = errors.New("周期日期不合法：须满足 开始 ≤ 检查点1 < 检查点2 ≤ 结束")
	ErrPeriodArchived = errors.New("已归档的学业周期不可修改")
)

const dateLayout = "2006-01-02"

// AcademicPeriodService 学业周期业务接口
type AcademicPeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	GetActive(ctx context.Context) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	// Activate 激活指定周期并取消其他周期的激活状态
	Activate(ctx context.Context, id, callerID string) (*dto.PeriodResponse, error)
	Archive(ctx context.Context, id, callerID string) error
}

type academicPeriodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAcademicPeriodService 创建 AcademicPeriodService 实例
func NewAcademicPeriodService(repo *repository.Repository, logger *zap.Logger) AcademicPeriodService {
	return &academicPeriodService{repo: repo, logger: logger}
}

func (s *academicPeriodService) Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	cp1, _ := time.Parse(dateLayout, req.Checkpoint1Date)
	cp2, _ := time.Parse(dateLayout, req.Checkpoint2Date)

	if err := validatePeriodDates(start, end, cp1, cp2); err != nil {
		return nil, err
	}

	period := &model.AcademicPeriod{
		Name:            req.Name,
		StartDate:       start,
		EndDate:         end,
		Checkpoint1Date: cp1,
		Checkpoint2Date: cp2,
		Status:          "active",
	}
	period.CreatedBy = &callerID
	period.UpdatedBy = &callerID

	if err := s.repo.AcademicPeriod.Create(ctx, period); err != nil {
		s.logger.Error("创建学业周期失败", zap.Error(err))
		return nil, err
	}

	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *academicPeriodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.getPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *academicPeriodService) GetActive(ctx context.Context) (*dto.PeriodResponse, error) {
	period, err := s.repo.AcademicPeriod.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活周期失败", zap.Error(err))
		return nil, err
	}
	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *academicPeriodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.AcademicPeriod.List(ctx)
	if err != nil {
		s.logger.Error("查询周期列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, toPeriodResponse(&periods[i]))
	}
	return result, nil
}

func (s *academicPeriodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	period, err := s.getPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status == "archived" {
		return nil, ErrPeriodArchived
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartDate != nil {
		period.StartDate, _ = time.Parse(dateLayout, *req.StartDate)
	}
	if req.EndDate != nil {
		period.EndDate, _ = time.Parse(dateLayout, *req.EndDate)
	}
	if req.Checkpoint1Date != nil {
		period.Checkpoint1Date, _ = time.Parse(dateLayout, *req.Checkpoint1Date)
	}
	if req.Checkpoint2Date != nil {
		period.Checkpoint2Date, _ = time.Parse(dateLayout, *req.Checkpoint2Date)
	}

	if err := validatePeriodDates(period.StartDate, period.EndDate, period.Checkpoint1Date, period.Checkpoint2Date); err != nil {
		return nil, err
	}

	period.UpdatedBy = &callerID
	if err := s.repo.AcademicPeriod.Update(ctx, period); err != nil {
		s.logger.Error("更新学业周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *academicPeriodService) Activate(ctx context.Context, id, callerID string) (*dto.PeriodResponse, error) {
	period, err := s.getPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status == "archived" {
		return nil, ErrPeriodArchived
	}

	if err := s.repo.AcademicPeriod.ClearActive(ctx); err != nil {
		s.logger.Error("取消旧激活周期失败", zap.Error(err))
		return nil, err
	}

	period.IsActive = true
	period.UpdatedBy = &callerID
	if err := s.repo.AcademicPeriod.Update(ctx, period); err != nil {
		s.logger.Error("激活学业周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *academicPeriodService) Archive(ctx context.Context, id, callerID string) error {
	period, err := s.getPeriod(ctx, id)
	if err != nil {
		return err
	}

	period.Status = "archived"
	period.IsActive = false
	period.UpdatedBy = &callerID
	if err := s.repo.AcademicPeriod.Update(ctx, period); err != nil {
		s.logger.Error("归档学业周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

func (s *academicPeriodService) getPeriod(ctx context.Context, id string) (*model.AcademicPeriod, error) {
	period, err := s.repo.AcademicPeriod.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学业周期失败", zap.Error(err))
		return nil, err
	}
	return period, nil
}

// validatePeriodDates 校验 开始 ≤ 检查点1 < 检查点2 ≤ 结束
func validatePeriodDates(start, end, cp1, cp2 time.Time) error {
	if cp1.Before(start) || !cp1.Before(cp2) || cp2.After(end) {
		return ErrPeriodBadDates
	}
	return nil
}

func toPeriodResponse(period *model.AcademicPeriod) dto.PeriodResponse {
	return dto.PeriodResponse{
		ID:              period.PeriodID,
		Name:            period.Name,
		StartDate:       period.StartDate.Format(dateLayout),
		EndDate:         period.EndDate.Format(dateLayout),
		Checkpoint1Date: period.Checkpoint1Date.Format(dateLayout),
		Checkpoint2Date: period.Checkpoint2Date.Format(dateLayout),
		IsActive:        period.IsActive,
		Status:          period.Status,
		CreatedAt:       period.CreatedAt.Format(time.RFC3339),
	}
}
