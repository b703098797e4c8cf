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

// ── 院系模块业务错误 ──

var (
	ErrDepartmentNotFound   = errors.New("院系不存在")
	ErrDepartmentNameTaken  = errors.New("院系名称已存在")
	ErrDepartmentHasMembers = errors.New("院系下仍有成员，不可删除")
)

// DepartmentService 院系业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	Delete(ctx context.Context, id, callerID string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	if _, err := s.repo.Department.GetByName(ctx, req.Name); err == nil {
		return nil, ErrDepartmentNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	dept := &model.Department{Name: req.Name}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建院系失败", zap.Error(err))
		return nil, err
	}
	return s.buildDetail(ctx, dept)
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}
	return s.buildDetail(ctx, dept)
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("查询院系列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		detail, err := s.buildDetail(ctx, &depts[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *detail)
	}
	return result, nil
}

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	if existing, err := s.repo.Department.GetByName(ctx, req.Name); err == nil && existing.DepartmentID != id {
		return nil, ErrDepartmentNameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dept.Name = req.Name
	dept.UpdatedBy = &callerID
	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("更新院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.buildDetail(ctx, dept)
}

func (s *departmentService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}

	count, err := s.repo.Department.CountMembers(ctx, id)
	if err != nil {
		s.logger.Error("统计院系成员失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentHasMembers
	}

	if err := s.repo.Department.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除院系失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *departmentService) buildDetail(ctx context.Context, dept *model.Department) (*dto.DepartmentDetailResponse, error) {
	count, err := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &dto.DepartmentDetailResponse{
		ID:          dept.DepartmentID,
		Name:        dept.Name,
		MemberCount: count,
		CreatedAt:   dept.CreatedAt.Format(time.RFC3339),
	}, nil
}
