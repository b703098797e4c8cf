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

// ── 论文课题模块业务错误 ──

var (
	ErrProjectNotFound   = errors.New("论文课题不存在")
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrStudentHasProject = errors.New("该学生已有进行中的课题")
	ErrAdvisorNotFound   = errors.New("导师不存在")
	ErrDuplicateAdvisors = errors.New("课题导师不可重复")
	ErrNotProjectMember  = errors.New("无权访问该课题")
	ErrProjectNotActive  = errors.New("课题非进行中状态")
)

// ThesisProjectService 论文课题业务接口
type ThesisProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.ProjectResponse, error)
	// GetMine 学生获取自己进行中的课题
	GetMine(ctx context.Context, studentID string) (*dto.ProjectResponse, error)
	ListByAdvisor(ctx context.Context, advisorID string, req *dto.PaginationRequest) ([]dto.ProjectResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateProjectStatusRequest, callerID string) (*dto.ProjectResponse, error)
}

type thesisProjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewThesisProjectService 创建 ThesisProjectService 实例
func NewThesisProjectService(repo *repository.Repository, logger *zap.Logger) ThesisProjectService {
	return &thesisProjectService{repo: repo, logger: logger}
}

func (s *thesisProjectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	// 1. 校验学生
	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	// 2. 每个学生同一时间只能有一个进行中课题
	if _, err := s.repo.ThesisProject.GetActiveByStudent(ctx, req.StudentID); err == nil {
		return nil, ErrStudentHasProject
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生课题失败", zap.Error(err))
		return nil, err
	}

	// 3. 校验周期
	if _, err := s.repo.AcademicPeriod.GetByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	// 4. 校验导师：1-2 名、不重复、角色为 advisor
	seen := make(map[string]bool, len(req.AdvisorIDs))
	for _, advisorID := range req.AdvisorIDs {
		if seen[advisorID] {
			return nil, ErrDuplicateAdvisors
		}
		seen[advisorID] = true

		advisor, err := s.repo.User.GetByID(ctx, advisorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAdvisorNotFound
			}
			s.logger.Error("查询导师失败", zap.Error(err))
			return nil, err
		}
		if advisor.Role != model.RoleAdvisor {
			return nil, ErrAdvisorNotFound
		}
	}

	// 5. 创建课题与导师关联（单事务）
	project := &model.ThesisProject{
		StudentID:  req.StudentID,
		PeriodID:   req.PeriodID,
		Title:      req.Title,
		ThesisType: req.ThesisType,
		Status:     model.ProjectStatusActive,
	}
	project.CreatedBy = &callerID
	project.UpdatedBy = &callerID

	supervisors := make([]model.ProjectSupervisor, 0, len(req.AdvisorIDs))
	for i, advisorID := range req.AdvisorIDs {
		supervisors = append(supervisors, model.ProjectSupervisor{
			AdvisorID:       advisorID,
			SupervisorOrder: i + 1,
		})
	}

	if err := s.repo.ThesisProject.Create(ctx, project, supervisors); err != nil {
		s.logger.Error("创建课题失败", zap.Error(err))
		return nil, err
	}

	return s.load(ctx, project.ProjectID)
}

func (s *thesisProjectService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.ProjectResponse, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}

	// 访问控制：管理员、课题学生、课题导师
	if callerRole != model.RoleAdmin && project.StudentID != callerID && !project.HasSupervisor(callerID) {
		return nil, ErrNotProjectMember
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *thesisProjectService) GetMine(ctx context.Context, studentID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.ThesisProject.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *thesisProjectService) ListByAdvisor(ctx context.Context, advisorID string, req *dto.PaginationRequest) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.ThesisProject.ListByAdvisor(ctx, advisorID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询导师课题失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, total, nil
}

func (s *thesisProjectService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateProjectStatusRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}

	project.Status = req.Status
	project.UpdatedBy = &callerID
	if err := s.repo.ThesisProject.UpdateStatus(ctx, project); err != nil {
		s.logger.Error("更新课题状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.load(ctx, id)
}

// ── 内部辅助 ──

func (s *thesisProjectService) load(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func toProjectResponse(project *model.ThesisProject) dto.ProjectResponse {
	resp := dto.ProjectResponse{
		ID:         project.ProjectID,
		Title:      project.Title,
		ThesisType: project.ThesisType,
		Status:     project.Status,
		CreatedAt:  project.CreatedAt.Format(time.RFC3339),
	}
	if project.Student != nil {
		resp.Student = &dto.UserBrief{
			ID:    project.Student.UserID,
			Name:  project.Student.Name,
			Email: project.Student.Email,
			NIM:   project.Student.NIM,
			Role:  project.Student.Role,
		}
	}
	if project.Period != nil {
		period := toPeriodResponse(project.Period)
		resp.Period = &period
	}
	for _, sup := range project.Supervisors {
		sr := dto.SupervisorResponse{SupervisorOrder: sup.SupervisorOrder}
		if sup.Advisor != nil {
			sr.Advisor = &dto.UserBrief{
				ID:    sup.Advisor.UserID,
				Name:  sup.Advisor.Name,
				Email: sup.Advisor.Email,
				Role:  sup.Advisor.Role,
			}
		}
		resp.Supervisors = append(resp.Supervisors, sr)
	}
	return resp
}
