package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
)

// ── 达标模块业务错误 ──

var (
	ErrPolicyNotFound = errors.New("指导次数策略不存在")
)

// RequirementService 最低指导次数考核接口
//
// 口径：按严格小于划分窗口，检查点1 统计 cp1 之前完成的会话，检查点2 统计
// cp1（含）至 cp2 之前完成的会话，检查点当日计入下一窗口。累计口径
// Cumulative2 仅作附加信息返回。
type RequirementService interface {
	GetStatus(ctx context.Context, projectID string) (*dto.RequirementStatusResponse, error)
	ListUnmet(ctx context.Context, periodID string) ([]dto.UnmetRequirementRow, error)
	ListPolicies(ctx context.Context) ([]dto.PolicyResponse, error)
	UpdatePolicy(ctx context.Context, thesisType string, req *dto.UpdatePolicyRequest, callerID string) (*dto.PolicyResponse, error)
}

type requirementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRequirementService 创建 RequirementService 实例
func NewRequirementService(repo *repository.Repository, logger *zap.Logger) RequirementService {
	return &requirementService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// GetStatus — 单课题达标评估
// ════════════════════════════════════════════════════════════

func (s *requirementService) GetStatus(ctx context.Context, projectID string) (*dto.RequirementStatusResponse, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}
	if project.Period == nil {
		return nil, ErrPeriodNotFound
	}
	return s.evaluate(ctx, project)
}

func (s *requirementService) evaluate(ctx context.Context, project *model.ThesisProject) (*dto.RequirementStatusResponse, error) {
	policy, err := s.repo.RequirementPolicy.GetByThesisType(ctx, project.ThesisType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		s.logger.Error("查询指导次数策略失败", zap.Error(err))
		return nil, err
	}

	sessions, err := s.repo.GuidanceSession.ListCompletedByProject(ctx, project.ProjectID)
	if err != nil {
		s.logger.Error("查询已完成会话失败", zap.Error(err))
		return nil, err
	}

	cp1 := project.Period.Checkpoint1Date
	cp2 := project.Period.Checkpoint2Date

	// 检查点按严格小于划分：检查点当日的会话计入下一窗口
	var beforeCp1, betweenCp, beforeCp2 int
	for i := range sessions {
		d := sessions[i].ScheduledDate
		if d.Before(cp1) {
			beforeCp1++
		} else if d.Before(cp2) {
			betweenCp++
		}
		if d.Before(cp2) {
			beforeCp2++
		}
	}

	resp := &dto.RequirementStatusResponse{
		ProjectID:  project.ProjectID,
		ThesisType: project.ThesisType,
		Checkpoint1: dto.CheckpointStatus{
			Required:  policy.RequiredBeforeCheckpoint1,
			Completed: beforeCp1,
			Met:       beforeCp1 >= policy.RequiredBeforeCheckpoint1,
			Deadline:  cp1.Format(dateLayout),
		},
		Checkpoint2: dto.CheckpointStatus{
			Required:  policy.RequiredBeforeCheckpoint2,
			Completed: betweenCp,
			Met:       betweenCp >= policy.RequiredBeforeCheckpoint2,
			Deadline:  cp2.Format(dateLayout),
		},
		Cumulative2: beforeCp2,
	}
	resp.AllMet = resp.Checkpoint1.Met && resp.Checkpoint2.Met
	if project.Student != nil {
		resp.Student = &dto.UserBrief{
			ID:    project.Student.UserID,
			Name:  project.Student.Name,
			Email: project.Student.Email,
			NIM:   project.Student.NIM,
			Role:  project.Student.Role,
		}
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// ListUnmet — 周期内未达标名单
// ════════════════════════════════════════════════════════════

func (s *requirementService) ListUnmet(ctx context.Context, periodID string) ([]dto.UnmetRequirementRow, error) {
	if _, err := s.repo.AcademicPeriod.GetByID(ctx, periodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学业周期失败", zap.Error(err))
		return nil, err
	}

	projects, err := s.repo.ThesisProject.ListActiveByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询周期课题失败", zap.Error(err))
		return nil, err
	}

	rows := make([]dto.UnmetRequirementRow, 0)
	for i := range projects {
		project := &projects[i]
		status, err := s.evaluate(ctx, project)
		if err != nil {
			if errors.Is(err, ErrPolicyNotFound) {
				s.logger.Warn("课题缺少对应策略，评估跳过",
					zap.String("project_id", project.ProjectID),
					zap.String("thesis_type", project.ThesisType))
				continue
			}
			return nil, err
		}

		if !status.Checkpoint1.Met {
			rows = append(rows, buildUnmetRow(project, "cp1", status.Checkpoint1))
		}
		if !status.Checkpoint2.Met {
			rows = append(rows, buildUnmetRow(project, "cp2", status.Checkpoint2))
		}
	}
	return rows, nil
}

func buildUnmetRow(project *model.ThesisProject, checkpoint string, cs dto.CheckpointStatus) dto.UnmetRequirementRow {
	row := dto.UnmetRequirementRow{
		ProjectID:  project.ProjectID,
		ThesisType: project.ThesisType,
		Title:      project.Title,
		Checkpoint: checkpoint,
		Required:   cs.Required,
		Completed:  cs.Completed,
	}
	if project.Student != nil {
		row.StudentName = project.Student.Name
		row.StudentNIM = project.Student.NIM
	}
	names := make([]string, 0, len(project.Supervisors))
	for _, sup := range project.Supervisors {
		if sup.Advisor != nil {
			names = append(names, sup.Advisor.Name)
		}
	}
	row.AdvisorNames = strings.Join(names, "、")
	return row
}

// ════════════════════════════════════════════════════════════
// 策略管理
// ════════════════════════════════════════════════════════════

func (s *requirementService) ListPolicies(ctx context.Context) ([]dto.PolicyResponse, error) {
	policies, err := s.repo.RequirementPolicy.List(ctx)
	if err != nil {
		s.logger.Error("查询策略列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		result = append(result, toPolicyResponse(&p))
	}
	return result, nil
}

func (s *requirementService) UpdatePolicy(ctx context.Context, thesisType string, req *dto.UpdatePolicyRequest, callerID string) (*dto.PolicyResponse, error) {
	policy, err := s.repo.RequirementPolicy.GetByThesisType(ctx, thesisType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		s.logger.Error("查询指导次数策略失败", zap.Error(err))
		return nil, err
	}

	policy.RequiredBeforeCheckpoint1 = req.RequiredBeforeCheckpoint1
	policy.RequiredBeforeCheckpoint2 = req.RequiredBeforeCheckpoint2
	policy.UpdatedBy = &callerID
	if err := s.repo.RequirementPolicy.Update(ctx, policy); err != nil {
		s.logger.Error("更新指导次数策略失败", zap.Error(err))
		return nil, err
	}

	resp := toPolicyResponse(policy)
	return &resp, nil
}

func toPolicyResponse(policy *model.RequirementPolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		ID:                        policy.PolicyID,
		ThesisType:                policy.ThesisType,
		RequiredBeforeCheckpoint1: policy.RequiredBeforeCheckpoint1,
		RequiredBeforeCheckpoint2: policy.RequiredBeforeCheckpoint2,
	}
}
