package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
)

func setupRequirementTest() (RequirementService, *testSessionRepos) {
	repos := newTestSessionRepos()
	repoAgg := repos.toRepository()
	svc := NewRequirementService(repoAgg, zap.NewNop())
	return svc, repos
}

// seedRequirementScene 周期 cp1=2026-03-15 / cp2=2026-06-01
func seedRequirementScene(repos *testSessionRepos) {
	repos.period.periods["period-1"] = &model.AcademicPeriod{
		PeriodID:        "period-1",
		Name:            "2025/2026 第二学期",
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Checkpoint1Date: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Checkpoint2Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
	}
}

func seedPolicies(repos *testSessionRepos) {
	repos.policy.policies[model.ThesisTypeBachelor] = &model.RequirementPolicy{
		PolicyID: "policy-b", ThesisType: model.ThesisTypeBachelor,
		RequiredBeforeCheckpoint1: 2, RequiredBeforeCheckpoint2: 2, Version: 1,
	}
	repos.policy.policies[model.ThesisTypeMaster] = &model.RequirementPolicy{
		PolicyID: "policy-m", ThesisType: model.ThesisTypeMaster,
		RequiredBeforeCheckpoint1: 3, RequiredBeforeCheckpoint2: 3, Version: 1,
	}
}

func seedProjectWithSessions(repos *testSessionRepos, projectID, studentID, thesisType string, completedDates []string) {
	student := &model.User{UserID: studentID, Name: "学生" + studentID, NIM: "21" + studentID, Role: model.RoleStudent}
	repos.user.users[studentID] = student
	advisor := repos.user.users["advisor-1"]
	if advisor == nil {
		advisor = &model.User{UserID: "advisor-1", Name: "王老师", Role: model.RoleAdvisor}
		repos.user.users["advisor-1"] = advisor
	}

	repos.project.projects[projectID] = &model.ThesisProject{
		ProjectID:  projectID,
		StudentID:  studentID,
		PeriodID:   "period-1",
		Title:      "课题 " + projectID,
		ThesisType: thesisType,
		Status:     model.ProjectStatusActive,
		Period:     repos.period.periods["period-1"],
		Student:    student,
		Supervisors: []model.ProjectSupervisor{
			{ProjectID: projectID, AdvisorID: "advisor-1", SupervisorOrder: 1, Advisor: advisor},
		},
	}

	for i, d := range completedDates {
		date, _ := time.Parse("2006-01-02", d)
		sessionID := fmt.Sprintf("%s-done-%d", projectID, i+1)
		repos.session.sessions[sessionID] = &model.GuidanceSession{
			SessionID: sessionID, ProjectID: projectID,
			ScheduledDate: date, StartTime: "09:00", EndTime: "10:00",
			Status: model.SessionStatusCompleted,
		}
	}
}

// ── GetStatus ──

func TestRequirementStatusMet(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// 检查点1前 2 次，检查点之间 2 次 → 全部达标
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-02-01", "2026-03-10", "2026-04-01", "2026-05-20"})

	status, err := svc.GetStatus(context.Background(), "project-1")
	if err != nil {
		t.Fatalf("GetStatus 失败: %v", err)
	}
	if !status.Checkpoint1.Met || status.Checkpoint1.Completed != 2 {
		t.Errorf("检查点1 应达标 2/2，实际=%+v", status.Checkpoint1)
	}
	if !status.Checkpoint2.Met || status.Checkpoint2.Completed != 2 {
		t.Errorf("检查点2 应达标 2/2，实际=%+v", status.Checkpoint2)
	}
	if status.Cumulative2 != 4 {
		t.Errorf("累计口径应为 4，实际=%d", status.Cumulative2)
	}
	if !status.AllMet {
		t.Error("AllMet 应为 true")
	}
}

func TestRequirementStatusBetweenCheckpointCounting(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// 4 次全在检查点1前：cp1 达标，cp1-cp2 之间 0 次 → cp2 不达标
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-01-10", "2026-02-01", "2026-02-20", "2026-03-10"})

	status, err := svc.GetStatus(context.Background(), "project-1")
	if err != nil {
		t.Fatalf("GetStatus 失败: %v", err)
	}
	if !status.Checkpoint1.Met || status.Checkpoint1.Completed != 4 {
		t.Errorf("检查点1 应达标 4/2，实际=%+v", status.Checkpoint1)
	}
	if status.Checkpoint2.Met || status.Checkpoint2.Completed != 0 {
		t.Errorf("检查点2 按区间口径应为 0/2 未达标，实际=%+v", status.Checkpoint2)
	}
	if status.AllMet {
		t.Error("AllMet 应为 false")
	}
}

func TestRequirementStatusBoundaryDates(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// 检查点当天的会话计入下一窗口：cp1 当天 → 区间口径；cp2 当天 → 不计入
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-03-14", "2026-03-15", "2026-03-15", "2026-05-31"})

	status, err := svc.GetStatus(context.Background(), "project-1")
	if err != nil {
		t.Fatalf("GetStatus 失败: %v", err)
	}
	if status.Checkpoint1.Completed != 1 {
		t.Errorf("检查点1 前应只计 1 次（当天不计入），实际=%d", status.Checkpoint1.Completed)
	}
	if status.Checkpoint2.Completed != 3 {
		t.Errorf("检查点1 当天的 2 次应计入区间口径，实际=%d", status.Checkpoint2.Completed)
	}
	if status.Cumulative2 != 4 {
		t.Errorf("累计口径应为 4，实际=%d", status.Cumulative2)
	}

	// 检查点2 当天及之后的完成不计入任何口径
	seedProjectWithSessions(repos, "project-2", "student-2", model.ThesisTypeBachelor,
		[]string{"2026-06-01", "2026-06-10"})
	status, err = svc.GetStatus(context.Background(), "project-2")
	if err != nil {
		t.Fatalf("GetStatus 失败: %v", err)
	}
	if status.Checkpoint2.Completed != 0 || status.Cumulative2 != 0 {
		t.Errorf("检查点2 当天起不应计入，区间=%d 累计=%d",
			status.Checkpoint2.Completed, status.Cumulative2)
	}
}

func TestRequirementStatusMasterPolicy(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// 硕士 3/3：检查点1前只有 2 次 → 未达标
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeMaster,
		[]string{"2026-02-01", "2026-03-01", "2026-04-01", "2026-04-20", "2026-05-10"})

	status, err := svc.GetStatus(context.Background(), "project-1")
	if err != nil {
		t.Fatalf("GetStatus 失败: %v", err)
	}
	if status.Checkpoint1.Required != 3 || status.Checkpoint1.Met {
		t.Errorf("硕士检查点1 应为 2/3 未达标，实际=%+v", status.Checkpoint1)
	}
	if !status.Checkpoint2.Met || status.Checkpoint2.Completed != 3 {
		t.Errorf("硕士检查点2 应为 3/3 达标，实际=%+v", status.Checkpoint2)
	}
}

func TestRequirementStatusPolicyMissing(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)

	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor, nil)

	if _, err := svc.GetStatus(context.Background(), "project-1"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("缺少策略应返回 ErrPolicyNotFound，实际=%v", err)
	}
}

// ── ListUnmet ──

func TestListUnmet(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// project-1 全达标；project-2 两个检查点都未达标
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-02-01", "2026-03-10", "2026-04-01", "2026-05-20"})
	seedProjectWithSessions(repos, "project-2", "student-2", model.ThesisTypeBachelor,
		[]string{"2026-02-01"})

	rows, err := svc.ListUnmet(context.Background(), "period-1")
	if err != nil {
		t.Fatalf("ListUnmet 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("应有 2 行未达标记录，实际=%+v", rows)
	}
	for _, row := range rows {
		if row.ProjectID != "project-2" {
			t.Errorf("未达标行应全部属于 project-2，实际=%+v", row)
		}
	}

	// 已完结课题不参与考核
	repos.project.projects["project-2"].Status = model.ProjectStatusCancelled
	rows, err = svc.ListUnmet(context.Background(), "period-1")
	if err != nil {
		t.Fatalf("ListUnmet 失败: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("非进行中课题不应出现在名单中: %+v", rows)
	}
}

// ── 策略管理 ──

func TestUpdatePolicy(t *testing.T) {
	svc, repos := setupRequirementTest()
	seedPolicies(repos)

	resp, err := svc.UpdatePolicy(context.Background(), model.ThesisTypeBachelor, &dto.UpdatePolicyRequest{
		RequiredBeforeCheckpoint1: 3,
		RequiredBeforeCheckpoint2: 4,
	}, "admin-1")
	if err != nil {
		t.Fatalf("UpdatePolicy 失败: %v", err)
	}
	if resp.RequiredBeforeCheckpoint1 != 3 || resp.RequiredBeforeCheckpoint2 != 4 {
		t.Errorf("策略应更新为 3/4，实际=%+v", resp)
	}

	if _, err := svc.UpdatePolicy(context.Background(), "phd", &dto.UpdatePolicyRequest{
		RequiredBeforeCheckpoint1: 1,
		RequiredBeforeCheckpoint2: 1,
	}, "admin-1"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("未知论文类型应返回 ErrPolicyNotFound，实际=%v", err)
	}
}
