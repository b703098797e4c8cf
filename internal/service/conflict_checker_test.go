package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gradguide/backend/internal/model"
	"gradguide/backend/pkg/timeutil"
)

func TestCheckAdvisorConflicts(t *testing.T) {
	repos := newTestSessionRepos()
	checker := NewConflictChecker(repos.toRepository())

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // 周一

	// 周一授课 10:00-12:00
	repos.schedule.schedules["cs-1"] = &model.ClassSchedule{
		ClassScheduleID: "cs-1", UserID: "advisor-1", CourseName: "操作系统",
		RepeatType: model.RepeatWeekly, DayOfWeek: 1,
		StartTime: "10:00", EndTime: "12:00",
	}
	// 单次不可用 14:00-15:00
	reason := "学院例会"
	repos.block.blocks["block-1"] = &model.UnavailabilityBlock{
		BlockID: "block-1", AdvisorID: "advisor-1",
		RepeatType: model.RepeatOnce, SpecificDate: &date,
		StartTime: "14:00", EndTime: "15:00", Reason: &reason,
	}

	blocking := []string{model.SessionStatusApproved}

	conflicts, err := checker.CheckAdvisor(context.Background(), "advisor-1", date, "11:00", "11:30", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Source != ConflictSourceTeaching || conflicts[0].Label != "操作系统" {
		t.Errorf("应报授课冲突，实际=%+v", conflicts)
	}

	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date, "14:30", "15:30", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Source != ConflictSourceUnavailable || conflicts[0].Label != reason {
		t.Errorf("应报不可用冲突且带原因，实际=%+v", conflicts)
	}

	// 半开区间：紧邻不算冲突
	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date, "12:00", "13:00", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("紧邻时段不应冲突: %+v", conflicts)
	}

	// 周二不受周一授课影响
	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date.AddDate(0, 0, 1), "10:00", "11:00", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("其他日期不应冲突: %+v", conflicts)
	}
}

func TestCheckAdvisorSessionConflicts(t *testing.T) {
	repos := newTestSessionRepos()
	checker := NewConflictChecker(repos.toRepository())

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	repos.project.projects["project-1"] = &model.ThesisProject{
		ProjectID: "project-1", StudentID: "student-1",
		Status: model.ProjectStatusActive,
		Supervisors: []model.ProjectSupervisor{
			{ProjectID: "project-1", AdvisorID: "advisor-1", SupervisorOrder: 1},
		},
	}
	repos.session.sessions["session-1"] = &model.GuidanceSession{
		SessionID: "session-1", ProjectID: "project-1",
		ScheduledDate: date, StartTime: "09:00", EndTime: "10:00",
		Status: model.SessionStatusApproved,
	}

	blocking := []string{model.SessionStatusApproved}

	conflicts, err := checker.CheckAdvisor(context.Background(), "advisor-1", date, "09:30", "10:30", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Source != ConflictSourceGuidance {
		t.Fatalf("应报会话冲突，实际=%+v", conflicts)
	}

	// 排除自身
	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date, "09:30", "10:30", blocking, "session-1")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("排除自身后不应冲突: %+v", conflicts)
	}

	// OFFERED 不在阻塞状态列表时不冲突
	repos.session.sessions["session-2"] = &model.GuidanceSession{
		SessionID: "session-2", ProjectID: "project-1",
		ScheduledDate: date, StartTime: "10:00", EndTime: "11:00",
		Status: model.SessionStatusOffered,
	}
	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date, "10:00", "11:00", blocking, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("OFFERED 默认不占用时段: %+v", conflicts)
	}

	conflicts, err = checker.CheckAdvisor(context.Background(), "advisor-1", date, "10:00", "11:00",
		[]string{model.SessionStatusApproved, model.SessionStatusOffered}, "")
	if err != nil {
		t.Fatalf("CheckAdvisor 失败: %v", err)
	}
	if len(conflicts) != 1 {
		t.Errorf("OFFERED 纳入阻塞状态后应冲突: %+v", conflicts)
	}
}

func TestCheckStudentConflicts(t *testing.T) {
	repos := newTestSessionRepos()
	checker := NewConflictChecker(repos.toRepository())

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	// 学生周一课程
	repos.schedule.schedules["cs-1"] = &model.ClassSchedule{
		ClassScheduleID: "cs-1", UserID: "student-1", CourseName: "高等数学",
		RepeatType: model.RepeatWeekly, DayOfWeek: 1,
		StartTime: "08:00", EndTime: "09:40",
	}

	conflicts, err := checker.CheckStudent(context.Background(), "student-1", date, "09:00", "10:00",
		[]string{model.SessionStatusApproved}, "")
	if err != nil {
		t.Fatalf("CheckStudent 失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Source != ConflictSourceCourse || conflicts[0].Label != "高等数学" {
		t.Errorf("应报课程冲突，实际=%+v", conflicts)
	}

	// 团体参与的会话也占用学生时段
	repos.project.projects["project-1"] = &model.ThesisProject{
		ProjectID: "project-1", StudentID: "student-9",
		Status: model.ProjectStatusActive,
		Supervisors: []model.ProjectSupervisor{
			{ProjectID: "project-1", AdvisorID: "advisor-1", SupervisorOrder: 1},
		},
	}
	repos.session.sessions["session-1"] = &model.GuidanceSession{
		SessionID: "session-1", ProjectID: "project-1",
		ScheduledDate: date, StartTime: "15:00", EndTime: "16:00",
		Status: model.SessionStatusApproved,
		Participants: []model.SessionParticipant{
			{SessionID: "session-1", StudentID: "student-1"},
		},
	}

	conflicts, err = checker.CheckStudent(context.Background(), "student-1", date, "15:30", "16:30",
		[]string{model.SessionStatusApproved}, "")
	if err != nil {
		t.Fatalf("CheckStudent 失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Source != ConflictSourceGuidance {
		t.Errorf("团体参与会话应构成冲突，实际=%+v", conflicts)
	}
}

// 存储中出现坏时间格式应上抛错误而不是漏报冲突
func TestCheckAdvisorBadStoredTime(t *testing.T) {
	repos := newTestSessionRepos()
	checker := NewConflictChecker(repos.toRepository())

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	repos.project.projects["project-1"] = &model.ThesisProject{
		ProjectID: "project-1", StudentID: "student-1",
		Status: model.ProjectStatusActive,
		Supervisors: []model.ProjectSupervisor{
			{ProjectID: "project-1", AdvisorID: "advisor-1", SupervisorOrder: 1},
		},
	}
	repos.session.sessions["session-bad"] = &model.GuidanceSession{
		SessionID: "session-bad", ProjectID: "project-1",
		ScheduledDate: date, StartTime: "9am", EndTime: "10:00",
		Status: model.SessionStatusApproved,
	}

	_, err := checker.CheckAdvisor(context.Background(), "advisor-1", date, "09:00", "10:00",
		[]string{model.SessionStatusApproved}, "")
	if !errors.Is(err, timeutil.ErrBadTimeFormat) {
		t.Fatalf("坏时间格式应返回 ErrBadTimeFormat，实际=%v", err)
	}
}
