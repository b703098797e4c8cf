package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"gradguide/backend/internal/model"
)

// ── 测试辅助 ──

func setupExportTest() (ExportService, *testSessionRepos) {
	repos := newTestSessionRepos()
	repoAgg := repos.toRepository()
	requirement := NewRequirementService(repoAgg, zap.NewNop())
	svc := NewExportService(repoAgg, requirement, zap.NewNop())
	return svc, repos
}

// ── ExportUnmetRequirements 测试 ──

func TestExportService_PeriodNotFound(t *testing.T) {
	svc, _ := setupExportTest()

	_, _, err := svc.ExportUnmetRequirements(context.Background(), "period-miss")
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound, 实际 %v", err)
	}
}

func TestExportService_AllMet(t *testing.T) {
	svc, repos := setupExportTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// 全部达标 → 无可导出内容
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-02-01", "2026-03-10", "2026-04-01", "2026-05-20"})

	_, _, err := svc.ExportUnmetRequirements(context.Background(), "period-1")
	if !errors.Is(err, ErrExportNoRows) {
		t.Errorf("期望 ErrExportNoRows, 实际 %v", err)
	}
}

func TestExportService_Success(t *testing.T) {
	svc, repos := setupExportTest()
	seedRequirementScene(repos)
	seedPolicies(repos)

	// project-1 达标，project-2 两个检查点均未达标
	seedProjectWithSessions(repos, "project-1", "student-1", model.ThesisTypeBachelor,
		[]string{"2026-02-01", "2026-03-10", "2026-04-01", "2026-05-20"})
	seedProjectWithSessions(repos, "project-2", "student-2", model.ThesisTypeBachelor,
		[]string{"2026-02-01"})

	buf, filename, err := svc.ExportUnmetRequirements(context.Background(), "period-1")
	if err != nil {
		t.Fatalf("ExportUnmetRequirements 应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出的 Excel buffer 不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾, 实际 %s", filename)
	}
	// Excel .xlsx 文件以 PK (0x504B) 开头
	header := buf.Bytes()[:2]
	if header[0] != 0x50 || header[1] != 0x4B {
		t.Error("输出内容不是有效的 xlsx 文件格式（应以 PK 开头）")
	}
}
