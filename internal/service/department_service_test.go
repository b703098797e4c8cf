package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
)

func setupDepartmentTest() (DepartmentService, *testSessionRepos) {
	repos := newTestSessionRepos()
	svc := NewDepartmentService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

func TestDepartmentCreate(t *testing.T) {
	svc, _ := setupDepartmentTest()

	dept, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "计算机学院"}, "admin-1")
	if err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}
	if dept.Name != "计算机学院" || dept.MemberCount != 0 {
		t.Errorf("创建结果不符: name=%s members=%d", dept.Name, dept.MemberCount)
	}

	if _, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "计算机学院"}, "admin-1"); !errors.Is(err, ErrDepartmentNameTaken) {
		t.Errorf("重名创建应返回 ErrDepartmentNameTaken，实际=%v", err)
	}
}

func TestDepartmentUpdate(t *testing.T) {
	svc, repos := setupDepartmentTest()
	repos.dept.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院"}
	repos.dept.depts["dept-2"] = &model.Department{DepartmentID: "dept-2", Name: "外国语学院"}

	// 改成其他院系已占用的名称
	if _, err := svc.Update(context.Background(), "dept-1", &dto.UpdateDepartmentRequest{Name: "外国语学院"}, "admin-1"); !errors.Is(err, ErrDepartmentNameTaken) {
		t.Errorf("改为已占用名称应返回 ErrDepartmentNameTaken，实际=%v", err)
	}

	// 改名为自身当前名称应被允许
	dept, err := svc.Update(context.Background(), "dept-1", &dto.UpdateDepartmentRequest{Name: "计算机学院"}, "admin-1")
	if err != nil {
		t.Fatalf("保持原名更新失败: %v", err)
	}
	if dept.Name != "计算机学院" {
		t.Errorf("名称不符: %s", dept.Name)
	}

	if _, err := svc.Update(context.Background(), "ghost", &dto.UpdateDepartmentRequest{Name: "新学院"}, "admin-1"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("更新不存在院系应返回 ErrDepartmentNotFound，实际=%v", err)
	}
}

func TestDepartmentDelete(t *testing.T) {
	svc, repos := setupDepartmentTest()
	repos.dept.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院"}
	repos.dept.depts["dept-2"] = &model.Department{DepartmentID: "dept-2", Name: "外国语学院"}
	repos.dept.members["dept-1"] = 3

	if err := svc.Delete(context.Background(), "dept-1", "admin-1"); !errors.Is(err, ErrDepartmentHasMembers) {
		t.Errorf("有成员的院系应拒绝删除，实际=%v", err)
	}

	if err := svc.Delete(context.Background(), "dept-2", "admin-1"); err != nil {
		t.Fatalf("删除空院系失败: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "dept-2"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("删除后查询应返回 ErrDepartmentNotFound，实际=%v", err)
	}
}

func TestDepartmentListWithMemberCount(t *testing.T) {
	svc, repos := setupDepartmentTest()
	repos.dept.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院"}
	repos.dept.members["dept-1"] = 5

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("查询院系列表失败: %v", err)
	}
	if len(list) != 1 || list[0].MemberCount != 5 {
		t.Errorf("列表应含 1 个院系且成员数 5，实际 len=%d", len(list))
	}
}
