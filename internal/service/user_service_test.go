package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
)

func setupUserTest() (UserService, *testSessionRepos) {
	repos := newTestSessionRepos()
	svc := NewUserService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

// buildRosterXLSX 构造内存中的名册 Excel
func buildRosterXLSX(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("计算单元格坐标失败: %v", err)
			}
			if err := f.SetCellValue(sheet, axis, cell); err != nil {
				t.Fatalf("写入单元格失败: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成 Excel 失败: %v", err)
	}
	return buf
}

func TestUserCreateAndGet(t *testing.T) {
	svc, _ := setupUserTest()

	created, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "王老师",
		Email:        "wang@univ.ac.id",
		Password:     "superSecret1",
		Role:         model.RoleAdvisor,
		DepartmentID: "dept-1",
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	if created.Role != model.RoleAdvisor {
		t.Errorf("角色应为 advisor，实际=%s", created.Role)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if got.Email != "wang@univ.ac.id" {
		t.Errorf("邮箱不匹配: %s", got.Email)
	}
}

func TestUserCreateEmailTaken(t *testing.T) {
	svc, repos := setupUserTest()
	seedAuthUser(repos, "user-1", "taken@univ.ac.id", "pw123456")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "李四",
		Email:        "taken@univ.ac.id",
		Password:     "superSecret1",
		Role:         model.RoleStudent,
		DepartmentID: "dept-1",
	}, "admin-1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("重复邮箱应返回 ErrEmailTaken，实际=%v", err)
	}
}

func TestUserListFilters(t *testing.T) {
	svc, repos := setupUserTest()
	repos.user.users["u1"] = &model.User{UserID: "u1", Name: "张三", Role: model.RoleStudent, DepartmentID: "dept-1"}
	repos.user.users["u2"] = &model.User{UserID: "u2", Name: "王老师", Role: model.RoleAdvisor, DepartmentID: "dept-1"}
	repos.user.users["u3"] = &model.User{UserID: "u3", Name: "赵老师", Role: model.RoleAdvisor, DepartmentID: "dept-2"}

	list, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleAdvisor})
	if err != nil {
		t.Fatalf("查询列表失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("按角色过滤应得 2 人，实际 total=%d len=%d", total, len(list))
	}

	list, total, err = svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleAdvisor, DepartmentID: "dept-2"})
	if err != nil {
		t.Fatalf("查询列表失败: %v", err)
	}
	if total != 1 || list[0].Name != "赵老师" {
		t.Errorf("按角色+院系过滤应仅剩赵老师，实际 total=%d", total)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	svc, repos := setupUserTest()
	repos.user.users["u1"] = &model.User{UserID: "u1", Name: "张三", Role: model.RoleStudent, DepartmentID: "dept-1"}

	newName := "张三丰"
	updated, err := svc.Update(context.Background(), "u1", &dto.UpdateUserRequest{Name: &newName}, "admin-1")
	if err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}
	if updated.Name != "张三丰" {
		t.Errorf("姓名应更新为张三丰，实际=%s", updated.Name)
	}

	if err := svc.Delete(context.Background(), "u1", "admin-1"); err != nil {
		t.Fatalf("删除用户失败: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "u1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("删除后查询应返回 ErrUserNotFound，实际=%v", err)
	}

	if err := svc.Delete(context.Background(), "ghost", "admin-1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("删除不存在用户应返回 ErrUserNotFound，实际=%v", err)
	}
}

func TestImportRoster_Success(t *testing.T) {
	svc, repos := setupUserTest()
	repos.dept.depts["dept-cs"] = &model.Department{DepartmentID: "dept-cs", Name: "计算机学院"}

	buf := buildRosterXLSX(t, [][]string{
		{"姓名", "学号", "邮箱", "院系"},
		{"张三", "2026010101", "zhangsan@univ.ac.id", "计算机学院"},
		{"李四", "2026010102", "lisi@univ.ac.id", "计算机学院"},
	})

	result, err := svc.ImportRoster(context.Background(), buf, "admin-1")
	if err != nil {
		t.Fatalf("名册导入失败: %v", err)
	}
	if result.TotalRows != 2 || result.Imported != 2 || result.Skipped != 0 {
		t.Fatalf("导入统计不符: total=%d imported=%d skipped=%d",
			result.TotalRows, result.Imported, result.Skipped)
	}

	// 初始密码为学号
	user, err := repos.user.GetByEmail(context.Background(), "zhangsan@univ.ac.id")
	if err != nil {
		t.Fatalf("导入的学生应可查询到: %v", err)
	}
	if user.Role != model.RoleStudent {
		t.Errorf("导入学生角色应为 student，实际=%s", user.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("2026010101")) != nil {
		t.Error("初始密码应为学号")
	}
}

func TestImportRoster_SkipsBadRows(t *testing.T) {
	svc, repos := setupUserTest()
	repos.dept.depts["dept-cs"] = &model.Department{DepartmentID: "dept-cs", Name: "计算机学院"}
	seedAuthUser(repos, "user-1", "exists@univ.ac.id", "pw123456")

	buf := buildRosterXLSX(t, [][]string{
		{"姓名", "学号", "邮箱", "院系"},
		{"张三", "2026010101", "zhangsan@univ.ac.id", "计算机学院"},
		// 依次触发：必填缺失、院系不存在、邮箱已注册、文件内重复
		{"", "2026010102", "noname@univ.ac.id", "计算机学院"},
		{"王五", "2026010103", "wangwu@univ.ac.id", "不存在的学院"},
		{"赵六", "2026010104", "exists@univ.ac.id", "计算机学院"},
		{"钱七", "2026010105", "zhangsan@univ.ac.id", "计算机学院"},
	})

	result, err := svc.ImportRoster(context.Background(), buf, "admin-1")
	if err != nil {
		t.Fatalf("名册导入失败: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 4 {
		t.Errorf("应导入 1 跳过 4，实际 imported=%d skipped=%d", result.Imported, result.Skipped)
	}
	if len(result.Errors) != 4 {
		t.Errorf("应有 4 条行级错误，实际=%d", len(result.Errors))
	}
}

func TestImportRoster_HeaderAndEmpty(t *testing.T) {
	svc, repos := setupUserTest()
	repos.dept.depts["dept-cs"] = &model.Department{DepartmentID: "dept-cs", Name: "计算机学院"}

	// 表头缺少院系列
	buf := buildRosterXLSX(t, [][]string{
		{"姓名", "学号", "邮箱"},
		{"张三", "2026010101", "zhangsan@univ.ac.id"},
	})
	if _, err := svc.ImportRoster(context.Background(), buf, "admin-1"); !errors.Is(err, ErrRosterBadHeader) {
		t.Errorf("缺列表头应返回 ErrRosterBadHeader，实际=%v", err)
	}

	// 仅表头无数据
	buf = buildRosterXLSX(t, [][]string{{"姓名", "学号", "邮箱", "院系"}})
	if _, err := svc.ImportRoster(context.Background(), buf, "admin-1"); !errors.Is(err, ErrRosterNoData) {
		t.Errorf("空名册应返回 ErrRosterNoData，实际=%v", err)
	}
}
