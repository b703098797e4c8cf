package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
)

// ── 用户模块业务错误 ──

const maxRosterRows = 1000

var (
	ErrRosterNoData      = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrRosterTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxRosterRows)
	ErrRosterBadHeader   = errors.New("Excel 表头缺少必要列（姓名/学号/邮箱/院系）")
)

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	// ImportRoster 从 Excel 名册批量导入学生账号，初始密码为学号
	ImportRoster(ctx context.Context, reader io.Reader, callerID string) (*dto.RosterImportResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.DepartmentID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		NIM:          req.NIM,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.NIM != nil {
		user.NIM = *req.NIM
	}
	if req.DepartmentID != nil {
		user.DepartmentID = *req.DepartmentID
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(updated)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ImportRoster ──────────────────────

// rosterRow 名册解析中间结构
type rosterRow struct {
	Row      int // Excel 行号（1-based）
	Name     string
	NIM      string
	Email    string
	DeptName string
}

func (s *userService) ImportRoster(ctx context.Context, reader io.Reader, callerID string) (*dto.RosterImportResponse, error) {
	rows, err := parseRosterFile(reader)
	if err != nil {
		return nil, err
	}

	// 预加载院系，按名称查找
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("加载院系列表失败", zap.Error(err))
		return nil, err
	}
	deptByName := make(map[string]*model.Department, len(depts))
	for i := range depts {
		deptByName[depts[i].Name] = &depts[i]
	}

	resp := &dto.RosterImportResponse{TotalRows: len(rows)}
	var toCreate []model.User
	seenEmail := make(map[string]bool)

	for _, row := range rows {
		if row.Name == "" || row.NIM == "" || row.Email == "" || row.DeptName == "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 必填字段缺失", row.Row))
			continue
		}
		dept, ok := deptByName[row.DeptName]
		if !ok {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 院系不存在: %s", row.Row, row.DeptName))
			continue
		}
		if seenEmail[row.Email] {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 文件内邮箱重复: %s", row.Row, row.Email))
			continue
		}
		seenEmail[row.Email] = true

		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 邮箱已被注册: %s", row.Row, row.Email))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}

		// 初始密码为学号
		hash, err := bcrypt.GenerateFromPassword([]byte(row.NIM), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}

		user := model.User{
			Name:         row.Name,
			NIM:          row.NIM,
			Email:        row.Email,
			PasswordHash: string(hash),
			Role:         model.RoleStudent,
			DepartmentID: dept.DepartmentID,
		}
		user.CreatedBy = &callerID
		user.UpdatedBy = &callerID
		toCreate = append(toCreate, user)
	}

	if len(toCreate) > 0 {
		if err := s.repo.User.BatchCreate(ctx, toCreate); err != nil {
			s.logger.Error("批量创建用户失败", zap.Error(err))
			return nil, err
		}
	}
	resp.Imported = len(toCreate)
	return resp, nil
}

// parseRosterFile 解析名册 Excel，支持灵活列序
func parseRosterFile(reader io.Reader) ([]rosterRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析 Excel 文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrRosterNoData
	}

	colIndex := parseRosterHeader(excelRows[0])
	if colIndex["name"] < 0 || colIndex["nim"] < 0 || colIndex["email"] < 0 || colIndex["department"] < 0 {
		return nil, ErrRosterBadHeader
	}

	var rows []rosterRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := rosterRow{Row: i + 1}

		if idx := colIndex["name"]; idx < len(row) {
			item.Name = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["nim"]; idx < len(row) {
			item.NIM = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["email"]; idx < len(row) {
			item.Email = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["department"]; idx < len(row) {
			item.DeptName = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.Name == "" && item.NIM == "" && item.Email == "" && item.DeptName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrRosterNoData
	}
	if len(rows) > maxRosterRows {
		return nil, ErrRosterTooManyRows
	}
	return rows, nil
}

// parseRosterHeader 解析表头，返回列名 → 列索引映射
func parseRosterHeader(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"nim":        -1,
		"email":      -1,
		"department": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "姓名" || lower == "name":
			idx["name"] = i
		case lower == "学号" || lower == "nim":
			idx["nim"] = i
		case lower == "邮箱" || lower == "email":
			idx["email"] = i
		case lower == "院系" || lower == "department":
			idx["department"] = i
		}
	}
	return idx
}

// toUserResponse 转换用户为响应
func toUserResponse(user *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		NIM:       user.NIM,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.Department != nil {
		resp.Department = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
		}
	}
	return resp
}
