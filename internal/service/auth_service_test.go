package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gradguide/backend/config"
	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupAuthTest() (AuthService, *testSessionRepos) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	repos := newTestSessionRepos()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repos.toRepository(), jwtMgr, nil, zap.NewNop())
	return svc, repos
}

func seedAuthUser(repos *testSessionRepos, userID, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       userID,
		Name:         "测试用户",
		NIM:          "2022001",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
		DepartmentID: "dept-1",
	}
	repos.user.users[userID] = user
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@campus.test",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功, 实际返回错误: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken 不应为空")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken 不应为空")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("ExpiresIn 期望 900, 实际 %d", result.ExpiresIn)
	}
	if result.User.Email != "zhangsan@campus.test" {
		t.Errorf("Email 期望 zhangsan@campus.test, 实际 %s", result.User.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@campus.test",
		Password: "wrong_password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials, 实际 %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _ := setupAuthTest()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@campus.test",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials, 实际 %v", err)
	}
}

// ── 注册测试 ──

func TestRegister_Success(t *testing.T) {
	svc, repos := setupAuthTest()
	repos.invite.codes["invite-CODE1"] = &model.InviteCode{
		InviteCodeID: "invite-CODE1",
		Code:         "CODE1",
		Role:         model.RoleAdvisor,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:   "CODE1",
		Name:         "王老师",
		Email:        "wang@campus.test",
		Password:     "password123",
		DepartmentID: "dept-1",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	// 角色由邀请码决定，不由请求方指定
	if result.Role != model.RoleAdvisor {
		t.Errorf("Role 期望 advisor, 实际 %s", result.Role)
	}
	if result.Email != "wang@campus.test" {
		t.Errorf("Email 期望 wang@campus.test, 实际 %s", result.Email)
	}

	// 邀请码应被标记使用，二次注册拒绝
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:   "CODE1",
		Name:         "李老师",
		Email:        "li@campus.test",
		Password:     "password123",
		DepartmentID: "dept-1",
	})
	if !errors.Is(err, ErrInviteUsed) {
		t.Errorf("重复使用邀请码期望 ErrInviteUsed, 实际 %v", err)
	}
}

func TestRegister_InvalidInvite(t *testing.T) {
	svc, _ := setupAuthTest()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:   "NOSUCH",
		Name:         "新用户",
		Email:        "new@campus.test",
		Password:     "password123",
		DepartmentID: "dept-1",
	})
	if !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("期望 ErrInviteInvalid, 实际 %v", err)
	}
}

func TestRegister_ExpiredInvite(t *testing.T) {
	svc, repos := setupAuthTest()
	repos.invite.codes["invite-EXP1"] = &model.InviteCode{
		InviteCodeID: "invite-EXP1",
		Code:         "EXP1",
		Role:         model.RoleStudent,
		ExpiresAt:    time.Now().Add(-1 * time.Hour),
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:   "EXP1",
		Name:         "新用户",
		Email:        "new@campus.test",
		Password:     "password123",
		DepartmentID: "dept-1",
	})
	if !errors.Is(err, ErrInviteExpired) {
		t.Errorf("期望 ErrInviteExpired, 实际 %v", err)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "taken@campus.test", "password123")
	repos.invite.codes["invite-CODE2"] = &model.InviteCode{
		InviteCodeID: "invite-CODE2",
		Code:         "CODE2",
		Role:         model.RoleStudent,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:   "CODE2",
		Name:         "重复用户",
		Email:        "taken@campus.test",
		Password:     "password123",
		DepartmentID: "dept-1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken, 实际 %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestRefreshToken_Success(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	loginResult, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@campus.test",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	result, err := svc.RefreshToken(context.Background(), loginResult.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("新 AccessToken 不应为空")
	}
}

func TestRefreshToken_AccessTokenNotAllowed(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	loginResult, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@campus.test",
		Password: "password123",
	})

	// access token 不能用于刷新
	_, err := svc.RefreshToken(context.Background(), loginResult.AccessToken)
	if !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _ := setupAuthTest()

	_, err := svc.RefreshToken(context.Background(), "not.a.token")
	if !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}

// ── GenerateInvite 测试 ──

func TestGenerateInvite(t *testing.T) {
	svc, repos := setupAuthTest()

	result, err := svc.GenerateInvite(context.Background(), &dto.GenerateInviteRequest{
		Role: model.RoleStudent,
	}, "admin-1")
	if err != nil {
		t.Fatalf("GenerateInvite 应成功: %v", err)
	}
	if len(result.InviteCode) != 16 {
		t.Errorf("邀请码长度期望 16, 实际 %d", len(result.InviteCode))
	}
	if result.Role != model.RoleStudent {
		t.Errorf("Role 期望 student, 实际 %s", result.Role)
	}
	if len(repos.invite.codes) != 1 {
		t.Errorf("邀请码期望持久化 1 条, 实际 %d 条", len(repos.invite.codes))
	}

	// 默认 7 天有效期
	stored, err := repos.invite.GetByCode(context.Background(), result.InviteCode)
	if err != nil {
		t.Fatalf("查询邀请码失败: %v", err)
	}
	days := time.Until(stored.ExpiresAt).Hours() / 24
	if days < 6.9 || days > 7.1 {
		t.Errorf("默认有效期期望约 7 天, 实际 %.1f 天", days)
	}
}

// ── ChangePassword 测试 ──

func TestChangePassword(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	err := svc.ChangePassword(context.Background(), "student-1", &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpass456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@campus.test",
		Password: "newpass456",
	}); err != nil {
		t.Fatalf("修改密码后应能用新密码登录: %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "student-1", "zhangsan@campus.test", "password123")

	err := svc.ChangePassword(context.Background(), "student-1", &dto.ChangePasswordRequest{
		OldPassword: "wrong_old",
		NewPassword: "newpass456",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong, 实际 %v", err)
	}
}
