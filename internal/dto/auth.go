package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 邀请注册请求
type RegisterRequest struct {
	InviteCode   string `json:"invite_code"   binding:"required"`
	Name         string `json:"name"          binding:"required,min=2,max=50"`
	NIM          string `json:"nim"           binding:"omitempty,max=20"`
	Email        string `json:"email"         binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=64"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// GenerateInviteRequest 生成邀请码请求
type GenerateInviteRequest struct {
	Role        string `json:"role"         binding:"required,oneof=advisor student"`
	ExpiresDays int    `json:"expires_days" binding:"omitempty,min=1,max=90"` // 默认 7 天
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// ── 响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
	ExpiresAt  string `json:"expires_at"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
