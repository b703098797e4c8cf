package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role         string `form:"role"          binding:"omitempty,oneof=admin advisor student"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// CreateUserRequest 管理员直接创建用户请求
type CreateUserRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=50"`
	NIM          string `json:"nim"           binding:"omitempty,max=20"`
	Email        string `json:"email"         binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=64"`
	Role         string `json:"role"          binding:"required,oneof=advisor student"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=50"`
	NIM          *string `json:"nim"           binding:"omitempty,max=20"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// ── 响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	NIM        string              `json:"nim,omitempty"`
	Role       string              `json:"role"`
	Department *DepartmentResponse `json:"department,omitempty"`
	CreatedAt  string              `json:"created_at"`
}

// RosterImportResponse 名册导入结果响应
type RosterImportResponse struct {
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"` // 按行号列出的失败原因
}
