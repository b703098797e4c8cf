package dto

// ── 院系模块 DTO ──

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// UpdateDepartmentRequest 更新院系请求
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// DepartmentDetailResponse 院系详情响应
type DepartmentDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}
