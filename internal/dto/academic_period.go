package dto

// ── 学业周期模块 DTO ──

// CreatePeriodRequest 创建学业周期请求
// 日期统一使用 YYYY-MM-DD
type CreatePeriodRequest struct {
	Name            string `json:"name"             binding:"required,min=2,max=100"`
	StartDate       string `json:"start_date"       binding:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date"         binding:"required,datetime=2006-01-02"`
	Checkpoint1Date string `json:"checkpoint1_date" binding:"required,datetime=2006-01-02"`
	Checkpoint2Date string `json:"checkpoint2_date" binding:"required,datetime=2006-01-02"`
}

// UpdatePeriodRequest 更新学业周期请求
type UpdatePeriodRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	StartDate       *string `json:"start_date"       binding:"omitempty,datetime=2006-01-02"`
	EndDate         *string `json:"end_date"         binding:"omitempty,datetime=2006-01-02"`
	Checkpoint1Date *string `json:"checkpoint1_date" binding:"omitempty,datetime=2006-01-02"`
	Checkpoint2Date *string `json:"checkpoint2_date" binding:"omitempty,datetime=2006-01-02"`
}

// PeriodResponse 学业周期响应
type PeriodResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Checkpoint1Date string `json:"checkpoint1_date"`
	Checkpoint2Date string `json:"checkpoint2_date"`
	IsActive        bool   `json:"is_active"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}
