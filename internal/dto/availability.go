package dto

// ── 可用性模块 DTO ──

// CreateWindowRequest 创建开放窗口请求
// weekly 必须给 day_of_week；once 必须给 specific_date
type CreateWindowRequest struct {
	RepeatType   string  `json:"repeat_type"   binding:"required,oneof=weekly once"`
	DayOfWeek    *int    `json:"day_of_week"   binding:"omitempty,min=1,max=7"`
	SpecificDate *string `json:"specific_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    string  `json:"start_time"    binding:"required"`
	EndTime      string  `json:"end_time"      binding:"required"`
}

// UpdateWindowRequest 更新开放窗口请求
type UpdateWindowRequest struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  *bool   `json:"is_active"`
}

// CreateBlockRequest 创建不可用时段请求
type CreateBlockRequest struct {
	RepeatType   string  `json:"repeat_type"   binding:"required,oneof=weekly once"`
	DayOfWeek    *int    `json:"day_of_week"   binding:"omitempty,min=1,max=7"`
	SpecificDate *string `json:"specific_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    string  `json:"start_time"    binding:"required"`
	EndTime      string  `json:"end_time"      binding:"required"`
	Reason       *string `json:"reason"        binding:"omitempty,max=200"`
}

// ResolveAvailabilityRequest 可用时段解析查询参数
type ResolveAvailabilityRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// ── 响应 ──

// WindowResponse 开放窗口响应
type WindowResponse struct {
	ID           string  `json:"id"`
	AdvisorID    string  `json:"advisor_id"`
	RepeatType   string  `json:"repeat_type"`
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	SpecificDate *string `json:"specific_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

// BlockResponse 不可用时段响应
type BlockResponse struct {
	ID           string  `json:"id"`
	AdvisorID    string  `json:"advisor_id"`
	RepeatType   string  `json:"repeat_type"`
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	SpecificDate *string `json:"specific_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Reason       *string `json:"reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// FreeSlot 解析得到的单个空闲区间
type FreeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// AvailabilityResponse 某导师某日可用时段解析结果
type AvailabilityResponse struct {
	AdvisorID string     `json:"advisor_id"`
	Date      string     `json:"date"`
	DayOfWeek int        `json:"day_of_week"`
	Slots     []FreeSlot `json:"slots"`
}
