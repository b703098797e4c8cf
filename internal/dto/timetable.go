package dto

// ── 课表模块 DTO ──

// CreateClassScheduleRequest 手动添加课表条目请求
type CreateClassScheduleRequest struct {
	CourseName   string  `json:"course_name"   binding:"required,min=1,max=100"`
	RepeatType   string  `json:"repeat_type"   binding:"required,oneof=weekly once"`
	DayOfWeek    *int    `json:"day_of_week"   binding:"omitempty,min=1,max=7"`
	SpecificDate *string `json:"specific_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    string  `json:"start_time"    binding:"required"`
	EndTime      string  `json:"end_time"      binding:"required"`
}

// UpdateClassScheduleRequest 更新课表条目请求
type UpdateClassScheduleRequest struct {
	CourseName *string `json:"course_name" binding:"omitempty,min=1,max=100"`
	DayOfWeek  *int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
}

// ── 响应 ──

// ClassScheduleResponse 课表条目响应
type ClassScheduleResponse struct {
	ID           string  `json:"id"`
	CourseName   string  `json:"course_name"`
	RepeatType   string  `json:"repeat_type"`
	DayOfWeek    int     `json:"day_of_week"`
	SpecificDate *string `json:"specific_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Source       string  `json:"source"`
	CreatedAt    string  `json:"created_at"`
}

// ICSImportResponse ICS 导入结果响应
type ICSImportResponse struct {
	TotalEvents int      `json:"total_events"`
	Imported    int      `json:"imported"`
	Skipped     int      `json:"skipped"`
	Warnings    []string `json:"warnings,omitempty"`
}
