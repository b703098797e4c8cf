package dto

// ── 论文课题模块 DTO ──

// CreateProjectRequest 创建课题请求
// 导师按顺序给出，第一个为第一导师；1-2 名且不得重复
type CreateProjectRequest struct {
	StudentID  string   `json:"student_id"  binding:"required,uuid"`
	PeriodID   string   `json:"period_id"   binding:"required,uuid"`
	Title      string   `json:"title"       binding:"required,min=4,max=300"`
	ThesisType string   `json:"thesis_type" binding:"required,oneof=bachelor master"`
	AdvisorIDs []string `json:"advisor_ids" binding:"required,min=1,max=2,dive,uuid"`
}

// UpdateProjectStatusRequest 更新课题状态请求
type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE COMPLETED CANCELLED"`
}

// ── 响应 ──

// ProjectResponse 课题响应
type ProjectResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	ThesisType  string               `json:"thesis_type"`
	Status      string               `json:"status"`
	Student     *UserBrief           `json:"student,omitempty"`
	Period      *PeriodResponse      `json:"period,omitempty"`
	Supervisors []SupervisorResponse `json:"supervisors,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

// SupervisorResponse 课题导师响应
type SupervisorResponse struct {
	Advisor         *UserBrief `json:"advisor,omitempty"`
	SupervisorOrder int        `json:"supervisor_order"` // 1 = 第一导师
}
