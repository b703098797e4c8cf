package dto

// ── 指导会话模块 DTO ──

// RequestSessionRequest 学生发起的预约申请（落地为 PENDING）
type RequestSessionRequest struct {
	ProjectID      string   `json:"project_id"      binding:"required,uuid"`
	AdvisorID      string   `json:"advisor_id"      binding:"required,uuid"`
	ScheduledDate  string   `json:"scheduled_date"  binding:"required,datetime=2006-01-02"`
	StartTime      string   `json:"start_time"      binding:"required"`
	EndTime        string   `json:"end_time"        binding:"required"`
	SessionType    string   `json:"session_type"    binding:"omitempty,oneof=INDIVIDUAL GROUP"`
	ParticipantIDs []string `json:"participant_ids" binding:"omitempty,max=20,dive,uuid"` // 团体指导附加学生
	Notes          *string  `json:"notes"           binding:"omitempty,max=1000"`
}

// OfferSessionRequest 导师发起的邀约（落地为 OFFERED）
type OfferSessionRequest struct {
	ProjectID     string  `json:"project_id"     binding:"required,uuid"`
	ScheduledDate string  `json:"scheduled_date" binding:"required,datetime=2006-01-02"`
	StartTime     string  `json:"start_time"     binding:"required"`
	EndTime       string  `json:"end_time"       binding:"required"`
	Location      *string `json:"location"       binding:"omitempty,max=200"`
	SessionType   string  `json:"session_type"   binding:"omitempty,oneof=INDIVIDUAL GROUP"`
	Notes         *string `json:"notes"          binding:"omitempty,max=1000"`
}

// DirectScheduleRequest 导师直接排定（落地为 APPROVED）
type DirectScheduleRequest struct {
	ProjectID      string   `json:"project_id"      binding:"required,uuid"`
	ScheduledDate  string   `json:"scheduled_date"  binding:"required,datetime=2006-01-02"`
	StartTime      string   `json:"start_time"      binding:"required"`
	EndTime        string   `json:"end_time"        binding:"required"`
	Location       *string  `json:"location"        binding:"omitempty,max=200"`
	SessionType    string   `json:"session_type"    binding:"omitempty,oneof=INDIVIDUAL GROUP"`
	ParticipantIDs []string `json:"participant_ids" binding:"omitempty,max=20,dive,uuid"`
	Notes          *string  `json:"notes"           binding:"omitempty,max=1000"`
}

// UpdateSessionRequest 学生编辑 PENDING 申请请求
type UpdateSessionRequest struct {
	ScheduledDate *string `json:"scheduled_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	Notes         *string `json:"notes" binding:"omitempty,max=1000"`
}

// ApproveSessionRequest 导师批准请求，可同时指定地点
type ApproveSessionRequest struct {
	Location *string `json:"location" binding:"omitempty,max=200"`
}

// RejectSessionRequest 导师驳回请求，必须给出理由
type RejectSessionRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// DeclineSessionRequest 学生婉拒邀约请求
type DeclineSessionRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// CancelSessionRequest 取消已批准/待处理会话请求
type CancelSessionRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// CompleteSessionRequest 导师完成会话并写指导记录请求
type CompleteSessionRequest struct {
	Content       string  `json:"content"         binding:"required,min=2"`
	FollowUpTasks *string `json:"follow_up_tasks" binding:"omitempty,max=2000"`
}

// SessionListRequest 会话列表查询参数
type SessionListRequest struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=PENDING OFFERED APPROVED REJECTED DECLINED COMPLETED CANCELLED"`
	PaginationRequest
}

// AdvisorCalendarRequest 导师日程查询参数，日期范围为闭区间
type AdvisorCalendarRequest struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// ── 响应 ──

// ConflictInfo 单条冲突明细
// Source 取值：teaching | course | guidance | unavailable
type ConflictInfo struct {
	Source    string `json:"source"`
	Label     string `json:"label"` // 课程名 / 会话说明 / 不可用原因
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SessionResponse 会话响应
type SessionResponse struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id"`
	Project       *ProjectResponse `json:"project,omitempty"`
	ScheduledDate string           `json:"scheduled_date"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
	Location      string           `json:"location"`
	SessionType   string           `json:"session_type"`
	Status        string           `json:"status"`
	CreatedByRole string           `json:"created_by_role"`
	Notes         *string          `json:"notes,omitempty"`
	Participants  []UserBrief      `json:"participants,omitempty"`
	Version       int              `json:"version"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// SessionChangeLogResponse 会话变更日志响应
type SessionChangeLogResponse struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"session_id"`
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    string  `json:"actor_id"`
	ActorRole  string  `json:"actor_role"`
	Reason     *string `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// GuidanceNoteResponse 指导记录响应
type GuidanceNoteResponse struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	Advisor       *UserBrief `json:"advisor,omitempty"`
	Content       string     `json:"content"`
	FollowUpTasks *string    `json:"follow_up_tasks,omitempty"`
	CreatedAt     string     `json:"created_at"`
}
