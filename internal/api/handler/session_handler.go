package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	pkgerrors "gradguide/backend/pkg/errors"
	"gradguide/backend/pkg/response"
	"gradguide/backend/pkg/timeutil"
)

// SessionHandler 指导会话模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// RequestSession 学生发起预约申请
// POST /api/v1/sessions/request
func (h *SessionHandler) RequestSession(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RequestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Request(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// OfferSession 导师发起邀约
// POST /api/v1/sessions/offer
func (h *SessionHandler) OfferSession(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.OfferSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Offer(c.Request.Context(), &req, advisorID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// DirectSchedule 导师直接排定会话，无需学生确认
// POST /api/v1/sessions/direct
func (h *SessionHandler) DirectSchedule(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DirectScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.DirectSchedule(c.Request.Context(), &req, advisorID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// UpdateSession 学生编辑待处理的申请
// PUT /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Update(c.Request.Context(), c.Param("id"), &req, studentID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// ApproveSession 导师批准申请
// POST /api/v1/sessions/:id/approve
func (h *SessionHandler) ApproveSession(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Approve(c.Request.Context(), c.Param("id"), &req, advisorID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// RejectSession 导师驳回申请，需给出理由
// POST /api/v1/sessions/:id/reject
func (h *SessionHandler) RejectSession(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败：驳回理由必填")
		return
	}

	session, err := h.sessionSvc.Reject(c.Request.Context(), c.Param("id"), &req, advisorID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// AcceptSession 学生接受邀约
// POST /api/v1/sessions/:id/accept
func (h *SessionHandler) AcceptSession(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Accept(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// DeclineSession 学生婉拒邀约
// POST /api/v1/sessions/:id/decline
func (h *SessionHandler) DeclineSession(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DeclineSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Decline(c.Request.Context(), c.Param("id"), &req, studentID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// CancelSession 学生取消申请或已批准的会话
// POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) CancelSession(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Cancel(c.Request.Context(), c.Param("id"), &req, studentID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// CompleteSession 导师完成会话并同步提交指导记录
// POST /api/v1/sessions/:id/complete
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败：指导记录内容必填")
		return
	}

	session, err := h.sessionSvc.Complete(c.Request.Context(), c.Param("id"), &req, advisorID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// GetSession 获取会话详情（课题成员或管理员）
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// ListSessions 按课题查询会话列表，支持状态过滤
// GET /api/v1/sessions?project_id=&status=
func (h *SessionHandler) ListSessions(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.ProjectID == "" {
		response.BadRequest(c, 10001, "project_id 必填")
		return
	}

	sessions, total, err := h.sessionSvc.ListByProject(c.Request.Context(), req.ProjectID, &req, callerID, callerRole)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, sessions, total, req.GetPage(), req.GetPageSize())
}

// ListAdvisorCalendar 导师查看日期范围内的指导日程
// GET /api/v1/sessions/calendar?start_date=&end_date=
func (h *SessionHandler) ListAdvisorCalendar(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AdvisorCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sessions, err := h.sessionSvc.ListAdvisorCalendar(c.Request.Context(), advisorID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// ListChangeLogs 查看会话状态变更历史
// GET /api/v1/sessions/:id/logs
func (h *SessionHandler) ListChangeLogs(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	logs, err := h.sessionSvc.ListChangeLogs(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

// GetGuidanceNote 查看会话的指导记录
// GET /api/v1/sessions/:id/note
func (h *SessionHandler) GetGuidanceNote(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	note, err := h.sessionSvc.GetNote(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, note)
}

// handleSessionError 统一处理指导会话模块业务错误
//
// 时段冲突返回 409 并附带冲突明细；版本条件写失败同样按 409 返回，
// 提示客户端重新拉取后重试。
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithDetails(c, http.StatusConflict, 25001, "时段冲突", gin.H{
			"conflicts": conflictErr.Conflicts,
		})
		return
	}

	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		response.Conflict(c, 25002, transitionErr.Error())
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrStaleState):
		response.Conflict(c, 25003, "会话状态已被其他操作更新，请刷新后重试")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 25004, "指导会话不存在")
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(c, 25012, "指导记录不存在")
	case errors.Is(err, service.ErrSessionTooShort):
		response.BadRequest(c, 25005, "会话时长低于最短要求")
	case errors.Is(err, service.ErrOutsideAvailability):
		response.BadRequest(c, 25006, "所选时段不在导师开放窗口内")
	case errors.Is(err, service.ErrSessionNotEditable):
		response.Conflict(c, 25007, "仅待处理状态的申请可编辑")
	case errors.Is(err, service.ErrNotSessionStudent):
		response.Forbidden(c, 25008, "只有课题学生可执行此操作")
	case errors.Is(err, service.ErrNotSessionAdvisor):
		response.Forbidden(c, 25009, "只有课题导师可执行此操作")
	case errors.Is(err, service.ErrParticipantInvalid):
		response.BadRequest(c, 25010, "团体指导参与人无效")
	case errors.Is(err, service.ErrDateOutsidePeriod):
		response.BadRequest(c, 25011, "会话日期不在学业周期范围内")
	case errors.Is(err, service.ErrDateInPast):
		response.BadRequest(c, 25013, "会话日期不能早于今天")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 23001, "论文课题不存在")
	case errors.Is(err, service.ErrProjectNotActive):
		response.Conflict(c, 23007, "课题非进行中状态")
	case errors.Is(err, service.ErrNotProjectMember):
		response.Forbidden(c, 23006, "无权访问该课题")
	case errors.Is(err, service.ErrBadTimeRange):
		response.BadRequest(c, 10001, "开始日期不能晚于结束日期")
	case errors.Is(err, timeutil.ErrBadTimeFormat):
		response.BadRequest(c, 10001, "时间格式须为 HH:MM")
	default:
		response.InternalError(c)
	}
}
