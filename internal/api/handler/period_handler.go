package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
)

// PeriodHandler 学业周期模块 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.AcademicPeriodService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.AcademicPeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods 获取学业周期列表
// GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// GetActivePeriod 获取当前激活的学业周期
// GET /api/v1/periods/active
func (h *PeriodHandler) GetActivePeriod(c *gin.Context) {
	period, err := h.periodSvc.GetActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActivePeriod) {
			response.NotFound(c, 22002, "当前无激活的学业周期")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, period)
}

// GetPeriod 获取学业周期详情
// GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	period, err := h.periodSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// CreatePeriod 创建学业周期（管理员）
// POST /api/v1/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// UpdatePeriod 更新学业周期（管理员）
// PUT /api/v1/periods/:id
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	period, err := h.periodSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// ActivatePeriod 激活学业周期并取消其他周期的激活状态（管理员）
// POST /api/v1/periods/:id/activate
func (h *PeriodHandler) ActivatePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Activate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// ArchivePeriod 归档学业周期（管理员）
// POST /api/v1/periods/:id/archive
func (h *PeriodHandler) ArchivePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.periodSvc.Archive(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePeriodError 统一处理学业周期模块业务错误
func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 22001, "学业周期不存在")
	case errors.Is(err, service.ErrPeriodBadDates):
		response.BadRequest(c, 22003, "周期日期不合法")
	case errors.Is(err, service.ErrPeriodArchived):
		response.Conflict(c, 22004, "已归档的学业周期不可修改")
	default:
		response.InternalError(c)
	}
}
