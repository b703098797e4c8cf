package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
	"gradguide/backend/pkg/timeutil"
)

// AvailabilityHandler 导师可预约时段模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// CreateWindow 导师添加开放窗口
// POST /api/v1/availability/windows
func (h *AvailabilityHandler) CreateWindow(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	window, err := h.availabilitySvc.CreateWindow(c.Request.Context(), advisorID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.Created(c, window)
}

// UpdateWindow 导师更新开放窗口
// PUT /api/v1/availability/windows/:id
func (h *AvailabilityHandler) UpdateWindow(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	window, err := h.availabilitySvc.UpdateWindow(c.Request.Context(), c.Param("id"), advisorID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, window)
}

// DeleteWindow 导师删除开放窗口
// DELETE /api/v1/availability/windows/:id
func (h *AvailabilityHandler) DeleteWindow(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.DeleteWindow(c.Request.Context(), c.Param("id"), advisorID); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListWindows 导师查看自己的开放窗口
// GET /api/v1/availability/windows
func (h *AvailabilityHandler) ListWindows(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	windows, err := h.availabilitySvc.ListWindows(c.Request.Context(), advisorID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": windows})
}

// CreateBlock 导师添加不可用时段
// POST /api/v1/availability/blocks
func (h *AvailabilityHandler) CreateBlock(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	block, err := h.availabilitySvc.CreateBlock(c.Request.Context(), advisorID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.Created(c, block)
}

// DeleteBlock 导师删除不可用时段
// DELETE /api/v1/availability/blocks/:id
func (h *AvailabilityHandler) DeleteBlock(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.DeleteBlock(c.Request.Context(), c.Param("id"), advisorID); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListBlocks 导师查看自己的不可用时段
// GET /api/v1/availability/blocks
func (h *AvailabilityHandler) ListBlocks(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	blocks, err := h.availabilitySvc.ListBlocks(c.Request.Context(), advisorID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": blocks})
}

// ResolveAvailability 解析某导师某日的可预约空闲区间
// GET /api/v1/advisors/:id/availability?date=2026-03-02
func (h *AvailabilityHandler) ResolveAvailability(c *gin.Context) {
	var req dto.ResolveAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败：date 须为 YYYY-MM-DD")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, 10001, "日期格式须为 YYYY-MM-DD")
		return
	}

	result, err := h.availabilitySvc.Resolve(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAvailabilityError 统一处理可预约时段模块业务错误
func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWindowNotFound):
		response.NotFound(c, 24001, "开放窗口不存在")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 24002, "不可用时段不存在")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, 24003, "只能操作自己的数据")
	case errors.Is(err, service.ErrBadTimeRange):
		response.BadRequest(c, 24004, "时间区间不合法")
	case errors.Is(err, service.ErrRepeatFieldsBad):
		response.BadRequest(c, 24005, "重复规则字段不合法")
	case errors.Is(err, service.ErrWindowOverlapping):
		response.Conflict(c, 24006, "与已有窗口时间重叠")
	case errors.Is(err, timeutil.ErrBadTimeFormat):
		response.BadRequest(c, 24007, "时间格式须为 HH:MM")
	default:
		response.InternalError(c)
	}
}
