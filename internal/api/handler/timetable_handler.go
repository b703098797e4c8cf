package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
	"gradguide/backend/pkg/timeutil"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// CreateSchedule 手动添加课表条目
// POST /api/v1/timetable
func (h *TimetableHandler) CreateSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClassScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedule, err := h.timetableSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, schedule)
}

// ListMySchedules 查看自己的课表
// GET /api/v1/timetable
func (h *TimetableHandler) ListMySchedules(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedules, err := h.timetableSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// UpdateSchedule 更新课表条目
// PUT /api/v1/timetable/:id
func (h *TimetableHandler) UpdateSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateClassScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedule, err := h.timetableSvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, schedule)
}

// DeleteSchedule 删除课表条目
// DELETE /api/v1/timetable/:id
func (h *TimetableHandler) DeleteSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.timetableSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS 上传 ICS 文件导入课表，覆盖既有 ics 来源条目
// POST /api/v1/timetable/import
func (h *TimetableHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件字段 file")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 15001, "文件读取失败")
		return
	}
	defer f.Close()

	result, err := h.timetableSvc.ImportICS(c.Request.Context(), f, userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// handleTimetableError 统一处理课表模块业务错误
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15002, "课表条目不存在")
	case errors.Is(err, service.ErrScheduleNotOwner):
		response.Forbidden(c, 15003, "无权操作他人课表")
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 15004, "ICS 文件中没有可导入的课程")
	case errors.Is(err, service.ErrBadTimeRange):
		response.BadRequest(c, 15005, "时间区间不合法")
	case errors.Is(err, service.ErrRepeatFieldsBad):
		response.BadRequest(c, 15006, "重复规则字段不合法")
	case errors.Is(err, timeutil.ErrBadTimeFormat):
		response.BadRequest(c, 15007, "时间格式须为 HH:MM")
	default:
		response.InternalError(c)
	}
}
