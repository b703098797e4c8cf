package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportUnmetRequirements 导出周期内未达标名单为 Excel（管理员）
// GET /api/v1/export/unmet?period_id=xxx
func (h *ExportHandler) ExportUnmetRequirements(c *gin.Context) {
	periodID := c.Query("period_id")
	if periodID == "" {
		response.BadRequest(c, 10001, "period_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportUnmetRequirements(c.Request.Context(), periodID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 22001, "学业周期不存在")
	case errors.Is(err, service.ErrExportNoRows):
		response.NotFound(c, 16101, "该周期内所有课题均已达标")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
