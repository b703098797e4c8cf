package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
)

// ProjectHandler 论文课题模块 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ThesisProjectService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ThesisProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// CreateProject 创建课题并指派导师（管理员）
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, project)
}

// GetProject 获取课题详情（课题成员或管理员）
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// GetMyProject 学生获取自己进行中的课题
// GET /api/v1/projects/mine
func (h *ProjectHandler) GetMyProject(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.GetMine(c.Request.Context(), studentID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// ListMyAdvisedProjects 导师获取名下课题列表
// GET /api/v1/projects/advised
func (h *ProjectHandler) ListMyAdvisedProjects(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	projects, total, err := h.projectSvc.ListByAdvisor(c.Request.Context(), advisorID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, projects, total, page.GetPage(), page.GetPageSize())
}

// UpdateProjectStatus 更新课题状态（管理员）
// PUT /api/v1/projects/:id/status
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.projectSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// handleProjectError 统一处理课题模块业务错误
func (h *ProjectHandler) handleProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 23001, "论文课题不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.BadRequest(c, 23002, "学生不存在")
	case errors.Is(err, service.ErrAdvisorNotFound):
		response.BadRequest(c, 23003, "导师不存在")
	case errors.Is(err, service.ErrDuplicateAdvisors):
		response.BadRequest(c, 23004, "课题导师不可重复")
	case errors.Is(err, service.ErrStudentHasProject):
		response.Conflict(c, 23005, "该学生已有进行中的课题")
	case errors.Is(err, service.ErrNotProjectMember):
		response.Forbidden(c, 23006, "无权访问该课题")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.BadRequest(c, 22001, "学业周期不存在")
	default:
		response.InternalError(c)
	}
}
