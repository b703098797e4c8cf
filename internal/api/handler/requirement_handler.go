package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/service"
	"gradguide/backend/pkg/response"
)

// RequirementHandler 最低指导次数模块 HTTP 处理器
type RequirementHandler struct {
	requirementSvc service.RequirementService
}

// NewRequirementHandler 创建 RequirementHandler
func NewRequirementHandler(requirementSvc service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirementSvc: requirementSvc}
}

// GetStatus 获取单课题的达标评估
// GET /api/v1/projects/:id/requirement
func (h *RequirementHandler) GetStatus(c *gin.Context) {
	status, err := h.requirementSvc.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.OK(c, status)
}

// ListUnmet 获取周期内未达标名单（管理员）
// GET /api/v1/periods/:id/unmet
func (h *RequirementHandler) ListUnmet(c *gin.Context) {
	rows, err := h.requirementSvc.ListUnmet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// ListPolicies 获取各论文类型的最低指导次数策略
// GET /api/v1/policies
func (h *RequirementHandler) ListPolicies(c *gin.Context) {
	policies, err := h.requirementSvc.ListPolicies(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": policies})
}

// UpdatePolicy 更新指定论文类型的最低指导次数策略（管理员）
// PUT /api/v1/policies/:thesis_type
func (h *RequirementHandler) UpdatePolicy(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	thesisType := c.Param("thesis_type")
	if thesisType != "bachelor" && thesisType != "master" {
		response.BadRequest(c, 10001, "论文类型须为 bachelor 或 master")
		return
	}

	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	policy, err := h.requirementSvc.UpdatePolicy(c.Request.Context(), thesisType, &req, callerID)
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.OK(c, policy)
}

// handleRequirementError 统一处理达标评估模块业务错误
func (h *RequirementHandler) handleRequirementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPolicyNotFound):
		response.NotFound(c, 26001, "指导次数策略不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 23001, "论文课题不存在")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 22001, "学业周期不存在")
	default:
		response.InternalError(c)
	}
}
