package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// JobRoleHandler 岗位模块 HTTP 处理器
type JobRoleHandler struct {
	roleSvc service.JobRoleService
}

// NewJobRoleHandler 创建 JobRoleHandler
func NewJobRoleHandler(roleSvc service.JobRoleService) *JobRoleHandler {
	return &JobRoleHandler{roleSvc: roleSvc}
}

// List 岗位列表
// GET /api/v1/roles
func (h *JobRoleHandler) List(c *gin.Context) {
	roles, err := h.roleSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": roles})
}

// GetByID 岗位详情
// GET /api/v1/roles/:id
func (h *JobRoleHandler) GetByID(c *gin.Context) {
	role, err := h.roleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleJobRoleError(c, err)
		return
	}

	response.OK(c, role)
}

// Create 创建岗位
// POST /api/v1/roles
func (h *JobRoleHandler) Create(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.JobRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	role, err := h.roleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleJobRoleError(c, err)
		return
	}

	response.Created(c, role)
}

// Update 更新岗位
// PUT /api/v1/roles/:id
func (h *JobRoleHandler) Update(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.JobRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	role, err := h.roleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleJobRoleError(c, err)
		return
	}

	response.OK(c, role)
}

// Delete 删除岗位
// DELETE /api/v1/roles/:id
func (h *JobRoleHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.roleSvc.Delete(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleJobRoleError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *JobRoleHandler) handleJobRoleError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrJobRoleNotFound):
		response.NotFound(c, 14001, "岗位不存在")
	case errors.Is(err, service.ErrJobRoleNameExists):
		response.Conflict(c, 14002, "岗位名称已存在")
	default:
		response.InternalError(c)
	}
}
