package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// Create 创建员工（管理员）
// POST /api/v1/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.employeeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 员工列表（管理员）
// GET /api/v1/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 员工详情，员工本人或管理员可查看
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetByID(c *gin.Context) {
	id, ok := scopeEmployee(c, c.Param("id"))
	if !ok {
		return
	}

	result, err := h.employeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 更新员工（管理员）
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.employeeSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, result)
}

// Deactivate 停用员工（管理员）
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.employeeSvc.Deactivate(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, nil)
}

// Activate 重新启用员工（管理员）
// POST /api/v1/employees/:id/activate
func (h *EmployeeHandler) Activate(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.employeeSvc.Activate(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, nil)
}

// Import 通过 Excel 批量导入员工（管理员）
// POST /api/v1/employees/import
func (h *EmployeeHandler) Import(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件（字段名 file）")
		return
	}
	defer file.Close()

	rows, err := h.employeeSvc.ParseImportFile(file)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	result, err := h.employeeSvc.Import(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12002, "邮箱已被使用")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.BadRequest(c, 12003, "员工已停用")
	case errors.Is(err, service.ErrCannotDeactivateSelf):
		response.BadRequest(c, 12004, "不能停用自己的账号")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, service.ErrDepartmentInactive):
		response.BadRequest(c, 13004, "部门已停用")
	case errors.Is(err, service.ErrJobRoleNotFound):
		response.NotFound(c, 14001, "岗位不存在")
	default:
		response.InternalError(c)
	}
}
