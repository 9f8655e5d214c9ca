package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// DateScheduleHandler 日期排班模块 HTTP 处理器
type DateScheduleHandler struct {
	scheduleSvc service.DateScheduleService
}

// NewDateScheduleHandler 创建 DateScheduleHandler
func NewDateScheduleHandler(scheduleSvc service.DateScheduleService) *DateScheduleHandler {
	return &DateScheduleHandler{scheduleSvc: scheduleSvc}
}

// Calendar 员工年度日历，附带当前选择状态
// GET /api/v1/date-schedules/calendar?employee_id=&year=&selected=
func (h *DateScheduleHandler) Calendar(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	result, err := h.scheduleSvc.Calendar(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// List 员工年度排班列表
// GET /api/v1/date-schedules?employee_id=&year=
func (h *DateScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	list, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetByID 排班详情
// GET /api/v1/date-schedules/:id
func (h *DateScheduleHandler) GetByID(c *gin.Context) {
	result, err := h.scheduleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	if _, ok := scopeEmployee(c, result.EmployeeID); !ok {
		return
	}

	response.OK(c, result)
}

// Delete 删除单条排班（管理员）
// DELETE /api/v1/date-schedules/:id
func (h *DateScheduleHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkCreate 为选中的未排班日期批量创建班次（管理员）
// POST /api/v1/date-schedules/bulk
func (h *DateScheduleHandler) BulkCreate(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.BulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.BulkCreate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, result)
}

// BulkModify 替换选中的已排班日期的班次（管理员）
// PUT /api/v1/date-schedules/bulk
func (h *DateScheduleHandler) BulkModify(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.BulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.BulkModify(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// BulkDelete 批量删除排班（管理员）
// POST /api/v1/date-schedules/bulk-delete
func (h *DateScheduleHandler) BulkDelete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.BulkDelete(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// CopyTargets 可复制的目标员工列表（管理员）
// GET /api/v1/date-schedules/copy-targets?source_employee_id=&year=
func (h *DateScheduleHandler) CopyTargets(c *gin.Context) {
	var req dto.CopyTargetsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.scheduleSvc.CopyTargets(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Copy 复制年度排班到其他员工（管理员）
// POST /api/v1/date-schedules/copy
func (h *DateScheduleHandler) Copy(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.CopyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.Copy(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScheduleError 统一处理排班模块业务错误
func (h *DateScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrDateScheduleNotFound):
		response.NotFound(c, 15001, "排班不存在")
	case errors.Is(err, attendance.ErrMixedSelection),
		errors.Is(err, attendance.ErrDayNotSelectable),
		errors.Is(err, attendance.ErrEmptySelection):
		response.BadRequest(c, 15002, err.Error())
	case errors.Is(err, service.ErrDatesAlreadyScheduled):
		response.BadRequest(c, 15003, "所选日期均已排班，请使用修改操作")
	case errors.Is(err, service.ErrDatesNotScheduled):
		response.BadRequest(c, 15004, "所选日期尚未排班，请使用创建操作")
	case errors.Is(err, service.ErrScheduleConflict):
		response.Conflict(c, 15005, "所选日期已存在排班，请刷新后重试")
	case errors.Is(err, service.ErrScheduleTypeMismatch):
		response.BadRequest(c, 15006, "班次类型与休息设置不一致")
	case errors.Is(err, service.ErrEmptyDeleteRequest):
		response.BadRequest(c, 15007, err.Error())
	case errors.Is(err, service.ErrCopySourceEmpty):
		response.BadRequest(c, 15008, "源员工当年没有排班")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.BadRequest(c, 12003, "员工已停用")
	default:
		response.InternalError(c)
	}
}
