package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// WeeklyScheduleHandler 周排班模板 HTTP 处理器
type WeeklyScheduleHandler struct {
	weeklySvc service.WeeklyScheduleService
}

// NewWeeklyScheduleHandler 创建 WeeklyScheduleHandler
func NewWeeklyScheduleHandler(weeklySvc service.WeeklyScheduleService) *WeeklyScheduleHandler {
	return &WeeklyScheduleHandler{weeklySvc: weeklySvc}
}

// List 员工的周模板
// GET /api/v1/weekly-schedules?employee_id=
func (h *WeeklyScheduleHandler) List(c *gin.Context) {
	var req dto.WeeklyScheduleQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	list, err := h.weeklySvc.List(c.Request.Context(), employeeID)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Set 设置周模板，按星期覆盖（管理员）
// PUT /api/v1/weekly-schedules
func (h *WeeklyScheduleHandler) Set(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.SetWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.weeklySvc.Set(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Delete 删除周模板，day_of_week 为空时删除全部（管理员）
// DELETE /api/v1/weekly-schedules?employee_id=&day_of_week=
func (h *WeeklyScheduleHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.WeeklyScheduleQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	deleted, err := h.weeklySvc.Delete(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": deleted})
}

// Apply 将周模板展开为日期排班（管理员）
// POST /api/v1/weekly-schedules/apply
func (h *WeeklyScheduleHandler) Apply(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.ApplyWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.weeklySvc.Apply(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *WeeklyScheduleHandler) handleWeeklyError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrDuplicateWeekday):
		response.BadRequest(c, 16001, "同一星期不能重复设置")
	case errors.Is(err, service.ErrWeeklyTemplateEmpty):
		response.BadRequest(c, 16002, "该员工尚未设置周排班模板")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 16003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrDateRangeTooLong):
		response.BadRequest(c, 16004, "日期范围不能超过 366 天")
	case errors.Is(err, service.ErrScheduleTypeMismatch):
		response.BadRequest(c, 15006, "班次类型与休息设置不一致")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.BadRequest(c, 12003, "员工已停用")
	default:
		response.InternalError(c)
	}
}
