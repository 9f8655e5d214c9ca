package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// WorkdayHandler 打卡与每日工作记录 HTTP 处理器
type WorkdayHandler struct {
	workdaySvc service.WorkdayService
}

// NewWorkdayHandler 创建 WorkdayHandler
func NewWorkdayHandler(workdaySvc service.WorkdayService) *WorkdayHandler {
	return &WorkdayHandler{workdaySvc: workdaySvc}
}

// ────────────────────── 打卡 ──────────────────────

// ClockIn 上班打卡
// POST /api/v1/time-entries/clock-in
func (h *WorkdayHandler) ClockIn(c *gin.Context) {
	h.clock(c, attendance.EntryClockIn)
}

// BreakStart 开始休息
// POST /api/v1/time-entries/break-start
func (h *WorkdayHandler) BreakStart(c *gin.Context) {
	h.clock(c, attendance.EntryBreakStart)
}

// BreakEnd 结束休息
// POST /api/v1/time-entries/break-end
func (h *WorkdayHandler) BreakEnd(c *gin.Context) {
	h.clock(c, attendance.EntryBreakEnd)
}

// ClockOut 下班打卡
// POST /api/v1/time-entries/clock-out
func (h *WorkdayHandler) ClockOut(c *gin.Context) {
	h.clock(c, attendance.EntryClockOut)
}

func (h *WorkdayHandler) clock(c *gin.Context, event attendance.EntryType) {
	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.workdaySvc.Clock(c.Request.Context(), employeeID, event)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, result)
}

// Entries 某天的打卡记录，默认本人当天
// GET /api/v1/time-entries?employee_id=&date=
func (h *WorkdayHandler) Entries(c *gin.Context) {
	var req dto.TimeEntryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}
	if employeeID == "" {
		employeeID = c.GetString(ctxEmployeeID)
	}

	list, err := h.workdaySvc.Entries(c.Request.Context(), employeeID, req.Date)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ────────────────────── 每日工作记录 ──────────────────────

// Today 本人当天的工作状态
// GET /api/v1/daily-workday/today
func (h *WorkdayHandler) Today(c *gin.Context) {
	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.workdaySvc.Today(c.Request.Context(), employeeID)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, result)
}

// List 区间内的工作记录，普通员工只能查看本人
// GET /api/v1/daily-workday?employee_id=&from=&to=
func (h *WorkdayHandler) List(c *gin.Context) {
	var req dto.WorkdayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	list, err := h.workdaySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateManual 手工录入工作日（管理员）
// POST /api/v1/daily-workday?force=
func (h *WorkdayHandler) CreateManual(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var q dto.ForceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	var req dto.ManualWorkdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.workdaySvc.CreateManual(c.Request.Context(), &req, q.Force, callerID)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 修改工作日（管理员）
// PUT /api/v1/daily-workday/:id?force=
func (h *WorkdayHandler) Update(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var q dto.ForceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	var req dto.UpdateWorkdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.workdaySvc.Update(c.Request.Context(), c.Param("id"), &req, q.Force, callerID)
	if err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除工作日及其打卡记录（管理员）
// DELETE /api/v1/daily-workday/:id?force=
func (h *WorkdayHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var q dto.ForceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.workdaySvc.Delete(c.Request.Context(), c.Param("id"), q.Force, callerID); err != nil {
		h.handleWorkdayError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleWorkdayError 统一处理打卡与工作日业务错误
func (h *WorkdayHandler) handleWorkdayError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrWorkdayNotFound):
		response.NotFound(c, 17001, "工作日记录不存在")
	case errors.Is(err, service.ErrWorkdayLocked):
		response.Conflict(c, 17002, "该工作日已通过打卡完成，如需修改请使用强制模式")
	case errors.Is(err, service.ErrMissingClockIn):
		response.BadRequest(c, 17003, "设置下班时间前必须先有上班时间")
	case errors.Is(err, service.ErrClockConflict):
		response.Conflict(c, 17004, "打卡冲突，请刷新后重试")
	case errors.Is(err, attendance.ErrInvalidTransition):
		response.Conflict(c, 17005, "当前状态下不允许该打卡操作")
	case errors.Is(err, attendance.ErrEventOutOfOrder):
		response.BadRequest(c, 17006, "打卡时间不能早于上一次打卡")
	case errors.Is(err, attendance.ErrClockOutBeforeIn):
		response.BadRequest(c, 17007, "下班时间必须晚于上班时间")
	case errors.Is(err, attendance.ErrBreakTooLong):
		response.BadRequest(c, 17008, "休息时长不能超过在岗时长")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 16003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.Forbidden(c, 12003, "员工已停用")
	default:
		response.InternalError(c)
	}
}
