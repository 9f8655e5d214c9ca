package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// HoursHandler 工时汇总 HTTP 处理器
type HoursHandler struct {
	hoursSvc service.HoursService
}

// NewHoursHandler 创建 HoursHandler
func NewHoursHandler(hoursSvc service.HoursService) *HoursHandler {
	return &HoursHandler{hoursSvc: hoursSvc}
}

// Summary 全体员工年度工时汇总（管理员）
// GET /api/v1/hours/summary?year=
func (h *HoursHandler) Summary(c *gin.Context) {
	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.hoursSvc.Summary(c.Request.Context(), q.Year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ForEmployee 单个员工年度工时，本人或管理员可查看
// GET /api/v1/hours/employees/:id?year=
func (h *HoursHandler) ForEmployee(c *gin.Context) {
	employeeID, ok := scopeEmployee(c, c.Param("id"))
	if !ok {
		return
	}

	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.hoursSvc.ForEmployee(c.Request.Context(), employeeID, q.Year)
	if err != nil {
		if errors.Is(err, service.ErrEmployeeNotFound) {
			response.NotFound(c, 12001, "员工不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
