package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// scheduleExportQuery 排班日历导出参数
type scheduleExportQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	dto.YearQuery
}

// HoursXLSX 导出年度工时汇总（管理员）
// GET /api/v1/export/hours?year=
func (h *ExportHandler) HoursXLSX(c *gin.Context) {
	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.HoursXLSX(c.Request.Context(), q.Year)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, contentTypeXLSX, filename, buf.Bytes())
}

// HoursPDF 导出年度工时汇总 PDF（管理员）
// GET /api/v1/export/hours.pdf?year=
func (h *ExportHandler) HoursPDF(c *gin.Context) {
	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	data, filename, err := h.exportSvc.HoursPDF(c.Request.Context(), q.Year)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, contentTypePDF, filename, data)
}

// ScheduleICS 导出员工年度排班日历，默认本人
// GET /api/v1/export/schedule.ics?employee_id=&year=
func (h *ExportHandler) ScheduleICS(c *gin.Context) {
	var q scheduleExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, q.EmployeeID)
	if !ok {
		return
	}
	if employeeID == "" {
		employeeID = c.GetString(ctxEmployeeID)
	}

	data, filename, err := h.exportSvc.ScheduleICS(c.Request.Context(), employeeID, q.Year)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, contentTypeICS, filename, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 19001, "导出文件生成失败")
	default:
		response.InternalError(c)
	}
}
