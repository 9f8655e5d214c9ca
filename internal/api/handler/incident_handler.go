package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/response"
)

// IncidentHandler 考勤异常 HTTP 处理器
type IncidentHandler struct {
	incidentSvc service.IncidentService
}

// NewIncidentHandler 创建 IncidentHandler
func NewIncidentHandler(incidentSvc service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentSvc: incidentSvc}
}

// Create 登记异常；普通员工只能为本人登记
// POST /api/v1/incidents
func (h *IncidentHandler) Create(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if _, ok := scopeEmployee(c, req.EmployeeID); !ok {
		return
	}

	result, err := h.incidentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleIncidentError(c, err)
		return
	}

	response.Created(c, result)
}

// List 异常列表，普通员工只能查看本人
// GET /api/v1/incidents?employee_id=&status=&year=
func (h *IncidentHandler) List(c *gin.Context) {
	var req dto.IncidentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	employeeID, ok := scopeEmployee(c, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	list, total, err := h.incidentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Approve 批准异常（管理员）
// POST /api/v1/incidents/:id/approve
func (h *IncidentHandler) Approve(c *gin.Context) {
	h.review(c, h.incidentSvc.Approve)
}

// Reject 驳回异常（管理员）
// POST /api/v1/incidents/:id/reject
func (h *IncidentHandler) Reject(c *gin.Context) {
	h.review(c, h.incidentSvc.Reject)
}

type reviewFunc func(ctx context.Context, id string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error)

func (h *IncidentHandler) review(c *gin.Context, fn reviewFunc) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	var req dto.ReviewIncidentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	result, err := fn(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleIncidentError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除待审核的异常，本人或管理员可操作
// DELETE /api/v1/incidents/:id
func (h *IncidentHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	incident, err := h.incidentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleIncidentError(c, err)
		return
	}
	if _, ok := scopeEmployee(c, incident.EmployeeID); !ok {
		return
	}

	if err := h.incidentSvc.Delete(c.Request.Context(), incident.ID, callerID); err != nil {
		h.handleIncidentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *IncidentHandler) handleIncidentError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrIncidentNotFound):
		response.NotFound(c, 18001, "异常记录不存在")
	case errors.Is(err, service.ErrIncidentNotPending):
		response.Conflict(c, 18002, "异常已审核，不能再次操作")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	default:
		response.InternalError(c)
	}
}
