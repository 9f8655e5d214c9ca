package dto

// ── 考勤异常 DTO ──

// CreateIncidentRequest 登记异常；employee_id 为空时为本人登记
type CreateIncidentRequest struct {
	EmployeeID   string `json:"employee_id"   binding:"omitempty,uuid"`
	Date         string `json:"date"          binding:"required,isodate"`
	IncidentType string `json:"incident_type" binding:"required,oneof=absence sick_leave vacation late_arrival other"`
	Description  string `json:"description"   binding:"omitempty,max=500"`
}

// IncidentListRequest 异常列表查询参数
type IncidentListRequest struct {
	PaginationRequest
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status"      binding:"omitempty,oneof=pending approved rejected"`
	Year       int    `form:"year"        binding:"omitempty,min=1970,max=2100"`
}

// ReviewIncidentRequest 审核异常
type ReviewIncidentRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// IncidentResponse 异常详情
type IncidentResponse struct {
	ID           string       `json:"id"`
	Employee     *RefResponse `json:"employee,omitempty"`
	EmployeeID   string       `json:"employee_id"`
	Date         string       `json:"date"`
	IncidentType string       `json:"incident_type"`
	Description  string       `json:"description,omitempty"`
	Status       string       `json:"status"`
	ReviewedBy   *string      `json:"reviewed_by,omitempty"`
	ReviewedAt   *string      `json:"reviewed_at,omitempty"`
	ReviewNote   string       `json:"review_note,omitempty"`
	CreatedAt    string       `json:"created_at"`
}
