package dto

// ── 打卡与工作日 DTO ──

// TimeEntryListRequest 打卡记录查询参数
type TimeEntryListRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Date       string `form:"date"        binding:"omitempty,isodate"`
}

// WorkdayListRequest 工作日列表查询参数
type WorkdayListRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"required,isodate"`
	To         string `form:"to"          binding:"required,isodate"`
}

// ManualWorkdayRequest 管理员手工录入工作日
type ManualWorkdayRequest struct {
	EmployeeID   string `json:"employee_id"   binding:"required,uuid"`
	Date         string `json:"date"          binding:"required,isodate"`
	ClockIn      string `json:"clock_in"      binding:"required,hhmm"`
	ClockOut     string `json:"clock_out"     binding:"required,hhmm"`
	BreakMinutes int    `json:"break_minutes" binding:"omitempty,min=0,max=1440"`
	Notes        string `json:"notes"         binding:"omitempty,max=500"`
}

// UpdateWorkdayRequest 管理员修改工作日
type UpdateWorkdayRequest struct {
	ClockIn      *string `json:"clock_in"      binding:"omitempty,hhmm"`
	ClockOut     *string `json:"clock_out"     binding:"omitempty,hhmm"`
	BreakMinutes *int    `json:"break_minutes" binding:"omitempty,min=0,max=1440"`
	Notes        *string `json:"notes"         binding:"omitempty,max=500"`
}

// ForceQuery 已锁定记录的强制修改开关
type ForceQuery struct {
	Force bool `form:"force"`
}

// ── 打卡与工作日响应 ──

// ClockEntryResponse 单次打卡
type ClockEntryResponse struct {
	ID         string `json:"id"`
	Type       string `json:"entry_type"`
	OccurredAt string `json:"occurred_at"`
}

// WorkdayResponse 工作日详情
type WorkdayResponse struct {
	ID            string               `json:"id,omitempty"`
	EmployeeID    string               `json:"employee_id"`
	Date          string               `json:"date"`
	ClockIn       *string              `json:"clock_in,omitempty"`
	ClockOut      *string              `json:"clock_out,omitempty"`
	WorkedMinutes int                  `json:"worked_minutes"`
	WorkedHours   float64              `json:"worked_hours"`
	BreakMinutes  int                  `json:"break_minutes"`
	IsManual      bool                 `json:"is_manual"`
	Notes         string               `json:"notes,omitempty"`
	Status        string               `json:"status"`
	Version       int                  `json:"version,omitempty"`
	Entries       []ClockEntryResponse `json:"entries,omitempty"`
}
