package dto

import "timetrack/backend/internal/attendance"

// ── 日期排班模块 DTO ──

// ScheduleTimes 班次时间载荷
// 时间先按 HH:MM 校验格式，先后顺序与休息范围由服务层统一校验
type ScheduleTimes struct {
	StartTime    string  `json:"start_time"    binding:"required,hhmm"`
	EndTime      string  `json:"end_time"      binding:"required,hhmm"`
	StartBreak   *string `json:"start_break"   binding:"omitempty,hhmm"`
	EndBreak     *string `json:"end_break"     binding:"omitempty,hhmm"`
	ScheduleType string  `json:"schedule_type" binding:"omitempty,oneof=total split"`
}

// CalendarRequest 年度日历查询参数
type CalendarRequest struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	Year       int    `form:"year"        binding:"omitempty,min=1970,max=2100"`
	Selected   string `form:"selected"` // 逗号分隔的已选日期
}

// ScheduleListRequest 排班列表查询参数
type ScheduleListRequest struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	Year       int    `form:"year"        binding:"omitempty,min=1970,max=2100"`
}

// BulkScheduleRequest 批量创建/修改排班请求
type BulkScheduleRequest struct {
	EmployeeID string   `json:"employee_id" binding:"required,uuid"`
	Dates      []string `json:"dates"       binding:"required,min=1,max=366,dive,isodate"`
	ScheduleTimes
}

// BulkDeleteRequest 批量删除排班请求：按 ids，或按 employee_id + dates
type BulkDeleteRequest struct {
	IDs        []string `json:"ids"         binding:"omitempty,max=366,dive,uuid"`
	EmployeeID string   `json:"employee_id" binding:"omitempty,uuid"`
	Dates      []string `json:"dates"       binding:"omitempty,max=366,dive,isodate"`
}

// CopyTargetsRequest 复制目标查询参数
type CopyTargetsRequest struct {
	SourceEmployeeID string `form:"source_employee_id" binding:"required,uuid"`
	Year             int    `form:"year"               binding:"omitempty,min=1970,max=2100"`
}

// CopyScheduleRequest 复制排班到其他员工请求
type CopyScheduleRequest struct {
	SourceEmployeeID  string   `json:"source_employee_id"  binding:"required,uuid"`
	Year              int      `json:"year"                binding:"required,min=1970,max=2100"`
	TargetEmployeeIDs []string `json:"target_employee_ids" binding:"required,min=1,max=500,dive,uuid"`
}

// ── 日期排班模块响应 ──

// DateScheduleResponse 单日排班
type DateScheduleResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	StartBreak   *string `json:"start_break,omitempty"`
	EndBreak     *string `json:"end_break,omitempty"`
	ScheduleType string  `json:"schedule_type"`
	WorkMinutes  int     `json:"work_minutes"`
	WorkHours    float64 `json:"work_hours"`
}

// CalendarResponse 年度日历
type CalendarResponse struct {
	EmployeeID     string   `json:"employee_id"`
	SelectionState string   `json:"selection_state"`
	SelectedDates  []string `json:"selected_dates"`
	attendance.YearCalendar
}

// BulkScheduleResponse 批量创建/修改结果
type BulkScheduleResponse struct {
	Count     int                    `json:"count"`
	Schedules []DateScheduleResponse `json:"schedules"`
}

// BulkDeleteResponse 批量删除结果；missing 为请求中已不存在的记录
type BulkDeleteResponse struct {
	Requested int      `json:"requested"`
	Deleted   int64    `json:"deleted"`
	Missing   []string `json:"missing"`
}

// CopyTargetResponse 复制目标候选员工
type CopyTargetResponse struct {
	EmployeeID       string   `json:"employee_id"`
	Name             string   `json:"name"`
	Department       string   `json:"department,omitempty"`
	Disabled         bool     `json:"disabled"`
	ConflictingDates []string `json:"conflicting_dates,omitempty"`
}

// CopyScheduleResponse 复制结果汇总
type CopyScheduleResponse struct {
	SourceCount  int                `json:"source_count"`
	SuccessCount int                `json:"success_count"`
	FailedCount  int                `json:"failed_count"`
	Results      []CopyTargetResult `json:"results"`
}

// CopyTargetResult 单个目标员工的复制结果
type CopyTargetResult struct {
	EmployeeID       string   `json:"employee_id"`
	Success          bool     `json:"success"`
	Created          int      `json:"created"`
	Reason           string   `json:"reason,omitempty"` // conflict | not_found | inactive | error
	ConflictingDates []string `json:"conflicting_dates,omitempty"`
}

// ── 周排班模板 DTO ──

// WeeklyScheduleQuery 周模板查询/删除参数
type WeeklyScheduleQuery struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	DayOfWeek  int    `form:"day_of_week" binding:"omitempty,min=1,max=7"`
}

// WeeklyDayRequest 单个星期的模板
type WeeklyDayRequest struct {
	DayOfWeek int `json:"day_of_week" binding:"required,min=1,max=7"`
	ScheduleTimes
}

// SetWeeklyScheduleRequest 设置周模板请求
type SetWeeklyScheduleRequest struct {
	EmployeeID string             `json:"employee_id" binding:"required,uuid"`
	Days       []WeeklyDayRequest `json:"days"        binding:"required,min=1,max=7,dive"`
}

// ApplyWeeklyRequest 将周模板展开为日期排班
type ApplyWeeklyRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	From       string `json:"from"        binding:"required,isodate"`
	To         string `json:"to"          binding:"required,isodate"`
}

// WeeklyScheduleResponse 周模板
type WeeklyScheduleResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	DayOfWeek    int     `json:"day_of_week"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	StartBreak   *string `json:"start_break,omitempty"`
	EndBreak     *string `json:"end_break,omitempty"`
	ScheduleType string  `json:"schedule_type"`
	WorkMinutes  int     `json:"work_minutes"`
}

// ApplyWeeklyResponse 展开结果
type ApplyWeeklyResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
