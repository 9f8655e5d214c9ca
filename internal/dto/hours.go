package dto

import "timetrack/backend/internal/attendance"

// ── 工时对账响应 ──

// EmployeeHoursResponse 单个员工的年度工时
type EmployeeHoursResponse struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year"`
	attendance.YearHours
}

// HoursSummaryResponse 全员年度工时汇总
type HoursSummaryResponse struct {
	Year      int                     `json:"year"`
	Employees []EmployeeHoursResponse `json:"employees"`
	Totals    HoursTotals             `json:"totals"`
}

// HoursTotals 汇总行
type HoursTotals struct {
	Employees         int     `json:"employees"`
	WorkedHours       float64 `json:"worked_hours"`
	AssignedHours     float64 `json:"assigned_hours"`
	ConventionHours   int     `json:"convention_hours"`
	AveragePercentage float64 `json:"average_percentage"`
}
