package handler

import "timetrack/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	Employee       *EmployeeHandler
	Department     *DepartmentHandler
	JobRole        *JobRoleHandler
	DateSchedule   *DateScheduleHandler
	WeeklySchedule *WeeklyScheduleHandler
	Hours          *HoursHandler
	Workday        *WorkdayHandler
	Incident       *IncidentHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		Employee:       NewEmployeeHandler(svc.Employee),
		Department:     NewDepartmentHandler(svc.Department),
		JobRole:        NewJobRoleHandler(svc.JobRole),
		DateSchedule:   NewDateScheduleHandler(svc.DateSchedule),
		WeeklySchedule: NewWeeklyScheduleHandler(svc.WeeklySchedule),
		Hours:          NewHoursHandler(svc.Hours),
		Workday:        NewWorkdayHandler(svc.Workday),
		Incident:       NewIncidentHandler(svc.Incident),
		Export:         NewExportHandler(svc.Export),
	}
}
