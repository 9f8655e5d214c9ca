package model

import "time"

// DateSchedule 日期排班表 — 对应 date_schedules
// 每个员工每天至多一条；修改采用先删后建，不做乐观锁
type DateSchedule struct {
	DateScheduleID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"date_schedule_id"`
	EmployeeID     string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	ScheduleDate   time.Time `gorm:"type:date;not null"                             json:"schedule_date"`
	StartTime      string    `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime        string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	StartBreak     *string   `gorm:"type:varchar(5)"                                json:"start_break,omitempty"`
	EndBreak       *string   `gorm:"type:varchar(5)"                                json:"end_break,omitempty"`
	ScheduleType   string    `gorm:"type:varchar(10);not null;default:'total'"      json:"schedule_type"` // total | split
	BaseModel
}

func (DateSchedule) TableName() string { return "date_schedules" }

// WeeklySchedule 周排班模板表 — 对应 weekly_schedules
type WeeklySchedule struct {
	WeeklyScheduleID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"weekly_schedule_id"`
	EmployeeID       string  `gorm:"type:uuid;not null"                             json:"employee_id"`
	DayOfWeek        int     `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	StartTime        string  `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime          string  `gorm:"type:varchar(5);not null"                       json:"end_time"`
	StartBreak       *string `gorm:"type:varchar(5)"                                json:"start_break,omitempty"`
	EndBreak         *string `gorm:"type:varchar(5)"                                json:"end_break,omitempty"`
	ScheduleType     string  `gorm:"type:varchar(10);not null;default:'total'"      json:"schedule_type"`
	BaseModel
}

func (WeeklySchedule) TableName() string { return "weekly_schedules" }
