package model

import "time"

// DailyWorkday 每日工作记录表 — 对应 daily_workdays
// 分钟为唯一存储单位，小时只在展示时换算
type DailyWorkday struct {
	WorkdayID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"workday_id"`
	EmployeeID    string     `gorm:"type:uuid;not null"                             json:"employee_id"`
	WorkDate      time.Time  `gorm:"type:date;not null"                             json:"work_date"`
	ClockIn       *time.Time `json:"clock_in,omitempty"`
	ClockOut      *time.Time `json:"clock_out,omitempty"`
	WorkedMinutes int        `gorm:"not null;default:0"                             json:"worked_minutes"`
	BreakMinutes  int        `gorm:"not null;default:0"                             json:"break_minutes"`
	IsManual      bool       `gorm:"not null;default:false"                         json:"is_manual"`
	Notes         string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	Version       int        `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	// 关联
	Entries []ClockEntry `gorm:"foreignKey:WorkdayID" json:"entries,omitempty"`
}

func (DailyWorkday) TableName() string { return "daily_workdays" }

// ClockEntry 打卡记录表 — 对应 clock_entries
type ClockEntry struct {
	ClockEntryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"clock_entry_id"`
	WorkdayID    string    `gorm:"type:uuid;not null"                             json:"workday_id"`
	EmployeeID   string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	EntryType    string    `gorm:"type:varchar(20);not null"                      json:"entry_type"` // clock_in | break_start | break_end | clock_out
	OccurredAt   time.Time `gorm:"not null"                                       json:"occurred_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (ClockEntry) TableName() string { return "clock_entries" }
