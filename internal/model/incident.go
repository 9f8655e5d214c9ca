package model

import "time"

// Incident 考勤异常表 — 对应 incidents
type Incident struct {
	IncidentID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"incident_id"`
	EmployeeID   string     `gorm:"type:uuid;not null"                             json:"employee_id"`
	IncidentDate time.Time  `gorm:"type:date;not null"                             json:"incident_date"`
	IncidentType string     `gorm:"type:varchar(20);not null"                      json:"incident_type"` // absence | sick_leave | vacation | late_arrival | other
	Description  string     `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	ReviewedBy   *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote   string     `gorm:"type:varchar(500)"                              json:"review_note,omitempty"`
	BaseModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

func (Incident) TableName() string { return "incidents" }

// 异常状态
const (
	IncidentPending  = "pending"
	IncidentApproved = "approved"
	IncidentRejected = "rejected"
)
