package model

import "time"

// Employee 员工表 — 对应 employees
type Employee struct {
	EmployeeID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name            string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash    string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role            string     `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // admin | employee
	DepartmentID    *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	JobRoleID       *string    `gorm:"type:uuid"                                      json:"job_role_id,omitempty"`
	HireDate        *time.Time `gorm:"type:date"                                      json:"hire_date,omitempty"`
	ConventionHours int        `gorm:"not null;default:1752"                          json:"convention_hours"`
	IsActive        bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	JobRole    *JobRole    `gorm:"foreignKey:JobRoleID;references:JobRoleID"       json:"job_role,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }
