package dto

// ── 员工模块 DTO ──

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	JobRoleID    string `form:"job_role_id"   binding:"omitempty,uuid"`
	Active       *bool  `form:"active"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	Name            string  `json:"name"             binding:"required,min=2,max=100"`
	Email           string  `json:"email"            binding:"required,email"`
	Password        string  `json:"password"         binding:"required,min=8,max=64"`
	Role            string  `json:"role"             binding:"omitempty,oneof=admin employee"`
	DepartmentID    *string `json:"department_id"    binding:"omitempty,uuid"`
	JobRoleID       *string `json:"job_role_id"      binding:"omitempty,uuid"`
	HireDate        *string `json:"hire_date"        binding:"omitempty,isodate"`
	ConventionHours *int    `json:"convention_hours" binding:"omitempty,min=1,max=4000"`
}

// UpdateEmployeeRequest 更新员工请求
// ClearDepartment / ClearJobRole 为 true 时将对应字段置为未分配
type UpdateEmployeeRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	Email           *string `json:"email"            binding:"omitempty,email"`
	Role            *string `json:"role"             binding:"omitempty,oneof=admin employee"`
	DepartmentID    *string `json:"department_id"    binding:"omitempty,uuid"`
	ClearDepartment bool    `json:"clear_department"`
	JobRoleID       *string `json:"job_role_id"      binding:"omitempty,uuid"`
	ClearJobRole    bool    `json:"clear_job_role"`
	HireDate        *string `json:"hire_date"        binding:"omitempty,isodate"`
	ConventionHours *int    `json:"convention_hours" binding:"omitempty,min=1,max=4000"`
}

// ImportEmployeeResponse 批量导入员工响应
type ImportEmployeeResponse struct {
	Total   int                   `json:"total"`
	Success int                   `json:"success"`
	Failed  int                   `json:"failed"`
	Created []ImportedEmployee    `json:"created,omitempty"`
	Errors  []ImportEmployeeError `json:"errors,omitempty"`
}

// ImportedEmployee 导入成功的员工及其临时密码
type ImportedEmployee struct {
	Row          int    `json:"row"`
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

// ImportEmployeeError 导入错误详情
type ImportEmployeeError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
