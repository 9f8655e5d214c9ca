package repository

import (
	"context"

	"gorm.io/gorm"

	"timetrack/backend/internal/model"
	pkgerrors "timetrack/backend/pkg/errors"
)

// EmployeeFilter 员工列表筛选条件
type EmployeeFilter struct {
	DepartmentID string
	JobRoleID    string
	Active       *bool
	Keyword      string
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	SetActive(ctx context.Context, id string, active bool, updatedBy string) error
	List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error)
	ListActive(ctx context.Context) ([]model.Employee, error)
	ClearDepartment(ctx context.Context, departmentID string) (int64, error)
	ClearJobRole(ctx context.Context, jobRoleID string) (int64, error)
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return translateErr(r.db.WithContext(ctx).Create(emp).Error)
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("JobRole").
		Where("employee_id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	oldVersion := emp.Version
	result := r.db.WithContext(ctx).
		Model(emp).
		Where("employee_id = ? AND version = ?", emp.EmployeeID, oldVersion).
		Updates(map[string]interface{}{
			"name":             emp.Name,
			"email":            emp.Email,
			"password_hash":    emp.PasswordHash,
			"role":             emp.Role,
			"department_id":    emp.DepartmentID,
			"job_role_id":      emp.JobRoleID,
			"hire_date":        emp.HireDate,
			"convention_hours": emp.ConventionHours,
			"is_active":        emp.IsActive,
			"updated_by":       emp.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return translateErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	emp.Version = oldVersion + 1
	return nil
}

func (r *employeeRepo) SetActive(ctx context.Context, id string, active bool, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	var emps []model.Employee
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Employee{})
	if filter.DepartmentID != "" {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.JobRoleID != "" {
		db = db.Where("job_role_id = ?", filter.JobRoleID)
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Department").Preload("JobRole").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&emps).Error; err != nil {
		return nil, 0, err
	}

	return emps, total, nil
}

func (r *employeeRepo) ListActive(ctx context.Context) ([]model.Employee, error) {
	var emps []model.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) ClearDepartment(ctx context.Context, departmentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("department_id = ?", departmentID).
		Update("department_id", nil)
	return result.RowsAffected, result.Error
}

func (r *employeeRepo) ClearJobRole(ctx context.Context, jobRoleID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("job_role_id = ?", jobRoleID).
		Update("job_role_id", nil)
	return result.RowsAffected, result.Error
}
