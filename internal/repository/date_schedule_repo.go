package repository

import (
	"context"

	"gorm.io/gorm"

	"timetrack/backend/internal/model"
)

// DateScheduleRepository 日期排班数据访问接口
// 日期参数统一使用 YYYY-MM-DD 字符串，由数据库按 DATE 解析
type DateScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.DateSchedule, error)
	ListByEmployeeRange(ctx context.Context, employeeID, from, to string) ([]model.DateSchedule, error)
	ListByEmployeeDates(ctx context.Context, employeeID string, dates []string) ([]model.DateSchedule, error)
	ListByEmployeesDates(ctx context.Context, employeeIDs []string, dates []string) ([]model.DateSchedule, error)
	ListByRange(ctx context.Context, from, to string) ([]model.DateSchedule, error)
	BatchCreate(ctx context.Context, items []model.DateSchedule) error
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteByEmployeeDates(ctx context.Context, employeeID string, dates []string) (int64, error)
	EmployeeIDsByIDs(ctx context.Context, ids []string) ([]string, error)
}

type dateScheduleRepo struct {
	db *gorm.DB
}

// NewDateScheduleRepo 创建 DateScheduleRepository 实例
func NewDateScheduleRepo(db *gorm.DB) DateScheduleRepository {
	return &dateScheduleRepo{db: db}
}

func (r *dateScheduleRepo) GetByID(ctx context.Context, id string) (*model.DateSchedule, error) {
	var ds model.DateSchedule
	err := r.db.WithContext(ctx).
		Where("date_schedule_id = ?", id).
		First(&ds).Error
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListByEmployeeRange 查询 [from, to) 区间内的排班
func (r *dateScheduleRepo) ListByEmployeeRange(ctx context.Context, employeeID, from, to string) ([]model.DateSchedule, error) {
	var items []model.DateSchedule
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND schedule_date >= ? AND schedule_date < ?", employeeID, from, to).
		Order("schedule_date ASC").
		Find(&items).Error
	return items, err
}

func (r *dateScheduleRepo) ListByEmployeeDates(ctx context.Context, employeeID string, dates []string) ([]model.DateSchedule, error) {
	var items []model.DateSchedule
	if len(dates) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND schedule_date IN ?", employeeID, dates).
		Order("schedule_date ASC").
		Find(&items).Error
	return items, err
}

func (r *dateScheduleRepo) ListByEmployeesDates(ctx context.Context, employeeIDs []string, dates []string) ([]model.DateSchedule, error) {
	var items []model.DateSchedule
	if len(employeeIDs) == 0 || len(dates) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("employee_id IN ? AND schedule_date IN ?", employeeIDs, dates).
		Order("employee_id ASC, schedule_date ASC").
		Find(&items).Error
	return items, err
}

// ListByRange 查询所有员工在 [from, to) 区间内的排班
func (r *dateScheduleRepo) ListByRange(ctx context.Context, from, to string) ([]model.DateSchedule, error) {
	var items []model.DateSchedule
	err := r.db.WithContext(ctx).
		Where("schedule_date >= ? AND schedule_date < ?", from, to).
		Order("employee_id ASC, schedule_date ASC").
		Find(&items).Error
	return items, err
}

func (r *dateScheduleRepo) BatchCreate(ctx context.Context, items []model.DateSchedule) error {
	if len(items) == 0 {
		return nil
	}
	return translateErr(r.db.WithContext(ctx).CreateInBatches(&items, 200).Error)
}

// ExistingIDs 返回 ids 中仍然存在的记录 ID
func (r *dateScheduleRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	var existing []string
	if len(ids) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.DateSchedule{}).
		Where("date_schedule_id IN ?", ids).
		Pluck("date_schedule_id", &existing).Error
	return existing, err
}

// EmployeeIDsByIDs 返回这些排班所属的员工（去重）
func (r *dateScheduleRepo) EmployeeIDsByIDs(ctx context.Context, ids []string) ([]string, error) {
	var employeeIDs []string
	if len(ids) == 0 {
		return employeeIDs, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.DateSchedule{}).
		Where("date_schedule_id IN ?", ids).
		Distinct("employee_id").
		Pluck("employee_id", &employeeIDs).Error
	return employeeIDs, err
}

func (r *dateScheduleRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("date_schedule_id IN ?", ids).
		Delete(&model.DateSchedule{})
	return result.RowsAffected, result.Error
}

func (r *dateScheduleRepo) DeleteByEmployeeDates(ctx context.Context, employeeID string, dates []string) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("employee_id = ? AND schedule_date IN ?", employeeID, dates).
		Delete(&model.DateSchedule{})
	return result.RowsAffected, result.Error
}
