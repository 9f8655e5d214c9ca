package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetrack/backend/internal/model"
)

// WeeklyScheduleRepository 周排班模板数据访问接口
type WeeklyScheduleRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]model.WeeklySchedule, error)
	Upsert(ctx context.Context, items []model.WeeklySchedule) error
	DeleteByEmployeeDays(ctx context.Context, employeeID string, days []int) (int64, error)
}

type weeklyScheduleRepo struct {
	db *gorm.DB
}

// NewWeeklyScheduleRepo 创建 WeeklyScheduleRepository 实例
func NewWeeklyScheduleRepo(db *gorm.DB) WeeklyScheduleRepository {
	return &weeklyScheduleRepo{db: db}
}

func (r *weeklyScheduleRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.WeeklySchedule, error) {
	var items []model.WeeklySchedule
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("day_of_week ASC").
		Find(&items).Error
	return items, err
}

// Upsert 按 (employee_id, day_of_week) 插入或覆盖
func (r *weeklyScheduleRepo) Upsert(ctx context.Context, items []model.WeeklySchedule) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"start_time", "end_time", "start_break", "end_break",
				"schedule_type", "updated_at", "updated_by",
			}),
		}).
		Create(&items).Error
}

// DeleteByEmployeeDays 删除指定星期的模板，days 为空时删除该员工全部模板
func (r *weeklyScheduleRepo) DeleteByEmployeeDays(ctx context.Context, employeeID string, days []int) (int64, error) {
	db := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if len(days) > 0 {
		db = db.Where("day_of_week IN ?", days)
	}
	result := db.Delete(&model.WeeklySchedule{})
	return result.RowsAffected, result.Error
}
