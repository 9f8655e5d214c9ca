package repository

import (
	"context"

	"gorm.io/gorm"

	"timetrack/backend/internal/model"
	pkgerrors "timetrack/backend/pkg/errors"
)

// WorkdayRepository 每日工作记录数据访问接口
type WorkdayRepository interface {
	Create(ctx context.Context, wd *model.DailyWorkday) error
	GetByID(ctx context.Context, id string) (*model.DailyWorkday, error)
	GetByEmployeeDate(ctx context.Context, employeeID, date string) (*model.DailyWorkday, error)
	ListByEmployeeRange(ctx context.Context, employeeID, from, to string) ([]model.DailyWorkday, error)
	ListByRange(ctx context.Context, from, to string) ([]model.DailyWorkday, error)
	Update(ctx context.Context, wd *model.DailyWorkday) error
	Delete(ctx context.Context, id string) error
}

// ClockEntryRepository 打卡记录数据访问接口
type ClockEntryRepository interface {
	Create(ctx context.Context, entry *model.ClockEntry) error
	ListByWorkday(ctx context.Context, workdayID string) ([]model.ClockEntry, error)
	CountByWorkday(ctx context.Context, workdayID string) (int64, error)
	DeleteByWorkday(ctx context.Context, workdayID string) (int64, error)
}

// ── Workday Repository 实现 ──

type workdayRepo struct {
	db *gorm.DB
}

// NewWorkdayRepo 创建 WorkdayRepository 实例
func NewWorkdayRepo(db *gorm.DB) WorkdayRepository {
	return &workdayRepo{db: db}
}

func (r *workdayRepo) Create(ctx context.Context, wd *model.DailyWorkday) error {
	return translateErr(r.db.WithContext(ctx).Create(wd).Error)
}

func (r *workdayRepo) GetByID(ctx context.Context, id string) (*model.DailyWorkday, error) {
	var wd model.DailyWorkday
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		Where("workday_id = ?", id).
		First(&wd).Error
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

func (r *workdayRepo) GetByEmployeeDate(ctx context.Context, employeeID, date string) (*model.DailyWorkday, error) {
	var wd model.DailyWorkday
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		Where("employee_id = ? AND work_date = ?", employeeID, date).
		First(&wd).Error
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

// ListByEmployeeRange 查询 [from, to) 区间内的工作记录
func (r *workdayRepo) ListByEmployeeRange(ctx context.Context, employeeID, from, to string) ([]model.DailyWorkday, error) {
	var items []model.DailyWorkday
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date >= ? AND work_date < ?", employeeID, from, to).
		Order("work_date ASC").
		Find(&items).Error
	return items, err
}

func (r *workdayRepo) ListByRange(ctx context.Context, from, to string) ([]model.DailyWorkday, error) {
	var items []model.DailyWorkday
	err := r.db.WithContext(ctx).
		Where("work_date >= ? AND work_date < ?", from, to).
		Order("employee_id ASC, work_date ASC").
		Find(&items).Error
	return items, err
}

func (r *workdayRepo) Update(ctx context.Context, wd *model.DailyWorkday) error {
	oldVersion := wd.Version
	result := r.db.WithContext(ctx).
		Model(wd).
		Where("workday_id = ? AND version = ?", wd.WorkdayID, oldVersion).
		Updates(map[string]interface{}{
			"clock_in":       wd.ClockIn,
			"clock_out":      wd.ClockOut,
			"worked_minutes": wd.WorkedMinutes,
			"break_minutes":  wd.BreakMinutes,
			"is_manual":      wd.IsManual,
			"notes":          wd.Notes,
			"updated_by":     wd.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	wd.Version = oldVersion + 1
	return nil
}

func (r *workdayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("workday_id = ?", id).
		Delete(&model.DailyWorkday{}).Error
}

// ── ClockEntry Repository 实现 ──

type clockEntryRepo struct {
	db *gorm.DB
}

// NewClockEntryRepo 创建 ClockEntryRepository 实例
func NewClockEntryRepo(db *gorm.DB) ClockEntryRepository {
	return &clockEntryRepo{db: db}
}

func (r *clockEntryRepo) Create(ctx context.Context, entry *model.ClockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *clockEntryRepo) ListByWorkday(ctx context.Context, workdayID string) ([]model.ClockEntry, error) {
	var entries []model.ClockEntry
	err := r.db.WithContext(ctx).
		Where("workday_id = ?", workdayID).
		Order("occurred_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *clockEntryRepo) CountByWorkday(ctx context.Context, workdayID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ClockEntry{}).
		Where("workday_id = ?", workdayID).
		Count(&count).Error
	return count, err
}

func (r *clockEntryRepo) DeleteByWorkday(ctx context.Context, workdayID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("workday_id = ?", workdayID).
		Delete(&model.ClockEntry{})
	return result.RowsAffected, result.Error
}
