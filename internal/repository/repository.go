package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "timetrack/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Employee       EmployeeRepository
	Department     DepartmentRepository
	JobRole        JobRoleRepository
	DateSchedule   DateScheduleRepository
	WeeklySchedule WeeklyScheduleRepository
	Workday        WorkdayRepository
	ClockEntry     ClockEntryRepository
	Incident       IncidentRepository

	// Tx 在同一事务内执行多个仓储操作
	Tx TxRunner
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	repo := newRepository(db)
	repo.Tx = &gormTxRunner{db: db}
	return repo
}

func newRepository(db *gorm.DB) *Repository {
	return &Repository{
		Employee:       NewEmployeeRepo(db),
		Department:     NewDepartmentRepo(db),
		JobRole:        NewJobRoleRepo(db),
		DateSchedule:   NewDateScheduleRepo(db),
		WeeklySchedule: NewWeeklyScheduleRepo(db),
		Workday:        NewWorkdayRepo(db),
		ClockEntry:     NewClockEntryRepo(db),
		Incident:       NewIncidentRepo(db),
	}
}

// ── 事务 ──

// TxRunner 事务执行器：fn 收到的 Repository 全部绑定到同一事务，
// fn 返回错误时整体回滚
type TxRunner interface {
	Run(ctx context.Context, fn func(repo *Repository) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) Run(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := newRepository(tx)
		txRepo.Tx = &nestedTxRunner{repo: txRepo}
		return fn(txRepo)
	})
}

// nestedTxRunner 已处于事务中时直接复用当前事务
type nestedTxRunner struct {
	repo *Repository
}

func (r *nestedTxRunner) Run(_ context.Context, fn func(repo *Repository) error) error {
	return fn(r.repo)
}

// translateErr 将 GORM 唯一约束错误转换为业务可识别的错误
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}
