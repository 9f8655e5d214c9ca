package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
)

// HoursService 年度工时对账业务接口
type HoursService interface {
	// Summary 全体在职员工的年度工时汇总
	Summary(ctx context.Context, year int) (*dto.HoursSummaryResponse, error)
	// ForEmployee 单个员工的年度工时
	ForEmployee(ctx context.Context, employeeID string, year int) (*dto.EmployeeHoursResponse, error)
}

type hoursService struct {
	repo   *repository.Repository
	cache  HoursCache
	ttl    time.Duration
	clock  attendance.Clock
	logger *zap.Logger
}

// NewHoursService 创建 HoursService 实例；cache 为 nil 时不缓存
func NewHoursService(repo *repository.Repository, cache HoursCache, ttl time.Duration, clock attendance.Clock, logger *zap.Logger) HoursService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &hoursService{repo: repo, cache: cache, ttl: ttl, clock: clock, logger: logger}
}

// ────────────────────── Summary ──────────────────────

func (s *hoursService) Summary(ctx context.Context, year int) (*dto.HoursSummaryResponse, error) {
	year = resolveYear(s.clock, year)
	key := hoursSummaryKey(year)

	var cached dto.HoursSummaryResponse
	if s.loadCache(ctx, key, &cached) {
		return &cached, nil
	}

	emps, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询在职员工失败", zap.Error(err))
		return nil, err
	}

	from, to := yearRange(year)
	workdays, err := s.repo.Workday.ListByRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询年度工作日记录失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	schedules, err := s.repo.DateSchedule.ListByRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询年度排班失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	workedBy := make(map[string][]int, len(emps))
	for i := range workdays {
		id := workdays[i].EmployeeID
		workedBy[id] = append(workedBy[id], workdays[i].WorkedMinutes)
	}
	shiftsBy := make(map[string][]attendance.Shift, len(emps))
	for i := range schedules {
		shift, ok := s.shiftOf(&schedules[i])
		if ok {
			id := schedules[i].EmployeeID
			shiftsBy[id] = append(shiftsBy[id], shift)
		}
	}

	resp := &dto.HoursSummaryResponse{
		Year:      year,
		Employees: make([]dto.EmployeeHoursResponse, 0, len(emps)),
	}
	var workedMinutes, assignedMinutes int
	pctSum := decimal.Zero
	for i := range emps {
		emp := &emps[i]
		row := toEmployeeHours(emp, year, attendance.Reconcile(emp.ConventionHours, workedBy[emp.EmployeeID], shiftsBy[emp.EmployeeID]))
		resp.Employees = append(resp.Employees, row)

		workedMinutes += row.WorkedMinutes
		assignedMinutes += row.AssignedMinutes
		resp.Totals.ConventionHours += emp.ConventionHours
		pctSum = pctSum.Add(decimal.NewFromFloat(row.Percentage))
	}

	resp.Totals.Employees = len(resp.Employees)
	resp.Totals.WorkedHours = attendance.MinutesToHours(workedMinutes)
	resp.Totals.AssignedHours = attendance.MinutesToHours(assignedMinutes)
	if n := len(resp.Employees); n > 0 {
		resp.Totals.AveragePercentage = pctSum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	}

	s.storeCache(ctx, key, resp)
	return resp, nil
}

// ────────────────────── ForEmployee ──────────────────────

func (s *hoursService) ForEmployee(ctx context.Context, employeeID string, year int) (*dto.EmployeeHoursResponse, error) {
	year = resolveYear(s.clock, year)
	key := hoursEmployeeKey(employeeID, year)

	var cached dto.EmployeeHoursResponse
	if s.loadCache(ctx, key, &cached) {
		return &cached, nil
	}

	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, err
	}

	from, to := yearRange(year)
	workdays, err := s.repo.Workday.ListByEmployeeRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询员工工作日记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	schedules, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	worked := make([]int, 0, len(workdays))
	for i := range workdays {
		worked = append(worked, workdays[i].WorkedMinutes)
	}
	shifts := make([]attendance.Shift, 0, len(schedules))
	for i := range schedules {
		if shift, ok := s.shiftOf(&schedules[i]); ok {
			shifts = append(shifts, shift)
		}
	}

	resp := toEmployeeHours(emp, year, attendance.Reconcile(emp.ConventionHours, worked, shifts))
	s.storeCache(ctx, key, &resp)
	return &resp, nil
}

// ── 内部辅助方法 ──

// shiftOf 还原排班；存储中不满足班次约束的记录跳过并告警
func (s *hoursService) shiftOf(ds *model.DateSchedule) (attendance.Shift, bool) {
	shift, err := scheduleShift(ds)
	if err != nil {
		s.logger.Warn("排班时间无效，已跳过",
			zap.String("id", ds.DateScheduleID),
			zap.String("employee_id", ds.EmployeeID),
			zap.Error(err))
		return attendance.Shift{}, false
	}
	return shift, true
}

func (s *hoursService) loadCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("读取工时缓存失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *hoursService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("写入工时缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func toEmployeeHours(emp *model.Employee, year int, yh attendance.YearHours) dto.EmployeeHoursResponse {
	row := dto.EmployeeHoursResponse{
		EmployeeID: emp.EmployeeID,
		Name:       emp.Name,
		Year:       year,
		YearHours:  yh,
	}
	if emp.Department != nil {
		row.Department = emp.Department.Name
	}
	return row
}
