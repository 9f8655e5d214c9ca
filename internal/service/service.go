package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"timetrack/backend/config"
	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/repository"
	"timetrack/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	Employee       EmployeeService
	Department     DepartmentService
	JobRole        JobRoleService
	DateSchedule   DateScheduleService
	WeeklySchedule WeeklyScheduleService
	Hours          HoursService
	Workday        WorkdayService
	Incident       IncidentService
	Export         ExportService
}

// Deps 可选的外部依赖；Redis 与 RabbitMQ 不可用时对应字段为 nil
type Deps struct {
	Blacklist TokenBlacklist
	Cache     HoursCache
	Notifier  ChangeNotifier
	Clock     attendance.Clock
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.Clock == nil {
		deps.Clock = attendance.SystemClock{Loc: cfg.Attendance.Location()}
	}
	if deps.Notifier == nil {
		deps.Notifier = NewMultiNotifier(logger)
	}

	hours := NewHoursService(repo, deps.Cache, cfg.Redis.HoursTTL, deps.Clock, logger)
	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, deps.Blacklist, logger),
		Employee:       NewEmployeeService(cfg, repo, deps.Notifier, logger),
		Department:     NewDepartmentService(repo, deps.Notifier, logger),
		JobRole:        NewJobRoleService(repo, deps.Notifier, logger),
		DateSchedule:   NewDateScheduleService(repo, deps.Notifier, deps.Clock, logger),
		WeeklySchedule: NewWeeklyScheduleService(repo, deps.Notifier, logger),
		Hours:          hours,
		Workday:        NewWorkdayService(repo, deps.Notifier, deps.Clock, logger),
		Incident:       NewIncidentService(repo, deps.Notifier, deps.Clock, logger),
		Export:         NewExportService(repo, hours, deps.Clock, logger),
	}
}

// ── 内部辅助 ──

const timestampLayout = "2006-01-02T15:04:05Z"

// resolveYear 年份为空时取考勤时区下的当前年份
func resolveYear(clock attendance.Clock, year int) int {
	if year > 0 {
		return year
	}
	return attendance.Today(clock).Year()
}

// yearRange 返回 [1 月 1 日, 次年 1 月 1 日) 的日期字符串
func yearRange(year int) (string, string) {
	from, to := attendance.YearBounds(year)
	return attendance.FormatDate(from), attendance.FormatDate(to)
}

// normalizeDates 校验日期格式，去重并升序排列
func normalizeDates(dates []string) ([]string, error) {
	seen := make(map[string]bool, len(dates))
	result := make([]string, 0, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if _, err := attendance.ParseDate(d); err != nil {
			return nil, err
		}
		if !seen[d] {
			seen[d] = true
			result = append(result, d)
		}
	}
	sort.Strings(result)
	return result, nil
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func strPtr(s string) *string { return &s }

// detach 写操作提交后使用独立上下文通知，避免请求取消导致缓存残留
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
