package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// ── 周排班模板业务错误 ──

var (
	ErrDuplicateWeekday    = errors.New("同一星期不能重复设置")
	ErrWeeklyTemplateEmpty = errors.New("该员工尚未设置周排班模板")
	ErrInvalidDateRange    = errors.New("结束日期不能早于开始日期")
	ErrDateRangeTooLong    = errors.New("日期范围不能超过 366 天")
)

const maxApplyDays = 366

// WeeklyScheduleService 周排班模板业务接口
type WeeklyScheduleService interface {
	List(ctx context.Context, employeeID string) ([]dto.WeeklyScheduleResponse, error)
	Set(ctx context.Context, req *dto.SetWeeklyScheduleRequest, callerID string) ([]dto.WeeklyScheduleResponse, error)
	Delete(ctx context.Context, req *dto.WeeklyScheduleQuery, callerID string) (int64, error)
	// Apply 将周模板展开为日期排班，已排班的日期跳过
	Apply(ctx context.Context, req *dto.ApplyWeeklyRequest, callerID string) (*dto.ApplyWeeklyResponse, error)
}

type weeklyScheduleService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewWeeklyScheduleService 创建 WeeklyScheduleService 实例
func NewWeeklyScheduleService(repo *repository.Repository, notifier ChangeNotifier, logger *zap.Logger) WeeklyScheduleService {
	return &weeklyScheduleService{repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *weeklyScheduleService) List(ctx context.Context, employeeID string) ([]dto.WeeklyScheduleResponse, error) {
	if err := s.ensureEmployee(ctx, employeeID, false); err != nil {
		return nil, err
	}

	items, err := s.repo.WeeklySchedule.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询周排班模板失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeeklyScheduleResponse, 0, len(items))
	for i := range items {
		result = append(result, toWeeklyScheduleResponse(&items[i]))
	}
	return result, nil
}

// ────────────────────── Set ──────────────────────

func (s *weeklyScheduleService) Set(ctx context.Context, req *dto.SetWeeklyScheduleRequest, callerID string) ([]dto.WeeklyScheduleResponse, error) {
	seen := make(map[int]bool, len(req.Days))
	items := make([]model.WeeklySchedule, 0, len(req.Days))
	for i := range req.Days {
		day := &req.Days[i]
		if seen[day.DayOfWeek] {
			return nil, ErrDuplicateWeekday
		}
		seen[day.DayOfWeek] = true

		shift, err := parseScheduleTimes(&day.ScheduleTimes)
		if err != nil {
			return nil, err
		}
		startBreak, endBreak := breakPointers(shift)
		item := model.WeeklySchedule{
			EmployeeID:   req.EmployeeID,
			DayOfWeek:    day.DayOfWeek,
			StartTime:    shift.Start.String(),
			EndTime:      shift.End.String(),
			StartBreak:   startBreak,
			EndBreak:     endBreak,
			ScheduleType: string(shift.Type()),
		}
		item.CreatedBy = &callerID
		item.UpdatedBy = &callerID
		items = append(items, item)
	}

	if err := s.ensureEmployee(ctx, req.EmployeeID, true); err != nil {
		return nil, err
	}

	if err := s.repo.WeeklySchedule.Upsert(ctx, items); err != nil {
		s.logger.Error("保存周排班模板失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityWeeklySchedule,
		Action:      ActionUpdated,
		EmployeeIDs: []string{req.EmployeeID},
		ActorID:     callerID,
	})
	return s.List(ctx, req.EmployeeID)
}

// ────────────────────── Delete ──────────────────────

func (s *weeklyScheduleService) Delete(ctx context.Context, req *dto.WeeklyScheduleQuery, callerID string) (int64, error) {
	if err := s.ensureEmployee(ctx, req.EmployeeID, false); err != nil {
		return 0, err
	}

	var days []int
	if req.DayOfWeek > 0 {
		days = []int{req.DayOfWeek}
	}
	deleted, err := s.repo.WeeklySchedule.DeleteByEmployeeDays(ctx, req.EmployeeID, days)
	if err != nil {
		s.logger.Error("删除周排班模板失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return 0, err
	}

	if deleted > 0 {
		notifyChange(detach(ctx), s.notifier, Change{
			Entity:      EntityWeeklySchedule,
			Action:      ActionDeleted,
			EmployeeIDs: []string{req.EmployeeID},
			ActorID:     callerID,
		})
	}
	return deleted, nil
}

// ═══════════════════════════════════════════════════════════
// Apply — 周模板展开为日期排班
// ═══════════════════════════════════════════════════════════
//
// 区间为 [from, to] 闭区间。已有排班的日期计入 skipped，
// 其余日期在同一事务内批量创建。

func (s *weeklyScheduleService) Apply(ctx context.Context, req *dto.ApplyWeeklyRequest, callerID string) (*dto.ApplyWeeklyResponse, error) {
	from, err := attendance.ParseDate(req.From)
	if err != nil {
		return nil, err
	}
	to, err := attendance.ParseDate(req.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	if int(to.Sub(from).Hours()/24)+1 > maxApplyDays {
		return nil, ErrDateRangeTooLong
	}

	if err := s.ensureEmployee(ctx, req.EmployeeID, true); err != nil {
		return nil, err
	}

	templates, err := s.repo.WeeklySchedule.ListByEmployee(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("查询周排班模板失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	if len(templates) == 0 {
		return nil, ErrWeeklyTemplateEmpty
	}
	byDay := make(map[int]*model.WeeklySchedule, len(templates))
	for i := range templates {
		byDay[templates[i].DayOfWeek] = &templates[i]
	}

	end := to.AddDate(0, 0, 1)
	existing, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, req.EmployeeID, req.From, attendance.FormatDate(end))
	if err != nil {
		s.logger.Error("查询已有排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	scheduled := make(map[string]bool, len(existing))
	for i := range existing {
		scheduled[attendance.FormatDate(existing[i].ScheduleDate)] = true
	}

	resp := &dto.ApplyWeeklyResponse{}
	var items []model.DateSchedule
	for day := from; day.Before(end); day = day.AddDate(0, 0, 1) {
		tpl, ok := byDay[attendance.ISOWeekday(day)]
		if !ok {
			continue
		}
		if scheduled[attendance.FormatDate(day)] {
			resp.Skipped++
			continue
		}
		item := model.DateSchedule{
			EmployeeID:   req.EmployeeID,
			ScheduleDate: day,
			StartTime:    tpl.StartTime,
			EndTime:      tpl.EndTime,
			StartBreak:   tpl.StartBreak,
			EndBreak:     tpl.EndBreak,
			ScheduleType: tpl.ScheduleType,
		}
		item.CreatedBy = &callerID
		item.UpdatedBy = &callerID
		items = append(items, item)
	}

	if len(items) == 0 {
		return resp, nil
	}

	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		return tx.DateSchedule.BatchCreate(ctx, items)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrScheduleConflict
		}
		s.logger.Error("展开周排班模板失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	resp.Created = len(items)

	s.logger.Info("展开周排班模板",
		zap.String("employee_id", req.EmployeeID),
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped))

	year := 0
	if from.Year() == to.Year() {
		year = from.Year()
	}
	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityDateSchedule,
		Action:      ActionCreated,
		EmployeeIDs: []string{req.EmployeeID},
		Year:        year,
		ActorID:     callerID,
	})
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *weeklyScheduleService) ensureEmployee(ctx context.Context, id string, requireActive bool) error {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if requireActive && !emp.IsActive {
		return ErrEmployeeInactive
	}
	return nil
}

func toWeeklyScheduleResponse(ws *model.WeeklySchedule) dto.WeeklyScheduleResponse {
	resp := dto.WeeklyScheduleResponse{
		ID:           ws.WeeklyScheduleID,
		EmployeeID:   ws.EmployeeID,
		DayOfWeek:    ws.DayOfWeek,
		StartTime:    ws.StartTime,
		EndTime:      ws.EndTime,
		StartBreak:   ws.StartBreak,
		EndBreak:     ws.EndBreak,
		ScheduleType: ws.ScheduleType,
	}
	if shift, err := attendance.ParseShift(ws.StartTime, ws.EndTime, ws.StartBreak, ws.EndBreak); err == nil {
		resp.WorkMinutes = shift.WorkMinutes()
	}
	return resp
}
