package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// ── 工作日模块业务错误 ──

var (
	ErrWorkdayNotFound = errors.New("工作日记录不存在")
	ErrWorkdayLocked   = errors.New("该工作日已通过打卡完成，如需修改请使用强制模式")
	ErrMissingClockIn  = errors.New("设置下班时间前必须先有上班时间")
	ErrClockConflict   = errors.New("打卡冲突，请刷新后重试")
)

// WorkdayService 打卡与每日工作记录业务接口
type WorkdayService interface {
	// Clock 为员工记录一次打卡，按状态机校验当前状态
	Clock(ctx context.Context, employeeID string, event attendance.EntryType) (*dto.WorkdayResponse, error)
	// Today 员工当天的工作记录与状态，当天未打卡时返回 not_started
	Today(ctx context.Context, employeeID string) (*dto.WorkdayResponse, error)
	Entries(ctx context.Context, employeeID, date string) ([]dto.ClockEntryResponse, error)
	List(ctx context.Context, req *dto.WorkdayListRequest) ([]dto.WorkdayResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WorkdayResponse, error)

	// CreateManual 管理员手工录入；当天已有记录时按 Update 的规则替换
	CreateManual(ctx context.Context, req *dto.ManualWorkdayRequest, force bool, callerID string) (*dto.WorkdayResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkdayRequest, force bool, callerID string) (*dto.WorkdayResponse, error)
	Delete(ctx context.Context, id string, force bool, callerID string) error
}

type workdayService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	clock    attendance.Clock
	logger   *zap.Logger
}

// NewWorkdayService 创建 WorkdayService 实例
func NewWorkdayService(repo *repository.Repository, notifier ChangeNotifier, clock attendance.Clock, logger *zap.Logger) WorkdayService {
	return &workdayService{repo: repo, notifier: notifier, clock: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Clock — 打卡
// ═══════════════════════════════════════════════════════════
//
// 流程：
//   1. 首次上班打卡时创建当天的工作记录
//   2. 当前状态由 DeriveStatus 推导，再经 Transition 校验迁移
//   3. 写入打卡记录后回放全部打卡，重算休息与工作分钟数
// 整个过程在同一事务内完成

func (s *workdayService) Clock(ctx context.Context, employeeID string, event attendance.EntryType) (*dto.WorkdayResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, err
	}
	if !emp.IsActive {
		return nil, ErrEmployeeInactive
	}

	now := s.clock.Now()
	today := attendance.Today(s.clock)
	date := attendance.FormatDate(today)

	var wd *model.DailyWorkday
	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Workday.GetByEmployeeDate(ctx, employeeID, date)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if event != attendance.EntryClockIn {
				return attendance.ErrInvalidTransition
			}
			existing = &model.DailyWorkday{EmployeeID: employeeID, WorkDate: today}
			existing.CreatedBy = &employeeID
			existing.UpdatedBy = &employeeID
			if err := tx.Workday.Create(ctx, existing); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		wd = existing

		if n := len(wd.Entries); n > 0 && now.Before(wd.Entries[n-1].OccurredAt) {
			return attendance.ErrEventOutOfOrder
		}
		if _, err := attendance.Transition(workdayStatus(wd), event); err != nil {
			return err
		}

		entry := model.ClockEntry{
			WorkdayID:  wd.WorkdayID,
			EmployeeID: employeeID,
			EntryType:  string(event),
			OccurredAt: now,
		}
		if err := tx.ClockEntry.Create(ctx, &entry); err != nil {
			return err
		}
		wd.Entries = append(wd.Entries, entry)

		tally, err := attendance.Tally(clockEvents(wd.Entries))
		if err != nil {
			return err
		}
		wd.ClockIn = tally.ClockIn
		wd.ClockOut = tally.ClockOut
		wd.BreakMinutes = tally.BreakMinutes
		wd.WorkedMinutes = tally.WorkedMinutes
		wd.UpdatedBy = &employeeID
		return tx.Workday.Update(ctx, wd)
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrInvalidTransition),
			errors.Is(err, attendance.ErrEventOutOfOrder),
			errors.Is(err, attendance.ErrClockOutBeforeIn),
			errors.Is(err, attendance.ErrBreakTooLong):
			return nil, err
		case errors.Is(err, pkgerrors.ErrDuplicateKey), errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, ErrClockConflict
		}
		s.logger.Error("打卡失败",
			zap.String("employee_id", employeeID),
			zap.String("event", string(event)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("打卡成功",
		zap.String("employee_id", employeeID),
		zap.String("event", string(event)),
		zap.Time("at", now))

	if event == attendance.EntryClockOut {
		notifyChange(detach(ctx), s.notifier, Change{
			Entity:      EntityWorkday,
			Action:      ActionUpdated,
			EmployeeIDs: []string{employeeID},
			Year:        today.Year(),
			ActorID:     employeeID,
		})
	}
	resp := toWorkdayResponse(wd)
	return &resp, nil
}

// ────────────────────── Today ──────────────────────

func (s *workdayService) Today(ctx context.Context, employeeID string) (*dto.WorkdayResponse, error) {
	date := attendance.FormatDate(attendance.Today(s.clock))
	wd, err := s.repo.Workday.GetByEmployeeDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.WorkdayResponse{
				EmployeeID: employeeID,
				Date:       date,
				Status:     string(attendance.StatusNotStarted),
			}, nil
		}
		s.logger.Error("查询当天工作记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	resp := toWorkdayResponse(wd)
	return &resp, nil
}

// ────────────────────── Entries ──────────────────────

func (s *workdayService) Entries(ctx context.Context, employeeID, date string) ([]dto.ClockEntryResponse, error) {
	if date == "" {
		date = attendance.FormatDate(attendance.Today(s.clock))
	}
	wd, err := s.repo.Workday.GetByEmployeeDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.ClockEntryResponse{}, nil
		}
		s.logger.Error("查询打卡记录失败", zap.String("employee_id", employeeID), zap.String("date", date), zap.Error(err))
		return nil, err
	}
	return toClockEntryResponses(wd.Entries), nil
}

// ────────────────────── List ──────────────────────

func (s *workdayService) List(ctx context.Context, req *dto.WorkdayListRequest) ([]dto.WorkdayResponse, error) {
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
	end := attendance.FormatDate(to.AddDate(0, 0, 1))

	var items []model.DailyWorkday
	if req.EmployeeID != "" {
		items, err = s.repo.Workday.ListByEmployeeRange(ctx, req.EmployeeID, req.From, end)
	} else {
		items, err = s.repo.Workday.ListByRange(ctx, req.From, end)
	}
	if err != nil {
		s.logger.Error("查询工作日列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkdayResponse, 0, len(items))
	for i := range items {
		result = append(result, toWorkdayResponse(&items[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workdayService) GetByID(ctx context.Context, id string) (*dto.WorkdayResponse, error) {
	wd, err := s.getWorkday(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	resp := toWorkdayResponse(wd)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// CreateManual / Update / Delete — 管理员维护
// ═══════════════════════════════════════════════════════════
//
// 已通过打卡完成（上下班齐全且存在打卡记录）的工作日为只读，
// 必须带 force=true；强制修改时在同一事务内删除其打卡记录并标记为手工录入。

func (s *workdayService) CreateManual(ctx context.Context, req *dto.ManualWorkdayRequest, force bool, callerID string) (*dto.WorkdayResponse, error) {
	day, err := attendance.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	loc := s.clock.Now().Location()
	clockIn, err := timeOnDate(day, req.ClockIn, loc)
	if err != nil {
		return nil, err
	}
	clockOut, err := timeOnDate(day, req.ClockOut, loc)
	if err != nil {
		return nil, err
	}
	worked, err := attendance.WorkedMinutes(clockIn, clockOut, req.BreakMinutes)
	if err != nil {
		return nil, err
	}

	emp, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	var wd *model.DailyWorkday
	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Workday.GetByEmployeeDate(ctx, emp.EmployeeID, req.Date)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing == nil {
			wd = &model.DailyWorkday{
				EmployeeID:    emp.EmployeeID,
				WorkDate:      day,
				ClockIn:       &clockIn,
				ClockOut:      &clockOut,
				WorkedMinutes: worked,
				BreakMinutes:  req.BreakMinutes,
				IsManual:      true,
				Notes:         req.Notes,
			}
			wd.CreatedBy = &callerID
			wd.UpdatedBy = &callerID
			return tx.Workday.Create(ctx, wd)
		}

		if err := s.unlock(ctx, tx, existing, force); err != nil {
			return err
		}
		wd = existing
		wd.ClockIn = &clockIn
		wd.ClockOut = &clockOut
		wd.WorkedMinutes = worked
		wd.BreakMinutes = req.BreakMinutes
		wd.IsManual = true
		wd.Notes = req.Notes
		wd.UpdatedBy = &callerID
		return tx.Workday.Update(ctx, wd)
	})
	if err != nil {
		return nil, s.translateWriteErr("手工录入工作日失败", req.EmployeeID, err)
	}

	s.logger.Info("手工录入工作日",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.Int("worked_minutes", worked),
		zap.String("caller", callerID))

	s.notifyWorkday(ctx, wd, ActionUpdated, callerID)
	resp := toWorkdayResponse(wd)
	return &resp, nil
}

func (s *workdayService) Update(ctx context.Context, id string, req *dto.UpdateWorkdayRequest, force bool, callerID string) (*dto.WorkdayResponse, error) {
	var wd *model.DailyWorkday
	err := s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		existing, err := s.getWorkday(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.unlock(ctx, tx, existing, force); err != nil {
			return err
		}
		wd = existing

		loc := s.clock.Now().Location()
		if req.ClockIn != nil {
			t, err := timeOnDate(wd.WorkDate, *req.ClockIn, loc)
			if err != nil {
				return err
			}
			wd.ClockIn = &t
		}
		if req.ClockOut != nil {
			t, err := timeOnDate(wd.WorkDate, *req.ClockOut, loc)
			if err != nil {
				return err
			}
			wd.ClockOut = &t
		}
		if req.BreakMinutes != nil {
			wd.BreakMinutes = *req.BreakMinutes
		}
		if req.Notes != nil {
			wd.Notes = *req.Notes
		}

		switch {
		case wd.ClockOut != nil && wd.ClockIn == nil:
			return ErrMissingClockIn
		case wd.ClockIn != nil && wd.ClockOut != nil:
			worked, err := attendance.WorkedMinutes(*wd.ClockIn, *wd.ClockOut, wd.BreakMinutes)
			if err != nil {
				return err
			}
			wd.WorkedMinutes = worked
		default:
			wd.WorkedMinutes = 0
		}

		wd.IsManual = true
		wd.UpdatedBy = &callerID
		return tx.Workday.Update(ctx, wd)
	})
	if err != nil {
		return nil, s.translateWriteErr("更新工作日失败", id, err)
	}

	s.notifyWorkday(ctx, wd, ActionUpdated, callerID)
	resp := toWorkdayResponse(wd)
	return &resp, nil
}

func (s *workdayService) Delete(ctx context.Context, id string, force bool, callerID string) error {
	var wd *model.DailyWorkday
	err := s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		existing, err := s.getWorkday(ctx, tx, id)
		if err != nil {
			return err
		}
		if isLocked(existing) && !force {
			return ErrWorkdayLocked
		}
		wd = existing
		if _, err := tx.ClockEntry.DeleteByWorkday(ctx, id); err != nil {
			return err
		}
		return tx.Workday.Delete(ctx, id)
	})
	if err != nil {
		return s.translateWriteErr("删除工作日失败", id, err)
	}

	s.logger.Info("删除工作日",
		zap.String("id", id),
		zap.Bool("force", force),
		zap.String("caller", callerID))

	s.notifyWorkday(ctx, wd, ActionDeleted, callerID)
	return nil
}

// ── 内部辅助方法 ──

func (s *workdayService) getWorkday(ctx context.Context, repo *repository.Repository, id string) (*model.DailyWorkday, error) {
	wd, err := repo.Workday.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkdayNotFound
		}
		s.logger.Error("查询工作日失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return wd, nil
}

// unlock 校验只读状态；强制模式下删除打卡记录
func (s *workdayService) unlock(ctx context.Context, tx *repository.Repository, wd *model.DailyWorkday, force bool) error {
	if !isLocked(wd) {
		return nil
	}
	if !force {
		return ErrWorkdayLocked
	}
	removed, err := tx.ClockEntry.DeleteByWorkday(ctx, wd.WorkdayID)
	if err != nil {
		return err
	}
	s.logger.Warn("强制修改已完成的工作日，打卡记录已删除",
		zap.String("id", wd.WorkdayID),
		zap.Int64("entries", removed))
	wd.Entries = nil
	return nil
}

// translateWriteErr 业务错误原样返回，其余错误记录日志
func (s *workdayService) translateWriteErr(msg, id string, err error) error {
	switch {
	case errors.Is(err, ErrWorkdayNotFound),
		errors.Is(err, ErrWorkdayLocked),
		errors.Is(err, ErrMissingClockIn),
		errors.Is(err, attendance.ErrClockOutBeforeIn),
		errors.Is(err, attendance.ErrBreakTooLong),
		errors.Is(err, attendance.ErrInvalidTimeFormat),
		errors.Is(err, pkgerrors.ErrOptimisticLock):
		return err
	case errors.Is(err, pkgerrors.ErrDuplicateKey):
		return ErrClockConflict
	}
	s.logger.Error(msg, zap.String("id", id), zap.Error(err))
	return err
}

func (s *workdayService) notifyWorkday(ctx context.Context, wd *model.DailyWorkday, action, callerID string) {
	if wd == nil {
		return
	}
	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityWorkday,
		Action:      action,
		EmployeeIDs: []string{wd.EmployeeID},
		Year:        wd.WorkDate.Year(),
		ActorID:     callerID,
	})
}

// isLocked 上下班齐全且由打卡产生的工作日为只读
func isLocked(wd *model.DailyWorkday) bool {
	return wd.ClockIn != nil && wd.ClockOut != nil && len(wd.Entries) > 0
}

// workdayStatus 由工作记录推导当前状态；最后一次打卡为休息开始即视为休息中
func workdayStatus(wd *model.DailyWorkday) attendance.WorkdayStatus {
	onBreak := false
	if n := len(wd.Entries); n > 0 {
		onBreak = wd.Entries[n-1].EntryType == string(attendance.EntryBreakStart)
	}
	return attendance.DeriveStatus(wd.ClockIn != nil, wd.ClockOut != nil, onBreak)
}

func clockEvents(entries []model.ClockEntry) []attendance.ClockEvent {
	events := make([]attendance.ClockEvent, 0, len(entries))
	for i := range entries {
		events = append(events, attendance.ClockEvent{
			Type: attendance.EntryType(entries[i].EntryType),
			At:   entries[i].OccurredAt,
		})
	}
	return events
}

// timeOnDate 将 HH:MM 组合到指定日期上
func timeOnDate(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	tod, err := attendance.ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	minutes := int(tod)
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

func toClockEntryResponses(entries []model.ClockEntry) []dto.ClockEntryResponse {
	result := make([]dto.ClockEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, dto.ClockEntryResponse{
			ID:         entries[i].ClockEntryID,
			Type:       entries[i].EntryType,
			OccurredAt: entries[i].OccurredAt.UTC().Format(timestampLayout),
		})
	}
	return result
}

func toWorkdayResponse(wd *model.DailyWorkday) dto.WorkdayResponse {
	return dto.WorkdayResponse{
		ID:            wd.WorkdayID,
		EmployeeID:    wd.EmployeeID,
		Date:          attendance.FormatDate(wd.WorkDate),
		ClockIn:       formatTimestamp(wd.ClockIn),
		ClockOut:      formatTimestamp(wd.ClockOut),
		WorkedMinutes: wd.WorkedMinutes,
		WorkedHours:   attendance.MinutesToHours(wd.WorkedMinutes),
		BreakMinutes:  wd.BreakMinutes,
		IsManual:      wd.IsManual,
		Notes:         wd.Notes,
		Status:        string(workdayStatus(wd)),
		Version:       wd.Version,
		Entries:       toClockEntryResponses(wd.Entries),
	}
}
