package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// ── 日期排班模块业务错误 ──

var (
	ErrDateScheduleNotFound  = errors.New("排班不存在")
	ErrDatesAlreadyScheduled = errors.New("所选日期均已排班，请使用修改操作")
	ErrDatesNotScheduled     = errors.New("所选日期尚未排班，请使用创建操作")
	ErrScheduleConflict      = errors.New("所选日期已存在排班，请刷新后重试")
	ErrScheduleTypeMismatch  = errors.New("班次类型与休息设置不一致")
	ErrEmptyDeleteRequest    = errors.New("请提供 ids，或同时提供 employee_id 与 dates")
	ErrCopySourceEmpty       = errors.New("源员工当年没有排班")
)

// 复制失败原因
const (
	CopyReasonConflict     = "conflict"
	CopyReasonNotFound     = "not_found"
	CopyReasonInactive     = "inactive"
	CopyReasonSameAsSource = "same_as_source"
	CopyReasonError        = "error"
)

// DateScheduleService 日期排班业务接口
type DateScheduleService interface {
	Calendar(ctx context.Context, req *dto.CalendarRequest) (*dto.CalendarResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.DateScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DateScheduleResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	// BulkCreate 为一组未排班日期创建相同班次
	BulkCreate(ctx context.Context, req *dto.BulkScheduleRequest, callerID string) (*dto.BulkScheduleResponse, error)
	// BulkModify 以先删后建的方式替换一组已排班日期的班次，两步在同一事务内
	BulkModify(ctx context.Context, req *dto.BulkScheduleRequest, callerID string) (*dto.BulkScheduleResponse, error)
	// BulkDelete 删除选中的排班，已不存在的记录会被过滤
	BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest, callerID string) (*dto.BulkDeleteResponse, error)

	// CopyTargets 列出可作为复制目标的员工，已有冲突排班的员工标记为不可选
	CopyTargets(ctx context.Context, req *dto.CopyTargetsRequest) ([]dto.CopyTargetResponse, error)
	// Copy 将源员工全年排班逐个复制给目标员工，每个目标独立事务
	Copy(ctx context.Context, req *dto.CopyScheduleRequest, callerID string) (*dto.CopyScheduleResponse, error)
}

type dateScheduleService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	clock    attendance.Clock
	logger   *zap.Logger
}

// NewDateScheduleService 创建 DateScheduleService 实例
func NewDateScheduleService(repo *repository.Repository, notifier ChangeNotifier, clock attendance.Clock, logger *zap.Logger) DateScheduleService {
	return &dateScheduleService{repo: repo, notifier: notifier, clock: clock, logger: logger}
}

// ────────────────────── Calendar ──────────────────────

func (s *dateScheduleService) Calendar(ctx context.Context, req *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	if _, err := s.getEmployee(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	year := resolveYear(s.clock, req.Year)
	from, to := yearRange(year)
	items, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, req.EmployeeID, from, to)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	days := make([]attendance.DaySchedule, 0, len(items))
	scheduled := make(map[string]bool, len(items))
	for i := range items {
		day := toDaySchedule(&items[i])
		days = append(days, day)
		scheduled[day.Date] = true
	}

	// 回放已选日期，得到当前选择状态
	sel := attendance.NewSelection()
	if req.Selected != "" {
		dates, err := normalizeDates(strings.Split(req.Selected, ","))
		if err != nil {
			return nil, err
		}
		if sel, err = attendance.SelectionFromDates(dates, scheduled); err != nil {
			return nil, err
		}
	}

	cal := attendance.BuildYearCalendar(year, days, sel.Set(), attendance.Today(s.clock))
	return &dto.CalendarResponse{
		EmployeeID:     req.EmployeeID,
		SelectionState: string(sel.State()),
		SelectedDates:  sel.Dates(),
		YearCalendar:   cal,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *dateScheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.DateScheduleResponse, error) {
	if _, err := s.getEmployee(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	from, to := yearRange(resolveYear(s.clock, req.Year))
	items, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, req.EmployeeID, from, to)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.DateScheduleResponse, 0, len(items))
	for i := range items {
		result = append(result, toDateScheduleResponse(&items[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *dateScheduleService) GetByID(ctx context.Context, id string) (*dto.DateScheduleResponse, error) {
	ds, err := s.repo.DateSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDateScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toDateScheduleResponse(ds)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *dateScheduleService) Delete(ctx context.Context, id string, callerID string) error {
	ds, err := s.repo.DateSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDateScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if _, err := s.repo.DateSchedule.DeleteByIDs(ctx, []string{id}); err != nil {
		s.logger.Error("删除排班失败", zap.String("id", id), zap.Error(err))
		return err
	}

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityDateSchedule,
		Action:      ActionDeleted,
		EmployeeIDs: []string{ds.EmployeeID},
		Year:        ds.ScheduleDate.Year(),
		ActorID:     callerID,
	})
	return nil
}

// ═══════════════════════════════════════════════════════════
// BulkCreate / BulkModify — 批量创建与修改
// ═══════════════════════════════════════════════════════════
//
// 写入前完成全部校验：
//   - 班次时间格式、先后顺序、休息范围
//   - 日期去重后按选择状态机回放：混选直接拒绝
//   - 创建要求全部未排班，修改要求全部已排班

func (s *dateScheduleService) BulkCreate(ctx context.Context, req *dto.BulkScheduleRequest, callerID string) (*dto.BulkScheduleResponse, error) {
	dates, shift, err := s.prepareBulk(ctx, req, attendance.SelectingWithoutSchedule)
	if err != nil {
		return nil, err
	}

	items := buildDateSchedules(req.EmployeeID, dates, shift, callerID)
	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		return tx.DateSchedule.BatchCreate(ctx, items)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrScheduleConflict
		}
		s.logger.Error("批量创建排班失败",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("count", len(items)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量创建排班",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("count", len(items)),
		zap.String("caller", callerID))

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityDateSchedule,
		Action:      ActionCreated,
		EmployeeIDs: []string{req.EmployeeID},
		Year:        commonYear(dates),
		ActorID:     callerID,
	})
	return toBulkScheduleResponse(items), nil
}

func (s *dateScheduleService) BulkModify(ctx context.Context, req *dto.BulkScheduleRequest, callerID string) (*dto.BulkScheduleResponse, error) {
	dates, shift, err := s.prepareBulk(ctx, req, attendance.SelectingWithSchedule)
	if err != nil {
		return nil, err
	}

	items := buildDateSchedules(req.EmployeeID, dates, shift, callerID)
	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		if _, err := tx.DateSchedule.DeleteByEmployeeDates(ctx, req.EmployeeID, dates); err != nil {
			return err
		}
		return tx.DateSchedule.BatchCreate(ctx, items)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrScheduleConflict
		}
		s.logger.Error("批量修改排班失败，原排班保持不变",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("count", len(items)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量修改排班",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("count", len(items)),
		zap.String("caller", callerID))

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityDateSchedule,
		Action:      ActionUpdated,
		EmployeeIDs: []string{req.EmployeeID},
		Year:        commonYear(dates),
		ActorID:     callerID,
	})
	return toBulkScheduleResponse(items), nil
}

// prepareBulk 校验员工、班次与日期选择，返回去重排序后的日期
func (s *dateScheduleService) prepareBulk(ctx context.Context, req *dto.BulkScheduleRequest, want attendance.SelectionState) ([]string, attendance.Shift, error) {
	shift, err := parseScheduleTimes(&req.ScheduleTimes)
	if err != nil {
		return nil, attendance.Shift{}, err
	}

	emp, err := s.getEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, attendance.Shift{}, err
	}
	if !emp.IsActive {
		return nil, attendance.Shift{}, ErrEmployeeInactive
	}

	dates, err := normalizeDates(req.Dates)
	if err != nil {
		return nil, attendance.Shift{}, err
	}

	existing, err := s.repo.DateSchedule.ListByEmployeeDates(ctx, req.EmployeeID, dates)
	if err != nil {
		s.logger.Error("查询已有排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, attendance.Shift{}, err
	}
	scheduled := make(map[string]bool, len(existing))
	for i := range existing {
		scheduled[attendance.FormatDate(existing[i].ScheduleDate)] = true
	}

	sel, err := attendance.SelectionFromDates(dates, scheduled)
	if err != nil {
		return nil, attendance.Shift{}, err
	}
	if sel.State() != want {
		if want == attendance.SelectingWithoutSchedule {
			return nil, attendance.Shift{}, ErrDatesAlreadyScheduled
		}
		return nil, attendance.Shift{}, ErrDatesNotScheduled
	}
	return sel.Dates(), shift, nil
}

// ═══════════════════════════════════════════════════════════
// BulkDelete — 批量删除
// ═══════════════════════════════════════════════════════════
//
// 两种形式：
//   - ids：先过滤掉已不存在的记录，再删除剩余部分
//   - employee_id + dates：删除该员工在这些日期上的排班
// 过滤后为空视为成功，deleted 为 0

func (s *dateScheduleService) BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest, callerID string) (*dto.BulkDeleteResponse, error) {
	var (
		requested int
		targetIDs []string
		missing   []string
		employees []string
		year      int
	)

	switch {
	case len(req.IDs) > 0:
		ids := uniqueStrings(req.IDs)
		requested = len(ids)

		existing, err := s.repo.DateSchedule.ExistingIDs(ctx, ids)
		if err != nil {
			s.logger.Error("查询排班是否存在失败", zap.Error(err))
			return nil, err
		}
		targetIDs = existing
		missing = difference(ids, existing)

		if employees, err = s.repo.DateSchedule.EmployeeIDsByIDs(ctx, targetIDs); err != nil {
			s.logger.Error("查询排班所属员工失败", zap.Error(err))
			return nil, err
		}

	case req.EmployeeID != "" && len(req.Dates) > 0:
		dates, err := normalizeDates(req.Dates)
		if err != nil {
			return nil, err
		}
		requested = len(dates)

		rows, err := s.repo.DateSchedule.ListByEmployeeDates(ctx, req.EmployeeID, dates)
		if err != nil {
			s.logger.Error("查询已有排班失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
			return nil, err
		}
		found := make([]string, 0, len(rows))
		for i := range rows {
			targetIDs = append(targetIDs, rows[i].DateScheduleID)
			found = append(found, attendance.FormatDate(rows[i].ScheduleDate))
		}
		missing = difference(dates, found)
		employees = []string{req.EmployeeID}
		year = commonYear(dates)

	default:
		return nil, ErrEmptyDeleteRequest
	}

	resp := &dto.BulkDeleteResponse{Requested: requested, Missing: missing}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	if len(targetIDs) == 0 {
		return resp, nil
	}

	deleted, err := s.repo.DateSchedule.DeleteByIDs(ctx, targetIDs)
	if err != nil {
		s.logger.Error("批量删除排班失败", zap.Int("count", len(targetIDs)), zap.Error(err))
		return nil, err
	}
	resp.Deleted = deleted

	s.logger.Info("批量删除排班",
		zap.Int("requested", requested),
		zap.Int64("deleted", deleted),
		zap.Int("missing", len(missing)),
		zap.String("caller", callerID))

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityDateSchedule,
		Action:      ActionDeleted,
		EmployeeIDs: employees,
		Year:        year,
		ActorID:     callerID,
	})
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// CopyTargets / Copy — 复制排班到其他员工
// ═══════════════════════════════════════════════════════════

func (s *dateScheduleService) CopyTargets(ctx context.Context, req *dto.CopyTargetsRequest) ([]dto.CopyTargetResponse, error) {
	if _, err := s.getEmployee(ctx, req.SourceEmployeeID); err != nil {
		return nil, err
	}

	source, err := s.sourceSchedules(ctx, req.SourceEmployeeID, resolveYear(s.clock, req.Year))
	if err != nil {
		return nil, err
	}
	dates := scheduleDates(source)

	emps, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询在职员工失败", zap.Error(err))
		return nil, err
	}

	targetIDs := make([]string, 0, len(emps))
	for i := range emps {
		if emps[i].EmployeeID != req.SourceEmployeeID {
			targetIDs = append(targetIDs, emps[i].EmployeeID)
		}
	}

	conflicts, err := s.repo.DateSchedule.ListByEmployeesDates(ctx, targetIDs, dates)
	if err != nil {
		s.logger.Error("查询目标员工冲突排班失败", zap.Error(err))
		return nil, err
	}
	conflictMap := make(map[string][]string)
	for i := range conflicts {
		id := conflicts[i].EmployeeID
		conflictMap[id] = append(conflictMap[id], attendance.FormatDate(conflicts[i].ScheduleDate))
	}

	result := make([]dto.CopyTargetResponse, 0, len(targetIDs))
	for i := range emps {
		emp := &emps[i]
		if emp.EmployeeID == req.SourceEmployeeID {
			continue
		}
		target := dto.CopyTargetResponse{
			EmployeeID:       emp.EmployeeID,
			Name:             emp.Name,
			ConflictingDates: conflictMap[emp.EmployeeID],
		}
		target.Disabled = len(target.ConflictingDates) > 0
		if emp.Department != nil {
			target.Department = emp.Department.Name
		}
		result = append(result, target)
	}
	return result, nil
}

func (s *dateScheduleService) Copy(ctx context.Context, req *dto.CopyScheduleRequest, callerID string) (*dto.CopyScheduleResponse, error) {
	if _, err := s.getEmployee(ctx, req.SourceEmployeeID); err != nil {
		return nil, err
	}

	source, err := s.sourceSchedules(ctx, req.SourceEmployeeID, req.Year)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ErrCopySourceEmpty
	}
	dates := scheduleDates(source)

	resp := &dto.CopyScheduleResponse{
		SourceCount: len(source),
		Results:     make([]dto.CopyTargetResult, 0, len(req.TargetEmployeeIDs)),
	}
	var copied []string

	// 逐个目标复制；单个目标失败不回滚其他目标
	for _, targetID := range uniqueStrings(req.TargetEmployeeIDs) {
		result := s.copyToTarget(ctx, req.SourceEmployeeID, targetID, source, dates, callerID)
		if result.Success {
			resp.SuccessCount++
			copied = append(copied, targetID)
		} else {
			resp.FailedCount++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("复制排班完成",
		zap.String("source", req.SourceEmployeeID),
		zap.Int("year", req.Year),
		zap.Int("success", resp.SuccessCount),
		zap.Int("failed", resp.FailedCount),
		zap.String("caller", callerID))

	if len(copied) > 0 {
		notifyChange(detach(ctx), s.notifier, Change{
			Entity:      EntityDateSchedule,
			Action:      ActionCopied,
			EmployeeIDs: copied,
			Year:        req.Year,
			ActorID:     callerID,
		})
	}
	return resp, nil
}

// errCopyConflict 目标员工在源日期上已有排班
type errCopyConflict struct {
	dates []string
}

func (e *errCopyConflict) Error() string {
	return "目标员工已有冲突排班: " + strings.Join(e.dates, ",")
}

func (s *dateScheduleService) copyToTarget(ctx context.Context, sourceID, targetID string, source []model.DateSchedule, dates []string, callerID string) dto.CopyTargetResult {
	result := dto.CopyTargetResult{EmployeeID: targetID}

	if targetID == sourceID {
		result.Reason = CopyReasonSameAsSource
		return result
	}

	emp, err := s.repo.Employee.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Reason = CopyReasonNotFound
			return result
		}
		s.logger.Error("查询目标员工失败", zap.String("target", targetID), zap.Error(err))
		result.Reason = CopyReasonError
		return result
	}
	if !emp.IsActive {
		result.Reason = CopyReasonInactive
		return result
	}

	items := make([]model.DateSchedule, 0, len(source))
	for i := range source {
		item := source[i]
		item.DateScheduleID = ""
		item.EmployeeID = targetID
		item.BaseModel = model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID}
		items = append(items, item)
	}

	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		existing, err := tx.DateSchedule.ListByEmployeeDates(ctx, targetID, dates)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return &errCopyConflict{dates: scheduleDates(existing)}
		}
		return tx.DateSchedule.BatchCreate(ctx, items)
	})

	var conflict *errCopyConflict
	switch {
	case err == nil:
		result.Success = true
		result.Created = len(items)
	case errors.As(err, &conflict):
		result.Reason = CopyReasonConflict
		result.ConflictingDates = conflict.dates
	case errors.Is(err, pkgerrors.ErrDuplicateKey):
		result.Reason = CopyReasonConflict
	default:
		s.logger.Error("复制排班到目标员工失败",
			zap.String("source", sourceID),
			zap.String("target", targetID),
			zap.Error(err))
		result.Reason = CopyReasonError
	}
	return result
}

func (s *dateScheduleService) sourceSchedules(ctx context.Context, employeeID string, year int) ([]model.DateSchedule, error) {
	from, to := yearRange(year)
	items, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询源员工排班失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *dateScheduleService) getEmployee(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

// ── 内部辅助方法 ──

// parseScheduleTimes 校验班次时间并核对班次类型
func parseScheduleTimes(t *dto.ScheduleTimes) (attendance.Shift, error) {
	shift, err := attendance.ParseShift(t.StartTime, t.EndTime, t.StartBreak, t.EndBreak)
	if err != nil {
		return attendance.Shift{}, err
	}
	if t.ScheduleType != "" && attendance.ScheduleType(t.ScheduleType) != shift.Type() {
		return attendance.Shift{}, ErrScheduleTypeMismatch
	}
	return shift, nil
}

// breakPointers 返回规范化后的休息时间，未设置休息时为 nil
func breakPointers(shift attendance.Shift) (*string, *string) {
	if !shift.HasBreak() {
		return nil, nil
	}
	return strPtr(shift.BreakStart.String()), strPtr(shift.BreakEnd.String())
}

func buildDateSchedules(employeeID string, dates []string, shift attendance.Shift, callerID string) []model.DateSchedule {
	startBreak, endBreak := breakPointers(shift)
	items := make([]model.DateSchedule, 0, len(dates))
	for _, d := range dates {
		day, _ := attendance.ParseDate(d)
		item := model.DateSchedule{
			EmployeeID:   employeeID,
			ScheduleDate: day,
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
	return items
}

func toDaySchedule(ds *model.DateSchedule) attendance.DaySchedule {
	return attendance.DaySchedule{
		ID:           ds.DateScheduleID,
		Date:         attendance.FormatDate(ds.ScheduleDate),
		StartTime:    ds.StartTime,
		EndTime:      ds.EndTime,
		StartBreak:   ds.StartBreak,
		EndBreak:     ds.EndBreak,
		ScheduleType: attendance.ScheduleType(ds.ScheduleType),
	}
}

// scheduleShift 将已存储的排班还原为班次；历史脏数据返回错误
func scheduleShift(ds *model.DateSchedule) (attendance.Shift, error) {
	return attendance.ParseShift(ds.StartTime, ds.EndTime, ds.StartBreak, ds.EndBreak)
}

func toDateScheduleResponse(ds *model.DateSchedule) dto.DateScheduleResponse {
	resp := dto.DateScheduleResponse{
		ID:           ds.DateScheduleID,
		EmployeeID:   ds.EmployeeID,
		Date:         attendance.FormatDate(ds.ScheduleDate),
		StartTime:    ds.StartTime,
		EndTime:      ds.EndTime,
		StartBreak:   ds.StartBreak,
		EndBreak:     ds.EndBreak,
		ScheduleType: ds.ScheduleType,
	}
	if shift, err := scheduleShift(ds); err == nil {
		resp.WorkMinutes = shift.WorkMinutes()
		resp.WorkHours = attendance.MinutesToHours(resp.WorkMinutes)
	}
	return resp
}

func toBulkScheduleResponse(items []model.DateSchedule) *dto.BulkScheduleResponse {
	resp := &dto.BulkScheduleResponse{
		Count:     len(items),
		Schedules: make([]dto.DateScheduleResponse, 0, len(items)),
	}
	for i := range items {
		resp.Schedules = append(resp.Schedules, toDateScheduleResponse(&items[i]))
	}
	return resp
}

func scheduleDates(items []model.DateSchedule) []string {
	dates := make([]string, 0, len(items))
	for i := range items {
		dates = append(dates, attendance.FormatDate(items[i].ScheduleDate))
	}
	sort.Strings(dates)
	return dates
}

// commonYear 所有日期同属一年时返回该年，否则返回 0
func commonYear(dates []string) int {
	year := 0
	for _, d := range dates {
		t, err := attendance.ParseDate(d)
		if err != nil {
			return 0
		}
		if year == 0 {
			year = t.Year()
		} else if year != t.Year() {
			return 0
		}
	}
	return year
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

// difference 返回 all 中不在 present 里的元素，保持原顺序
func difference(all, present []string) []string {
	set := make(map[string]bool, len(present))
	for _, p := range present {
		set[p] = true
	}
	var result []string
	for _, v := range all {
		if !set[v] {
			result = append(result, v)
		}
	}
	return result
}
