package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// 内存版仓储：读取返回副本，写入检查版本号与唯一约束，行为与 GORM 实现保持一致

// ── Mock TxRunner ──

type mockTxRunner struct {
	repo  *repository.Repository
	calls int
}

func (m *mockTxRunner) Run(_ context.Context, fn func(repo *repository.Repository) error) error {
	m.calls++
	return fn(m.repo)
}

// ── 测试仓储聚合 ──

type testRepos struct {
	repo          *repository.Repository
	employees     *mockEmployeeRepo
	departments   *mockDepartmentRepo
	jobRoles      *mockJobRoleRepo
	dateSchedules *mockDateScheduleRepo
	weekly        *mockWeeklyScheduleRepo
	workdays      *mockWorkdayRepo
	entries       *mockClockEntryRepo
	incidents     *mockIncidentRepo
	tx            *mockTxRunner
}

func newTestRepos() *testRepos {
	depts := newMockDepartmentRepo()
	roles := newMockJobRoleRepo()
	emps := newMockEmployeeRepo(depts, roles)
	depts.employees = emps
	entries := newMockClockEntryRepo()

	r := &testRepos{
		employees:     emps,
		departments:   depts,
		jobRoles:      roles,
		dateSchedules: newMockDateScheduleRepo(),
		weekly:        newMockWeeklyScheduleRepo(),
		workdays:      newMockWorkdayRepo(entries),
		entries:       entries,
		incidents:     newMockIncidentRepo(emps),
	}
	r.repo = &repository.Repository{
		Employee:       r.employees,
		Department:     r.departments,
		JobRole:        r.jobRoles,
		DateSchedule:   r.dateSchedules,
		WeeklySchedule: r.weekly,
		Workday:        r.workdays,
		ClockEntry:     r.entries,
		Incident:       r.incidents,
	}
	r.tx = &mockTxRunner{repo: r.repo}
	r.repo.Tx = r.tx
	return r
}

func inRange(day time.Time, from, to string) bool {
	d := attendance.FormatDate(day)
	return d >= from && d < to
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	emps  map[string]*model.Employee
	depts *mockDepartmentRepo
	roles *mockJobRoleRepo
	seq   int
}

func newMockEmployeeRepo(depts *mockDepartmentRepo, roles *mockJobRoleRepo) *mockEmployeeRepo {
	return &mockEmployeeRepo{emps: make(map[string]*model.Employee), depts: depts, roles: roles}
}

func (m *mockEmployeeRepo) emailTaken(email, exceptID string) bool {
	for _, e := range m.emps {
		if e.Email == email && e.EmployeeID != exceptID {
			return true
		}
	}
	return false
}

// withRelations 模拟 Preload("Department").Preload("JobRole")
func (m *mockEmployeeRepo) withRelations(e *model.Employee) *model.Employee {
	cp := *e
	cp.Department, cp.JobRole = nil, nil
	if cp.DepartmentID != nil && m.depts != nil {
		if d, ok := m.depts.depts[*cp.DepartmentID]; ok {
			dc := *d
			cp.Department = &dc
		}
	}
	if cp.JobRoleID != nil && m.roles != nil {
		if r, ok := m.roles.roles[*cp.JobRoleID]; ok {
			rc := *r
			cp.JobRole = &rc
		}
	}
	return &cp
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if m.emailTaken(emp.Email, "") {
		return pkgerrors.ErrDuplicateKey
	}
	if emp.EmployeeID == "" {
		m.seq++
		emp.EmployeeID = fmt.Sprintf("emp-%03d", m.seq)
	}
	if emp.Version == 0 {
		emp.Version = 1
	}
	emp.CreatedAt = time.Now()
	emp.UpdatedAt = emp.CreatedAt
	cp := *emp
	m.emps[emp.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.emps[id]; ok {
		return m.withRelations(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.emps {
		if e.Email == email {
			return m.withRelations(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	stored, ok := m.emps[emp.EmployeeID]
	if !ok || stored.Version != emp.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if m.emailTaken(emp.Email, emp.EmployeeID) {
		return pkgerrors.ErrDuplicateKey
	}
	emp.Version++
	emp.UpdatedAt = time.Now()
	cp := *emp
	cp.Department, cp.JobRole = nil, nil
	m.emps[emp.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) SetActive(_ context.Context, id string, active bool, updatedBy string) error {
	e, ok := m.emps[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.IsActive = active
	e.UpdatedBy = &updatedBy
	e.Version++
	return nil
}

func (m *mockEmployeeRepo) sorted(match func(e *model.Employee) bool) []model.Employee {
	var result []model.Employee
	for _, e := range m.emps {
		if match(e) {
			result = append(result, *m.withRelations(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	all := m.sorted(func(e *model.Employee) bool {
		if filter.DepartmentID != "" && (e.DepartmentID == nil || *e.DepartmentID != filter.DepartmentID) {
			return false
		}
		if filter.JobRoleID != "" && (e.JobRoleID == nil || *e.JobRoleID != filter.JobRoleID) {
			return false
		}
		if filter.Active != nil && e.IsActive != *filter.Active {
			return false
		}
		if filter.Keyword != "" {
			kw := strings.ToLower(filter.Keyword)
			if !strings.Contains(strings.ToLower(e.Name), kw) && !strings.Contains(strings.ToLower(e.Email), kw) {
				return false
			}
		}
		return true
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockEmployeeRepo) ListActive(_ context.Context) ([]model.Employee, error) {
	return m.sorted(func(e *model.Employee) bool { return e.IsActive }), nil
}

func (m *mockEmployeeRepo) ClearDepartment(_ context.Context, departmentID string) (int64, error) {
	var n int64
	for _, e := range m.emps {
		if e.DepartmentID != nil && *e.DepartmentID == departmentID {
			e.DepartmentID = nil
			n++
		}
	}
	return n, nil
}

func (m *mockEmployeeRepo) ClearJobRole(_ context.Context, jobRoleID string) (int64, error) {
	var n int64
	for _, e := range m.emps {
		if e.JobRoleID != nil && *e.JobRoleID == jobRoleID {
			e.JobRoleID = nil
			n++
		}
	}
	return n, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts     map[string]*model.Department
	employees *mockEmployeeRepo
	seq       int
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	for _, d := range m.depts {
		if d.Name == dept.Name {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if dept.DepartmentID == "" {
		m.seq++
		dept.DepartmentID = fmt.Sprintf("dept-%03d", m.seq)
	}
	if dept.Version == 0 {
		dept.Version = 1
	}
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) list(activeOnly bool) []model.Department {
	var result []model.Department
	for _, d := range m.depts {
		if !activeOnly || d.IsActive {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	return m.list(true), nil
}

func (m *mockDepartmentRepo) ListAll(_ context.Context) ([]model.Department, error) {
	return m.list(false), nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	stored, ok := m.depts[dept.DepartmentID]
	if !ok || stored.Version != dept.Version {
		return pkgerrors.ErrOptimisticLock
	}
	dept.Version++
	dept.UpdatedAt = time.Now()
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.depts, id)
	return nil
}

func (m *mockDepartmentRepo) CountMembers(_ context.Context, departmentID string) (int64, error) {
	counts, _ := m.BatchCountMembers(context.Background(), []string{departmentID})
	return counts[departmentID], nil
}

func (m *mockDepartmentRepo) BatchCountMembers(_ context.Context, departmentIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(departmentIDs))
	if m.employees == nil {
		return counts, nil
	}
	wanted := make(map[string]bool, len(departmentIDs))
	for _, id := range departmentIDs {
		wanted[id] = true
	}
	for _, e := range m.employees.emps {
		if e.DepartmentID != nil && wanted[*e.DepartmentID] {
			counts[*e.DepartmentID]++
		}
	}
	return counts, nil
}

// ── Mock JobRoleRepository ──

type mockJobRoleRepo struct {
	roles map[string]*model.JobRole
	seq   int
}

func newMockJobRoleRepo() *mockJobRoleRepo {
	return &mockJobRoleRepo{roles: make(map[string]*model.JobRole)}
}

func (m *mockJobRoleRepo) Create(_ context.Context, role *model.JobRole) error {
	for _, r := range m.roles {
		if r.Name == role.Name {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if role.JobRoleID == "" {
		m.seq++
		role.JobRoleID = fmt.Sprintf("role-%03d", m.seq)
	}
	role.CreatedAt = time.Now()
	cp := *role
	m.roles[role.JobRoleID] = &cp
	return nil
}

func (m *mockJobRoleRepo) GetByID(_ context.Context, id string) (*model.JobRole, error) {
	if r, ok := m.roles[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRoleRepo) GetByName(_ context.Context, name string) (*model.JobRole, error) {
	for _, r := range m.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRoleRepo) List(_ context.Context) ([]model.JobRole, error) {
	var result []model.JobRole
	for _, r := range m.roles {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockJobRoleRepo) Update(_ context.Context, role *model.JobRole) error {
	if _, ok := m.roles[role.JobRoleID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *role
	m.roles[role.JobRoleID] = &cp
	return nil
}

func (m *mockJobRoleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.roles, id)
	return nil
}

// ── Mock DateScheduleRepository ──

type mockDateScheduleRepo struct {
	items map[string]*model.DateSchedule
	seq   int
}

func newMockDateScheduleRepo() *mockDateScheduleRepo {
	return &mockDateScheduleRepo{items: make(map[string]*model.DateSchedule)}
}

func (m *mockDateScheduleRepo) filter(match func(ds *model.DateSchedule) bool) []model.DateSchedule {
	var result []model.DateSchedule
	for _, ds := range m.items {
		if match(ds) {
			result = append(result, *ds)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].ScheduleDate.Before(result[j].ScheduleDate)
	})
	return result
}

// put 测试中直接写入一条排班
func (m *mockDateScheduleRepo) put(employeeID, date, start, end string, breaks ...string) *model.DateSchedule {
	day, _ := attendance.ParseDate(date)
	ds := model.DateSchedule{
		EmployeeID:   employeeID,
		ScheduleDate: day,
		StartTime:    start,
		EndTime:      end,
		ScheduleType: string(attendance.ScheduleTotal),
	}
	if len(breaks) == 2 {
		ds.StartBreak, ds.EndBreak = &breaks[0], &breaks[1]
		ds.ScheduleType = string(attendance.ScheduleSplit)
	}
	_ = m.BatchCreate(context.Background(), []model.DateSchedule{ds})
	return m.findByEmployeeDate(employeeID, date)
}

func (m *mockDateScheduleRepo) findByEmployeeDate(employeeID, date string) *model.DateSchedule {
	for _, ds := range m.items {
		if ds.EmployeeID == employeeID && attendance.FormatDate(ds.ScheduleDate) == date {
			return ds
		}
	}
	return nil
}

func (m *mockDateScheduleRepo) GetByID(_ context.Context, id string) (*model.DateSchedule, error) {
	if ds, ok := m.items[id]; ok {
		cp := *ds
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDateScheduleRepo) ListByEmployeeRange(_ context.Context, employeeID, from, to string) ([]model.DateSchedule, error) {
	return m.filter(func(ds *model.DateSchedule) bool {
		return ds.EmployeeID == employeeID && inRange(ds.ScheduleDate, from, to)
	}), nil
}

func (m *mockDateScheduleRepo) ListByEmployeeDates(ctx context.Context, employeeID string, dates []string) ([]model.DateSchedule, error) {
	return m.ListByEmployeesDates(ctx, []string{employeeID}, dates)
}

func (m *mockDateScheduleRepo) ListByEmployeesDates(_ context.Context, employeeIDs []string, dates []string) ([]model.DateSchedule, error) {
	emps := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		emps[id] = true
	}
	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		days[d] = true
	}
	return m.filter(func(ds *model.DateSchedule) bool {
		return emps[ds.EmployeeID] && days[attendance.FormatDate(ds.ScheduleDate)]
	}), nil
}

func (m *mockDateScheduleRepo) ListByRange(_ context.Context, from, to string) ([]model.DateSchedule, error) {
	return m.filter(func(ds *model.DateSchedule) bool {
		return inRange(ds.ScheduleDate, from, to)
	}), nil
}

// BatchCreate 任一条违反 (employee_id, schedule_date) 唯一约束时整体失败
func (m *mockDateScheduleRepo) BatchCreate(_ context.Context, items []model.DateSchedule) error {
	seen := make(map[string]bool, len(items))
	for i := range items {
		date := attendance.FormatDate(items[i].ScheduleDate)
		key := items[i].EmployeeID + "|" + date
		if seen[key] || m.findByEmployeeDate(items[i].EmployeeID, date) != nil {
			return pkgerrors.ErrDuplicateKey
		}
		seen[key] = true
	}
	for i := range items {
		if items[i].DateScheduleID == "" {
			m.seq++
			items[i].DateScheduleID = fmt.Sprintf("ds-%04d", m.seq)
		}
		items[i].CreatedAt = time.Now()
		cp := items[i]
		m.items[cp.DateScheduleID] = &cp
	}
	return nil
}

func (m *mockDateScheduleRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var result []string
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

func (m *mockDateScheduleRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockDateScheduleRepo) DeleteByEmployeeDates(_ context.Context, employeeID string, dates []string) (int64, error) {
	var n int64
	for _, d := range dates {
		if ds := m.findByEmployeeDate(employeeID, d); ds != nil {
			delete(m.items, ds.DateScheduleID)
			n++
		}
	}
	return n, nil
}

func (m *mockDateScheduleRepo) EmployeeIDsByIDs(_ context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, id := range ids {
		if ds, ok := m.items[id]; ok && !seen[ds.EmployeeID] {
			seen[ds.EmployeeID] = true
			result = append(result, ds.EmployeeID)
		}
	}
	return result, nil
}

// ── Mock WeeklyScheduleRepository ──

type mockWeeklyScheduleRepo struct {
	items map[string]*model.WeeklySchedule // key: employee_id|day_of_week
	seq   int
}

func newMockWeeklyScheduleRepo() *mockWeeklyScheduleRepo {
	return &mockWeeklyScheduleRepo{items: make(map[string]*model.WeeklySchedule)}
}

func weeklyKey(employeeID string, day int) string {
	return fmt.Sprintf("%s|%d", employeeID, day)
}

func (m *mockWeeklyScheduleRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.WeeklySchedule, error) {
	var result []model.WeeklySchedule
	for _, ws := range m.items {
		if ws.EmployeeID == employeeID {
			result = append(result, *ws)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DayOfWeek < result[j].DayOfWeek })
	return result, nil
}

func (m *mockWeeklyScheduleRepo) Upsert(_ context.Context, items []model.WeeklySchedule) error {
	for i := range items {
		key := weeklyKey(items[i].EmployeeID, items[i].DayOfWeek)
		if existing, ok := m.items[key]; ok {
			items[i].WeeklyScheduleID = existing.WeeklyScheduleID
		} else if items[i].WeeklyScheduleID == "" {
			m.seq++
			items[i].WeeklyScheduleID = fmt.Sprintf("ws-%03d", m.seq)
		}
		cp := items[i]
		m.items[key] = &cp
	}
	return nil
}

func (m *mockWeeklyScheduleRepo) DeleteByEmployeeDays(_ context.Context, employeeID string, days []int) (int64, error) {
	var n int64
	for key, ws := range m.items {
		if ws.EmployeeID != employeeID {
			continue
		}
		match := len(days) == 0
		for _, d := range days {
			if ws.DayOfWeek == d {
				match = true
			}
		}
		if match {
			delete(m.items, key)
			n++
		}
	}
	return n, nil
}

// ── Mock WorkdayRepository ──

type mockWorkdayRepo struct {
	days    map[string]*model.DailyWorkday
	entries *mockClockEntryRepo
	seq     int
}

func newMockWorkdayRepo(entries *mockClockEntryRepo) *mockWorkdayRepo {
	return &mockWorkdayRepo{days: make(map[string]*model.DailyWorkday), entries: entries}
}

// withEntries 模拟 Preload("Entries")
func (m *mockWorkdayRepo) withEntries(wd *model.DailyWorkday) *model.DailyWorkday {
	cp := *wd
	cp.Entries, _ = m.entries.ListByWorkday(context.Background(), wd.WorkdayID)
	return &cp
}

func (m *mockWorkdayRepo) Create(_ context.Context, wd *model.DailyWorkday) error {
	date := attendance.FormatDate(wd.WorkDate)
	for _, d := range m.days {
		if d.EmployeeID == wd.EmployeeID && attendance.FormatDate(d.WorkDate) == date {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if wd.WorkdayID == "" {
		m.seq++
		wd.WorkdayID = fmt.Sprintf("wd-%03d", m.seq)
	}
	if wd.Version == 0 {
		wd.Version = 1
	}
	wd.CreatedAt = time.Now()
	cp := *wd
	cp.Entries = nil
	m.days[wd.WorkdayID] = &cp
	return nil
}

func (m *mockWorkdayRepo) GetByID(_ context.Context, id string) (*model.DailyWorkday, error) {
	if wd, ok := m.days[id]; ok {
		return m.withEntries(wd), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkdayRepo) GetByEmployeeDate(_ context.Context, employeeID, date string) (*model.DailyWorkday, error) {
	for _, wd := range m.days {
		if wd.EmployeeID == employeeID && attendance.FormatDate(wd.WorkDate) == date {
			return m.withEntries(wd), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkdayRepo) list(match func(wd *model.DailyWorkday) bool) []model.DailyWorkday {
	var result []model.DailyWorkday
	for _, wd := range m.days {
		if match(wd) {
			result = append(result, *wd)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkDate.Before(result[j].WorkDate) })
	return result
}

func (m *mockWorkdayRepo) ListByEmployeeRange(_ context.Context, employeeID, from, to string) ([]model.DailyWorkday, error) {
	return m.list(func(wd *model.DailyWorkday) bool {
		return wd.EmployeeID == employeeID && inRange(wd.WorkDate, from, to)
	}), nil
}

func (m *mockWorkdayRepo) ListByRange(_ context.Context, from, to string) ([]model.DailyWorkday, error) {
	return m.list(func(wd *model.DailyWorkday) bool {
		return inRange(wd.WorkDate, from, to)
	}), nil
}

func (m *mockWorkdayRepo) Update(_ context.Context, wd *model.DailyWorkday) error {
	stored, ok := m.days[wd.WorkdayID]
	if !ok || stored.Version != wd.Version {
		return pkgerrors.ErrOptimisticLock
	}
	wd.Version++
	cp := *wd
	cp.Entries = nil
	m.days[wd.WorkdayID] = &cp
	return nil
}

func (m *mockWorkdayRepo) Delete(_ context.Context, id string) error {
	delete(m.days, id)
	_, _ = m.entries.DeleteByWorkday(context.Background(), id)
	return nil
}

// ── Mock ClockEntryRepository ──

type mockClockEntryRepo struct {
	entries []model.ClockEntry
	seq     int
}

func newMockClockEntryRepo() *mockClockEntryRepo {
	return &mockClockEntryRepo{}
}

func (m *mockClockEntryRepo) Create(_ context.Context, entry *model.ClockEntry) error {
	if entry.ClockEntryID == "" {
		m.seq++
		entry.ClockEntryID = fmt.Sprintf("ce-%04d", m.seq)
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockClockEntryRepo) ListByWorkday(_ context.Context, workdayID string) ([]model.ClockEntry, error) {
	var result []model.ClockEntry
	for _, e := range m.entries {
		if e.WorkdayID == workdayID {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].OccurredAt.Before(result[j].OccurredAt) })
	return result, nil
}

func (m *mockClockEntryRepo) CountByWorkday(ctx context.Context, workdayID string) (int64, error) {
	entries, _ := m.ListByWorkday(ctx, workdayID)
	return int64(len(entries)), nil
}

func (m *mockClockEntryRepo) DeleteByWorkday(_ context.Context, workdayID string) (int64, error) {
	var remaining []model.ClockEntry
	var n int64
	for _, e := range m.entries {
		if e.WorkdayID == workdayID {
			n++
			continue
		}
		remaining = append(remaining, e)
	}
	m.entries = remaining
	return n, nil
}

// ── Mock IncidentRepository ──

type mockIncidentRepo struct {
	items     map[string]*model.Incident
	employees *mockEmployeeRepo
	seq       int
}

func newMockIncidentRepo(employees *mockEmployeeRepo) *mockIncidentRepo {
	return &mockIncidentRepo{items: make(map[string]*model.Incident), employees: employees}
}

func (m *mockIncidentRepo) Create(_ context.Context, inc *model.Incident) error {
	if inc.IncidentID == "" {
		m.seq++
		inc.IncidentID = fmt.Sprintf("inc-%03d", m.seq)
	}
	inc.CreatedAt = time.Now()
	cp := *inc
	cp.Employee = nil
	m.items[inc.IncidentID] = &cp
	return nil
}

func (m *mockIncidentRepo) withEmployee(inc *model.Incident) model.Incident {
	cp := *inc
	if e, ok := m.employees.emps[inc.EmployeeID]; ok {
		ec := *e
		cp.Employee = &ec
	}
	return cp
}

func (m *mockIncidentRepo) GetByID(_ context.Context, id string) (*model.Incident, error) {
	if inc, ok := m.items[id]; ok {
		cp := m.withEmployee(inc)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIncidentRepo) List(_ context.Context, filter repository.IncidentFilter, offset, limit int) ([]model.Incident, int64, error) {
	var all []model.Incident
	for _, inc := range m.items {
		if filter.EmployeeID != "" && inc.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && inc.Status != filter.Status {
			continue
		}
		d := attendance.FormatDate(inc.IncidentDate)
		if filter.From != "" && d < filter.From {
			continue
		}
		if filter.To != "" && d >= filter.To {
			continue
		}
		all = append(all, m.withEmployee(inc))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IncidentDate.After(all[j].IncidentDate) })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockIncidentRepo) UpdateReview(_ context.Context, inc *model.Incident) error {
	stored, ok := m.items[inc.IncidentID]
	if !ok || stored.Status != model.IncidentPending {
		return gorm.ErrRecordNotFound
	}
	stored.Status = inc.Status
	stored.ReviewedBy = inc.ReviewedBy
	stored.ReviewedAt = inc.ReviewedAt
	stored.ReviewNote = inc.ReviewNote
	stored.UpdatedBy = inc.UpdatedBy
	return nil
}

func (m *mockIncidentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ── 测试替身：时钟 / 通知 / 缓存 ──

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newFixedClock(value string) *fixedClock {
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return &fixedClock{now: t}
}

type recordingNotifier struct {
	changes []Change
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, change Change) error {
	n.changes = append(n.changes, change)
	return n.err
}

func (n *recordingNotifier) last() Change {
	if len(n.changes) == 0 {
		return Change{}
	}
	return n.changes[len(n.changes)-1]
}

type memoryCache struct {
	values  map[string][]byte
	deleted []string
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

// ── 测试数据 ──

func createTestEmployee(r *testRepos, name string) *model.Employee {
	emp := &model.Employee{
		Name:            name,
		Email:           strings.ToLower(name) + "@example.com",
		Role:            model.RoleEmployee,
		ConventionHours: 1752,
		IsActive:        true,
	}
	if err := r.employees.Create(context.Background(), emp); err != nil {
		panic(err)
	}
	return emp
}

func deactivate(r *testRepos, emp *model.Employee) {
	r.employees.emps[emp.EmployeeID].IsActive = false
	emp.IsActive = false
}
