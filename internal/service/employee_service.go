package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"timetrack/backend/config"
	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound     = errors.New("员工不存在")
	ErrEmployeeInactive     = errors.New("员工已停用")
	ErrEmailExists          = errors.New("邮箱已被使用")
	ErrCannotDeactivateSelf = errors.New("不能停用自己的账号")
)

// EmployeeService 员工业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	// Deactivate 停用员工（不物理删除）
	Deactivate(ctx context.Context, id string, callerID string) error
	Activate(ctx context.Context, id string, callerID string) error

	// ParseImportFile 解析导入 Excel 文件
	ParseImportFile(reader io.Reader) ([]ImportEmployeeRow, error)
	// Import 批量创建员工，通过校验的行在同一事务内写入
	Import(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error)
}

// ImportEmployeeRow Excel 导入的一行
type ImportEmployeeRow struct {
	Row             int
	Name            string
	Email           string
	DepartmentName  string
	JobRoleName     string
	HireDate        string
	ConventionHours string
}

type employeeService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(cfg *config.Config, repo *repository.Repository, notifier ChangeNotifier, logger *zap.Logger) EmployeeService {
	return &employeeService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, req.DepartmentID, req.JobRoleID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	emp := &model.Employee{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		PasswordHash:    string(hash),
		Role:            model.RoleEmployee,
		DepartmentID:    req.DepartmentID,
		JobRoleID:       req.JobRoleID,
		ConventionHours: s.cfg.Attendance.DefaultConventionHours,
		IsActive:        true,
	}
	if req.Role != "" {
		emp.Role = req.Role
	}
	if req.ConventionHours != nil {
		emp.ConventionHours = *req.ConventionHours
	}
	if req.HireDate != nil {
		d, err := attendance.ParseDate(*req.HireDate)
		if err != nil {
			return nil, err
		}
		emp.HireDate = &d
	}
	emp.CreatedBy = &callerID
	emp.UpdatedBy = &callerID

	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, err
	}

	s.notify(ctx, emp.EmployeeID, ActionCreated, callerID)
	return s.GetByID(ctx, emp.EmployeeID)
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	filter := repository.EmployeeFilter{
		DepartmentID: req.DepartmentID,
		JobRoleID:    req.JobRoleID,
		Active:       req.Active,
		Keyword:      strings.TrimSpace(req.Keyword),
	}

	emps, total, err := s.repo.Employee.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		result = append(result, toEmployeeResponse(&emps[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != emp.Email {
			if err := s.ensureEmailFree(ctx, email, emp.EmployeeID); err != nil {
				return nil, err
			}
			emp.Email = email
		}
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}

	if err := s.ensureReferences(ctx, req.DepartmentID, req.JobRoleID); err != nil {
		return nil, err
	}
	switch {
	case req.ClearDepartment:
		emp.DepartmentID = nil
	case req.DepartmentID != nil:
		emp.DepartmentID = req.DepartmentID
	}
	switch {
	case req.ClearJobRole:
		emp.JobRoleID = nil
	case req.JobRoleID != nil:
		emp.JobRoleID = req.JobRoleID
	}

	if req.HireDate != nil {
		d, err := attendance.ParseDate(*req.HireDate)
		if err != nil {
			return nil, err
		}
		emp.HireDate = &d
	}
	if req.ConventionHours != nil {
		emp.ConventionHours = *req.ConventionHours
	}
	emp.UpdatedBy = &callerID

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.notify(ctx, id, ActionUpdated, callerID)
	return s.GetByID(ctx, id)
}

// ────────────────────── Deactivate / Activate ──────────────────────

func (s *employeeService) Deactivate(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrCannotDeactivateSelf
	}
	return s.setActive(ctx, id, false, callerID)
}

func (s *employeeService) Activate(ctx context.Context, id string, callerID string) error {
	return s.setActive(ctx, id, true, callerID)
}

func (s *employeeService) setActive(ctx context.Context, id string, active bool, callerID string) error {
	if err := s.repo.Employee.SetActive(ctx, id, active, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("更新员工状态失败", zap.String("id", id), zap.Bool("active", active), zap.Error(err))
		return err
	}

	s.logger.Info("员工状态已变更",
		zap.String("id", id),
		zap.Bool("active", active),
		zap.String("caller", callerID))
	s.notify(ctx, id, ActionUpdated, callerID)
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱）")
)

func (s *employeeService) ParseImportFile(reader io.Reader) ([]ImportEmployeeRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportEmployeeRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportEmployeeRow{
			Row:             i + 1,
			Name:            cell(row, "name"),
			Email:           cell(row, "email"),
			DepartmentName:  cell(row, "department"),
			JobRoleName:     cell(row, "job_role"),
			HireDate:        cell(row, "hire_date"),
			ConventionHours: cell(row, "convention_hours"),
		}
		// 跳过全空行
		if item.Name == "" && item.Email == "" && item.DepartmentName == "" && item.JobRoleName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":             -1,
		"email":            -1,
		"department":       -1,
		"job_role":         -1,
		"hire_date":        -1,
		"convention_hours": -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "部门", "department":
			idx["department"] = i
		case "岗位", "job_role", "role":
			idx["job_role"] = i
		case "入职日期", "hire_date":
			idx["hire_date"] = i
		case "年度工时", "convention_hours":
			idx["convention_hours"] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

func (s *employeeService) Import(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error) {
	resp := &dto.ImportEmployeeResponse{Total: len(rows)}

	deptMap, roleMap, err := s.buildReferenceMaps(ctx)
	if err != nil {
		s.logger.Error("加载部门与岗位失败", zap.Error(err))
		return nil, err
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportEmployeeError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row      ImportEmployeeRow
		employee *model.Employee
		password string
	}
	var validRows []validatedRow
	seenEmails := make(map[string]bool, len(rows))

	for _, row := range rows {
		if row.Name == "" || row.Email == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		email := normalizeEmail(row.Email)
		if seenEmails[email] {
			fail(row.Row, fmt.Sprintf("文件内邮箱重复: %s", email))
			continue
		}
		if _, err := s.repo.Employee.GetByEmail(ctx, email); err == nil {
			fail(row.Row, fmt.Sprintf("邮箱已存在: %s", email))
			continue
		}

		emp := &model.Employee{
			Name:            row.Name,
			Email:           email,
			Role:            model.RoleEmployee,
			ConventionHours: s.cfg.Attendance.DefaultConventionHours,
			IsActive:        true,
		}
		if row.DepartmentName != "" {
			dept, ok := deptMap[row.DepartmentName]
			if !ok {
				fail(row.Row, fmt.Sprintf("部门不存在: %s", row.DepartmentName))
				continue
			}
			emp.DepartmentID = &dept.DepartmentID
		}
		if row.JobRoleName != "" {
			role, ok := roleMap[row.JobRoleName]
			if !ok {
				fail(row.Row, fmt.Sprintf("岗位不存在: %s", row.JobRoleName))
				continue
			}
			emp.JobRoleID = &role.JobRoleID
		}
		if row.HireDate != "" {
			d, err := attendance.ParseDate(row.HireDate)
			if err != nil {
				fail(row.Row, fmt.Sprintf("入职日期格式错误: %s", row.HireDate))
				continue
			}
			emp.HireDate = &d
		}
		if row.ConventionHours != "" {
			hours, err := strconv.Atoi(row.ConventionHours)
			if err != nil || hours <= 0 {
				fail(row.Row, fmt.Sprintf("年度工时无效: %s", row.ConventionHours))
				continue
			}
			emp.ConventionHours = hours
		}

		password, err := generateTempPassword(10)
		if err != nil {
			fail(row.Row, "生成临时密码失败")
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}
		emp.PasswordHash = string(hash)
		emp.CreatedBy = &callerID
		emp.UpdatedBy = &callerID

		seenEmails[email] = true
		validRows = append(validRows, validatedRow{row: row, employee: emp, password: password})
	}

	// 第二阶段：在事务中批量创建所有通过校验的员工
	if len(validRows) == 0 {
		return resp, nil
	}
	err = s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		for _, vr := range validRows {
			if err := tx.Employee.Create(ctx, vr.employee); err != nil {
				s.logger.Error("导入员工写入失败，事务回滚", zap.Int("row", vr.row.Row), zap.Error(err))
				return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(validRows))
	for _, vr := range validRows {
		resp.Success++
		resp.Created = append(resp.Created, dto.ImportedEmployee{
			Row:          vr.row.Row,
			EmployeeID:   vr.employee.EmployeeID,
			Email:        vr.employee.Email,
			TempPassword: vr.password,
		})
		ids = append(ids, vr.employee.EmployeeID)
	}

	s.logger.Info("批量导入员工",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
		zap.String("caller", callerID))

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityEmployee,
		Action:      ActionCreated,
		EmployeeIDs: ids,
		ActorID:     callerID,
	})
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *employeeService) getEmployee(ctx context.Context, id string) (*model.Employee, error) {
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

// ensureEmailFree 邮箱未被其他员工使用
func (s *employeeService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.Employee.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return err
	}
	if existing.EmployeeID != selfID {
		return ErrEmailExists
	}
	return nil
}

// ensureReferences 校验部门与岗位存在，部门须为启用状态
func (s *employeeService) ensureReferences(ctx context.Context, departmentID, jobRoleID *string) error {
	if departmentID != nil {
		dept, err := s.repo.Department.GetByID(ctx, *departmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepartmentNotFound
			}
			return err
		}
		if !dept.IsActive {
			return ErrDepartmentInactive
		}
	}
	if jobRoleID != nil {
		if _, err := s.repo.JobRole.GetByID(ctx, *jobRoleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobRoleNotFound
			}
			return err
		}
	}
	return nil
}

// buildReferenceMaps 构建部门、岗位名称 -> 实体映射
func (s *employeeService) buildReferenceMaps(ctx context.Context) (map[string]*model.Department, map[string]*model.JobRole, error) {
	departments, err := s.repo.Department.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	roles, err := s.repo.JobRole.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	deptMap := make(map[string]*model.Department, len(departments))
	for i := range departments {
		deptMap[departments[i].Name] = &departments[i]
	}
	roleMap := make(map[string]*model.JobRole, len(roles))
	for i := range roles {
		roleMap[roles[i].Name] = &roles[i]
	}
	return deptMap, roleMap, nil
}

func (s *employeeService) notify(ctx context.Context, id, action, callerID string) {
	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityEmployee,
		Action:      action,
		EmployeeIDs: []string{id},
		ActorID:     callerID,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toEmployeeResponse 将 model.Employee 转换为脱敏的响应
func toEmployeeResponse(emp *model.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:              emp.EmployeeID,
		Name:            emp.Name,
		Email:           emp.Email,
		Role:            emp.Role,
		ConventionHours: emp.ConventionHours,
		IsActive:        emp.IsActive,
		Version:         emp.Version,
		CreatedAt:       emp.CreatedAt.Format(timestampLayout),
	}
	if emp.Department != nil {
		resp.Department = &dto.RefResponse{ID: emp.Department.DepartmentID, Name: emp.Department.Name}
	}
	if emp.JobRole != nil {
		resp.JobRole = &dto.RefResponse{ID: emp.JobRole.JobRoleID, Name: emp.JobRole.Name}
	}
	if emp.HireDate != nil {
		resp.HireDate = attendance.FormatDate(*emp.HireDate)
	}
	return resp
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}
	result := make([]byte, length)

	pick := func(charset string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return 0, err
		}
		return charset[n.Int64()], nil
	}

	var err error
	// 保证至少1个字母+1个数字
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}
	return string(result), nil
}
