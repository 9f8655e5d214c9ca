package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/model"
	"timetrack/backend/internal/repository"
	pkgerrors "timetrack/backend/pkg/errors"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNotFound   = errors.New("部门不存在")
	ErrDepartmentNameExists = errors.New("部门名称已存在")
	ErrDepartmentInactive   = errors.New("部门已停用")
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	// Delete 删除部门，部门下员工在同一事务内置为未分配
	Delete(ctx context.Context, id string, callerID string) (*dto.DeleteReferenceResponse, error)
}

type departmentService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, notifier ChangeNotifier, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	// 检查名称唯一性
	existing, err := s.repo.Department.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentNameExists
	}

	dept := &model.Department{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrDepartmentNameExists
		}
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.getDepartment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error) {
	var depts []model.Department
	var err error

	if req.IncludeInactive {
		depts, err = s.repo.Department.ListAll(ctx)
	} else {
		depts, err = s.repo.Department.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	// 批量查询成员数，避免 N+1 查询
	deptIDs := make([]string, 0, len(depts))
	for _, d := range depts {
		deptIDs = append(deptIDs, d.DepartmentID)
	}
	countMap, err := s.repo.Department.BatchCountMembers(ctx, deptIDs)
	if err != nil {
		s.logger.Warn("批量查询成员数失败，回退为0", zap.Error(err))
		countMap = make(map[string]int64)
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, departmentDetail(&depts[i], countMap[depts[i].DepartmentID]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.getDepartment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	// 如果更新名称，检查唯一性
	if req.Name != nil && *req.Name != dept.Name {
		existing, err := s.repo.Department.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDepartmentNameExists
		}
		dept.Name = *req.Name
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrDepartmentNameExists
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新部门失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.notify(ctx, ActionUpdated, callerID)
	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string, callerID string) (*dto.DeleteReferenceResponse, error) {
	var cleared int64
	err := s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		if _, err := s.getDepartment(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.Employee.ClearDepartment(ctx, id)
		if err != nil {
			return err
		}
		cleared = n
		return tx.Department.Delete(ctx, id, callerID)
	})
	if err != nil {
		if errors.Is(err, ErrDepartmentNotFound) {
			return nil, err
		}
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("部门已删除",
		zap.String("id", id),
		zap.Int64("unassigned_employees", cleared),
		zap.String("caller", callerID))

	s.notify(ctx, ActionDeleted, callerID)
	return &dto.DeleteReferenceResponse{UnassignedEmployees: cleared}, nil
}

// ── 内部辅助方法 ──

func (s *departmentService) getDepartment(ctx context.Context, repo *repository.Repository, id string) (*model.Department, error) {
	dept, err := repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

// notify 部门变更影响汇总中的部门名称
func (s *departmentService) notify(ctx context.Context, action, callerID string) {
	notifyChange(detach(ctx), s.notifier, Change{
		Entity:  EntityDepartment,
		Action:  action,
		ActorID: callerID,
	})
}

func (s *departmentService) toDepartmentDetailResponse(ctx context.Context, dept *model.Department) *dto.DepartmentDetailResponse {
	memberCount, _ := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	resp := departmentDetail(dept, memberCount)
	return &resp
}

func departmentDetail(dept *model.Department, memberCount int64) dto.DepartmentDetailResponse {
	return dto.DepartmentDetailResponse{
		ID:          dept.DepartmentID,
		Name:        dept.Name,
		Description: dept.Description,
		IsActive:    dept.IsActive,
		MemberCount: memberCount,
		CreatedAt:   dept.CreatedAt.Format(timestampLayout),
		UpdatedAt:   dept.UpdatedAt.Format(timestampLayout),
	}
}
