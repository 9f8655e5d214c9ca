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

var (
	ErrJobRoleNotFound   = errors.New("岗位不存在")
	ErrJobRoleNameExists = errors.New("岗位名称已存在")
)

// JobRoleService 岗位业务接口
type JobRoleService interface {
	Create(ctx context.Context, req *dto.JobRoleRequest, callerID string) (*dto.JobRoleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.JobRoleResponse, error)
	List(ctx context.Context) ([]dto.JobRoleResponse, error)
	Update(ctx context.Context, id string, req *dto.JobRoleRequest, callerID string) (*dto.JobRoleResponse, error)
	// Delete 删除岗位，持有该岗位的员工在同一事务内置为未分配
	Delete(ctx context.Context, id string, callerID string) (*dto.DeleteReferenceResponse, error)
}

type jobRoleService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewJobRoleService 创建 JobRoleService 实例
func NewJobRoleService(repo *repository.Repository, notifier ChangeNotifier, logger *zap.Logger) JobRoleService {
	return &jobRoleService{repo: repo, notifier: notifier, logger: logger}
}

func (s *jobRoleService) Create(ctx context.Context, req *dto.JobRoleRequest, callerID string) (*dto.JobRoleResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name); err != nil {
		return nil, err
	}

	role := &model.JobRole{Name: req.Name, Description: req.Description}
	role.CreatedBy = &callerID
	role.UpdatedBy = &callerID

	if err := s.repo.JobRole.Create(ctx, role); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrJobRoleNameExists
		}
		s.logger.Error("创建岗位失败", zap.Error(err))
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func (s *jobRoleService) GetByID(ctx context.Context, id string) (*dto.JobRoleResponse, error) {
	role, err := s.getJobRole(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func (s *jobRoleService) List(ctx context.Context) ([]dto.JobRoleResponse, error) {
	roles, err := s.repo.JobRole.List(ctx)
	if err != nil {
		s.logger.Error("列出岗位失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.JobRoleResponse, 0, len(roles))
	for i := range roles {
		result = append(result, *toJobRoleResponse(&roles[i]))
	}
	return result, nil
}

func (s *jobRoleService) Update(ctx context.Context, id string, req *dto.JobRoleRequest, callerID string) (*dto.JobRoleResponse, error) {
	role, err := s.getJobRole(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if req.Name != role.Name {
		if err := s.ensureNameFree(ctx, req.Name); err != nil {
			return nil, err
		}
	}

	role.Name = req.Name
	role.Description = req.Description
	role.UpdatedBy = &callerID

	if err := s.repo.JobRole.Update(ctx, role); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrJobRoleNameExists
		}
		s.logger.Error("更新岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func (s *jobRoleService) Delete(ctx context.Context, id string, callerID string) (*dto.DeleteReferenceResponse, error) {
	var cleared int64
	err := s.repo.Tx.Run(ctx, func(tx *repository.Repository) error {
		if _, err := s.getJobRole(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.Employee.ClearJobRole(ctx, id)
		if err != nil {
			return err
		}
		cleared = n
		return tx.JobRole.Delete(ctx, id, callerID)
	})
	if err != nil {
		if errors.Is(err, ErrJobRoleNotFound) {
			return nil, err
		}
		s.logger.Error("删除岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("岗位已删除",
		zap.String("id", id),
		zap.Int64("unassigned_employees", cleared),
		zap.String("caller", callerID))

	notifyChange(detach(ctx), s.notifier, Change{
		Entity:  EntityJobRole,
		Action:  ActionDeleted,
		ActorID: callerID,
	})
	return &dto.DeleteReferenceResponse{UnassignedEmployees: cleared}, nil
}

// ── 内部辅助方法 ──

func (s *jobRoleService) getJobRole(ctx context.Context, repo *repository.Repository, id string) (*model.JobRole, error) {
	role, err := repo.JobRole.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobRoleNotFound
		}
		s.logger.Error("查询岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return role, nil
}

func (s *jobRoleService) ensureNameFree(ctx context.Context, name string) error {
	existing, err := s.repo.JobRole.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询岗位失败", zap.Error(err))
		return err
	}
	if existing != nil {
		return ErrJobRoleNameExists
	}
	return nil
}

func toJobRoleResponse(role *model.JobRole) *dto.JobRoleResponse {
	return &dto.JobRoleResponse{
		ID:          role.JobRoleID,
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt.Format(timestampLayout),
	}
}
