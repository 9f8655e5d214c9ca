package repository

import (
	"context"

	"gorm.io/gorm"

	"timetrack/backend/internal/model"
)

// JobRoleRepository 岗位数据访问接口
type JobRoleRepository interface {
	Create(ctx context.Context, role *model.JobRole) error
	GetByID(ctx context.Context, id string) (*model.JobRole, error)
	GetByName(ctx context.Context, name string) (*model.JobRole, error)
	List(ctx context.Context) ([]model.JobRole, error)
	Update(ctx context.Context, role *model.JobRole) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type jobRoleRepo struct {
	db *gorm.DB
}

// NewJobRoleRepo 创建 JobRoleRepository 实例
func NewJobRoleRepo(db *gorm.DB) JobRoleRepository {
	return &jobRoleRepo{db: db}
}

func (r *jobRoleRepo) Create(ctx context.Context, role *model.JobRole) error {
	return translateErr(r.db.WithContext(ctx).Create(role).Error)
}

func (r *jobRoleRepo) GetByID(ctx context.Context, id string) (*model.JobRole, error) {
	var role model.JobRole
	err := r.db.WithContext(ctx).
		Where("job_role_id = ?", id).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *jobRoleRepo) GetByName(ctx context.Context, name string) (*model.JobRole, error) {
	var role model.JobRole
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *jobRoleRepo) List(ctx context.Context) ([]model.JobRole, error) {
	var roles []model.JobRole
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *jobRoleRepo) Update(ctx context.Context, role *model.JobRole) error {
	return translateErr(r.db.WithContext(ctx).
		Model(role).
		Where("job_role_id = ?", role.JobRoleID).
		Updates(map[string]interface{}{
			"name":        role.Name,
			"description": role.Description,
			"updated_by":  role.UpdatedBy,
		}).Error)
}

func (r *jobRoleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.JobRole{}).
		Where("job_role_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
