package repository

import (
	"context"

	"gorm.io/gorm"

	"timetrack/backend/internal/model"
)

// IncidentFilter 异常列表筛选条件
type IncidentFilter struct {
	EmployeeID string
	Status     string
	From       string // YYYY-MM-DD，含
	To         string // YYYY-MM-DD，不含
}

// IncidentRepository 考勤异常数据访问接口
type IncidentRepository interface {
	Create(ctx context.Context, inc *model.Incident) error
	GetByID(ctx context.Context, id string) (*model.Incident, error)
	List(ctx context.Context, filter IncidentFilter, offset, limit int) ([]model.Incident, int64, error)
	UpdateReview(ctx context.Context, inc *model.Incident) error
	Delete(ctx context.Context, id string) error
}

type incidentRepo struct {
	db *gorm.DB
}

// NewIncidentRepo 创建 IncidentRepository 实例
func NewIncidentRepo(db *gorm.DB) IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, inc *model.Incident) error {
	return r.db.WithContext(ctx).Create(inc).Error
}

func (r *incidentRepo) GetByID(ctx context.Context, id string) (*model.Incident, error) {
	var inc model.Incident
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("incident_id = ?", id).
		First(&inc).Error
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepo) List(ctx context.Context, filter IncidentFilter, offset, limit int) ([]model.Incident, int64, error) {
	var items []model.Incident
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Incident{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		db = db.Where("incident_date >= ?", filter.From)
	}
	if filter.To != "" {
		db = db.Where("incident_date < ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Employee").
		Offset(offset).Limit(limit).
		Order("incident_date DESC, created_at DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateReview 只在记录仍为 pending 时写入审核结果，否则返回 gorm.ErrRecordNotFound
func (r *incidentRepo) UpdateReview(ctx context.Context, inc *model.Incident) error {
	result := r.db.WithContext(ctx).
		Model(&model.Incident{}).
		Where("incident_id = ? AND status = ?", inc.IncidentID, model.IncidentPending).
		Updates(map[string]interface{}{
			"status":      inc.Status,
			"reviewed_by": inc.ReviewedBy,
			"reviewed_at": inc.ReviewedAt,
			"review_note": inc.ReviewNote,
			"updated_by":  inc.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *incidentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("incident_id = ?", id).
		Delete(&model.Incident{}).Error
}
