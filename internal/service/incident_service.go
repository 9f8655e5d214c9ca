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
)

// ── 考勤异常模块业务错误 ──

var (
	ErrIncidentNotFound   = errors.New("考勤异常不存在")
	ErrIncidentNotPending = errors.New("该异常已审核，不能重复处理")
)

// IncidentService 考勤异常业务接口
type IncidentService interface {
	Create(ctx context.Context, req *dto.CreateIncidentRequest, callerID string) (*dto.IncidentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.IncidentResponse, error)
	List(ctx context.Context, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error)
	Approve(ctx context.Context, id string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error)
	Reject(ctx context.Context, id string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error)
	// Delete 只能删除待审核的异常
	Delete(ctx context.Context, id string, callerID string) error
}

type incidentService struct {
	repo     *repository.Repository
	notifier ChangeNotifier
	clock    attendance.Clock
	logger   *zap.Logger
}

// NewIncidentService 创建 IncidentService 实例
func NewIncidentService(repo *repository.Repository, notifier ChangeNotifier, clock attendance.Clock, logger *zap.Logger) IncidentService {
	return &incidentService{repo: repo, notifier: notifier, clock: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *incidentService) Create(ctx context.Context, req *dto.CreateIncidentRequest, callerID string) (*dto.IncidentResponse, error) {
	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = callerID
	}

	day, err := attendance.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, err
	}

	inc := &model.Incident{
		EmployeeID:   employeeID,
		IncidentDate: day,
		IncidentType: req.IncidentType,
		Description:  req.Description,
		Status:       model.IncidentPending,
	}
	inc.CreatedBy = &callerID
	inc.UpdatedBy = &callerID

	if err := s.repo.Incident.Create(ctx, inc); err != nil {
		s.logger.Error("登记考勤异常失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	inc.Employee = emp

	s.notify(ctx, inc, ActionCreated, callerID)
	return toIncidentResponse(inc), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *incidentService) GetByID(ctx context.Context, id string) (*dto.IncidentResponse, error) {
	inc, err := s.getIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	return toIncidentResponse(inc), nil
}

// ────────────────────── List ──────────────────────

func (s *incidentService) List(ctx context.Context, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error) {
	filter := repository.IncidentFilter{
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
	}
	if req.Year > 0 {
		filter.From, filter.To = yearRange(req.Year)
	}

	items, total, err := s.repo.Incident.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询考勤异常列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.IncidentResponse, 0, len(items))
	for i := range items {
		result = append(result, *toIncidentResponse(&items[i]))
	}
	return result, total, nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *incidentService) Approve(ctx context.Context, id string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error) {
	return s.review(ctx, id, model.IncidentApproved, req, callerID)
}

func (s *incidentService) Reject(ctx context.Context, id string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error) {
	return s.review(ctx, id, model.IncidentRejected, req, callerID)
}

// review 只允许从 pending 迁移到终态；并发审核时以数据库条件更新为准
func (s *incidentService) review(ctx context.Context, id, status string, req *dto.ReviewIncidentRequest, callerID string) (*dto.IncidentResponse, error) {
	inc, err := s.getIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status != model.IncidentPending {
		return nil, ErrIncidentNotPending
	}

	now := s.clock.Now().UTC()
	inc.Status = status
	inc.ReviewedBy = &callerID
	inc.ReviewedAt = &now
	inc.ReviewNote = req.Note
	inc.UpdatedBy = &callerID

	if err := s.repo.Incident.UpdateReview(ctx, inc); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotPending
		}
		s.logger.Error("审核考勤异常失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考勤异常已审核",
		zap.String("id", id),
		zap.String("status", status),
		zap.String("reviewer", callerID))

	s.notify(ctx, inc, ActionUpdated, callerID)
	return toIncidentResponse(inc), nil
}

// ────────────────────── Delete ──────────────────────

func (s *incidentService) Delete(ctx context.Context, id string, callerID string) error {
	inc, err := s.getIncident(ctx, id)
	if err != nil {
		return err
	}
	if inc.Status != model.IncidentPending {
		return ErrIncidentNotPending
	}

	if err := s.repo.Incident.Delete(ctx, id); err != nil {
		s.logger.Error("删除考勤异常失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.notify(ctx, inc, ActionDeleted, callerID)
	return nil
}

// ── 内部辅助方法 ──

func (s *incidentService) getIncident(ctx context.Context, id string) (*model.Incident, error) {
	inc, err := s.repo.Incident.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		s.logger.Error("查询考勤异常失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return inc, nil
}

func (s *incidentService) notify(ctx context.Context, inc *model.Incident, action, callerID string) {
	notifyChange(detach(ctx), s.notifier, Change{
		Entity:      EntityIncident,
		Action:      action,
		EmployeeIDs: []string{inc.EmployeeID},
		Year:        inc.IncidentDate.Year(),
		ActorID:     callerID,
	})
}

func toIncidentResponse(inc *model.Incident) *dto.IncidentResponse {
	resp := &dto.IncidentResponse{
		ID:           inc.IncidentID,
		EmployeeID:   inc.EmployeeID,
		Date:         attendance.FormatDate(inc.IncidentDate),
		IncidentType: inc.IncidentType,
		Description:  inc.Description,
		Status:       inc.Status,
		ReviewedBy:   inc.ReviewedBy,
		ReviewedAt:   formatTimestamp(inc.ReviewedAt),
		ReviewNote:   inc.ReviewNote,
		CreatedAt:    inc.CreatedAt.Format(timestampLayout),
	}
	if inc.Employee != nil {
		resp.Employee = &dto.RefResponse{ID: inc.Employee.EmployeeID, Name: inc.Employee.Name}
	}
	return resp
}
