package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// AlertService manages emergency blood requests.
type AlertService struct {
	repo      AlertStore
	registry  *RegistryService
	audit     *AuditService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	latency   time.Duration
	now       func() time.Time
}

// NewAlertService constructs an AlertService.
func NewAlertService(repo AlertStore, registry *RegistryService, audit *AuditService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, latency time.Duration) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		repo:      repo,
		registry:  registry,
		audit:     audit,
		metrics:   metrics,
		validator: registerRegistryValidations(validate),
		logger:    logger,
		latency:   latency,
		now:       time.Now,
	}
}

// List returns every alert, newest first.
func (s *AlertService) List(ctx context.Context) ([]models.EmergencyAlert, error) {
	alerts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	if alerts == nil {
		alerts = []models.EmergencyAlert{}
	}
	return alerts, nil
}

// Active returns the alerts currently shown to donors.
func (s *AlertService) Active(ctx context.Context) ([]models.EmergencyAlert, error) {
	alerts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.EmergencyAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

// Templates returns the broadcast template catalogue.
func (s *AlertService) Templates() []models.AlertTemplate {
	return models.AlertTemplates
}

// Broadcast dispatches a staff alert and reports how many available donors it reaches.
func (s *AlertService) Broadcast(ctx context.Context, req models.BroadcastRequest, actor string) (*models.BroadcastResult, error) {
	alert, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	reach, err := s.registry.Reach(ctx, alert.BloodGroup)
	if err != nil {
		s.logger.Warn("failed to compute broadcast reach", zap.String("alert_id", alert.ID), zap.Error(err))
	}
	s.metrics.ObserveBroadcastReach(reach)
	s.audit.Record(ctx, models.AuditActionBroadcastDispatch,
		fmt.Sprintf("Dispatched %s signal for %s @ %s. Reach: %d nodes.", alert.Severity, alert.BloodGroup, alert.HospitalName, reach), actor)
	return &models.BroadcastResult{Alert: *alert, Reach: reach}, nil
}

// SOS lets a donor raise an alert. Severity defaults to Critical and the blood group to All.
func (s *AlertService) SOS(ctx context.Context, req models.BroadcastRequest, donorName string) (*models.EmergencyAlert, error) {
	if req.Severity == "" && req.TemplateID == "" {
		req.Severity = models.SeverityCritical
	}
	if req.BloodGroup == "" {
		req.BloodGroup = models.BloodGroupAll
	}
	alert, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditActionSOSSent,
		fmt.Sprintf("Donor broadcast SOS for %s at %s", alert.BloodGroup, alert.HospitalName), donorName)
	return alert, nil
}

// Terminate removes an alert.
func (s *AlertService) Terminate(ctx context.Context, id, actor string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		s.logger.Error("failed to terminate alert", zap.String("alert_id", id), zap.Error(err))
		return appErrors.StoreWrite(err, "failed to terminate alert")
	}
	s.audit.Record(ctx, models.AuditActionBroadcastEnd, fmt.Sprintf("Terminated signal %s.", id), actor)
	return nil
}

// Seed stores the default alert when the collection has never been written.
func (s *AlertService) Seed(ctx context.Context) (bool, error) {
	alert := models.DefaultAlert(s.now().UTC())
	seeded, err := s.repo.SeedIfEmpty(ctx, alert)
	if err != nil {
		return false, fmt.Errorf("seed alerts: %w", err)
	}
	return seeded, nil
}

func (s *AlertService) dispatch(ctx context.Context, req models.BroadcastRequest) (*models.EmergencyAlert, error) {
	if req.TemplateID != "" {
		tpl, ok := models.FindAlertTemplate(req.TemplateID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown alert template %q", req.TemplateID))
		}
		if req.Severity == "" {
			req.Severity = tpl.Severity
		}
		if req.Message == "" {
			req.Message = tpl.Message
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert payload")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}

	alert := &models.EmergencyAlert{
		IsActive:     true,
		Severity:     req.Severity,
		BloodGroup:   req.BloodGroup,
		HospitalName: req.HospitalName,
		Message:      req.Message,
		Link:         req.Link,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		s.logger.Error("failed to store alert", zap.Error(err))
		return nil, appErrors.StoreWrite(err, "failed to dispatch alert")
	}
	return alert, nil
}
