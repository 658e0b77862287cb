package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

const defaultAuditRetention = 500

// AuditService appends entries to the bounded audit trail. Only successful operations are
// recorded; a failed append is logged and never fails the operation that triggered it.
type AuditService struct {
	repo      AuditStore
	retention int
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo AuditStore, retention int, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = defaultAuditRetention
	}
	return &AuditService{repo: repo, retention: retention, metrics: metrics, logger: logger, now: time.Now}
}

// Record appends one entry.
func (s *AuditService) Record(ctx context.Context, action, details, actor string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.AuditLogEntry{
		Action:        action,
		Details:       details,
		AdminUsername: actor,
		Timestamp:     s.now().UTC(),
	}
	if err := s.repo.Append(ctx, entry, s.retention); err != nil {
		s.logger.Warn("failed to append audit log", zap.String("action", action), zap.Error(err))
		return
	}
	s.metrics.IncAuditEntries()
}

// List returns up to limit entries, newest first. A non-positive limit returns the whole
// retained trail.
func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > s.retention {
		limit = s.retention
	}
	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	return entries, nil
}
