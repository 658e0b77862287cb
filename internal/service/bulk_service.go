package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/merge"
	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// BulkService applies staff actions to a selection of donors or to the whole registry.
type BulkService struct {
	repo      DonorStore
	registry  *RegistryService
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	latency   time.Duration
	now       func() time.Time
}

// NewBulkService constructs a BulkService.
func NewBulkService(repo DonorStore, registry *RegistryService, audit *AuditService, validate *validator.Validate, logger *zap.Logger, latency time.Duration) *BulkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkService{
		repo:      repo,
		registry:  registry,
		audit:     audit,
		validator: registerRegistryValidations(validate),
		logger:    logger,
		latency:   latency,
		now:       time.Now,
	}
}

// Apply runs one action over the selected ids. Unknown ids are ignored; a selection that
// matches nothing is reported as not found.
func (s *BulkService) Apply(ctx context.Context, req models.BulkActionRequest, actor string) (*models.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk action")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}

	donors, err := s.registry.Donors(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(req.IDs))
	for _, id := range req.IDs {
		wanted[id] = true
	}
	selected := make([]models.Donor, 0, len(req.IDs))
	for _, d := range donors {
		if wanted[d.ID] {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no donors matched the selection")
	}

	result := &models.BulkActionResult{Action: req.Action, Affected: len(selected)}
	switch req.Action {
	case models.BulkVerify:
		err = s.rewrite(ctx, selected, func(d *models.Donor) { d.VerificationStatus = models.VerificationVerified })
	case models.BulkBlock:
		err = s.rewrite(ctx, selected, func(d *models.Donor) { d.IsBlocked = true })
	case models.BulkUnblock:
		err = s.rewrite(ctx, selected, func(d *models.Donor) { d.IsBlocked = false })
	case models.BulkDelete:
		ids := make([]string, len(selected))
		for i, d := range selected {
			ids[i] = d.ID
		}
		var n int
		n, err = s.repo.Delete(ctx, ids...)
		result.Affected = n
		if err == nil {
			s.registry.Invalidate(ctx)
		}
	case models.BulkExport:
		result.Donors = selected
	}
	if err != nil {
		s.logger.Error("bulk action failed", zap.String("action", string(req.Action)), zap.Int("count", len(selected)), zap.Error(err))
		return nil, appErrors.StoreWrite(err, fmt.Sprintf("failed to apply %s", req.Action))
	}

	s.audit.Record(ctx, models.AuditActionBulkPrefix+string(req.Action),
		fmt.Sprintf("Executed %s protocol on %d nodes.", req.Action, result.Affected), actor)
	return result, nil
}

// Global runs a registry-wide command. Only a Super Admin may do so.
func (s *BulkService) Global(ctx context.Context, req models.GlobalCommandRequest, role models.AdminRole, actor string) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid global command")
	}
	if role != models.RoleSuperAdmin {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "global commands require Super Admin")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return 0, err
	}

	donors, err := s.registry.Donors(ctx)
	if err != nil {
		return 0, err
	}
	var mutate func(*models.Donor)
	switch req.Command {
	case models.GlobalVerifyAll:
		mutate = func(d *models.Donor) { d.VerificationStatus = models.VerificationVerified }
	case models.GlobalResetAvailability:
		mutate = func(d *models.Donor) { d.Availability = models.AvailabilityAvailable }
	}
	if err := s.rewrite(ctx, donors, mutate); err != nil {
		s.logger.Error("global command failed", zap.String("command", string(req.Command)), zap.Error(err))
		return 0, appErrors.StoreWrite(err, fmt.Sprintf("failed to run %s", req.Command))
	}

	s.audit.Record(ctx, models.AuditActionGlobalPrefix+string(req.Command),
		fmt.Sprintf("Executed global %s protocol.", req.Command), actor)
	return len(donors), nil
}

// rewrite applies mutate to each donor and writes the batch in one call.
func (s *BulkService) rewrite(ctx context.Context, donors []models.Donor, mutate func(*models.Donor)) error {
	if len(donors) == 0 {
		return nil
	}
	now := s.now()
	batch := make([]models.Donor, len(donors))
	for i, d := range donors {
		mutate(&d)
		batch[i] = merge.Touch(d, now)
	}
	start := time.Now()
	err := s.repo.UpsertMany(ctx, batch)
	s.registry.metrics.ObserveStoreOp("bulk_upsert", time.Since(start))
	if err != nil {
		return err
	}
	s.registry.Invalidate(ctx)
	return nil
}
