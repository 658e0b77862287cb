package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// AdminService manages staff accounts. Callers enforce that only a Super Admin reaches it.
type AdminService struct {
	repo      AdminStore
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
	now       func() time.Time
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(repo AdminStore, audit *AuditService, validate *validator.Validate, logger *zap.Logger, hashCost int) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &AdminService{repo: repo, audit: audit, validator: validate, logger: logger, hashCost: hashCost, now: time.Now}
}

// List returns every staff account.
func (s *AdminService) List(ctx context.Context) ([]models.AdminUser, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	if admins == nil {
		admins = []models.AdminUser{}
	}
	return admins, nil
}

// Get returns a staff account by id.
func (s *AdminService) Get(ctx context.Context, id string) (*models.AdminUser, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	return admin, nil
}

// Create provisions a staff account. Usernames are unique.
func (s *AdminService) Create(ctx context.Context, req models.CreateAdminRequest, actor string) (*models.AdminUser, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	admin, err := s.newAdmin(req.Username, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		s.logger.Error("failed to create admin", zap.String("username", req.Username), zap.Error(err))
		return nil, appErrors.StoreWrite(err, "failed to create admin")
	}

	s.audit.Record(ctx, models.AuditActionAdminCreate, fmt.Sprintf("Created %s account %s", admin.Role, admin.Username), actor)
	return admin, nil
}

// Delete revokes a staff account. An admin cannot revoke itself.
func (s *AdminService) Delete(ctx context.Context, id, callerID, actor string) error {
	if id == callerID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot revoke your own account")
	}
	admin, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.StoreWrite(err, "failed to revoke admin")
	}

	s.audit.Record(ctx, models.AuditActionAdminRevoke, fmt.Sprintf("Revoked access for %s", admin.Username), actor)
	return nil
}

// Bootstrap seeds a Super Admin when no staff account exists.
func (s *AdminService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if username == "" || password == "" {
		return false, fmt.Errorf("bootstrap admin credentials are not configured")
	}
	admin, err := s.newAdmin(username, password, models.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("username", username))
	return true, nil
}

func (s *AdminService) newAdmin(username, password string, role models.AdminRole) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return &models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}, nil
}
