package service

import (
	"context"
	"time"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// DonorStore persists the donor registry. Implemented by the postgres, redis and remote drivers.
type DonorStore interface {
	List(ctx context.Context) ([]models.Donor, error)
	FindByID(ctx context.Context, id string) (*models.Donor, error)
	FindByLoginID(ctx context.Context, loginID string) (*models.Donor, error)
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	Create(ctx context.Context, donor *models.Donor) error
	Update(ctx context.Context, donor *models.Donor, expectedVersion int64) error
	Delete(ctx context.Context, ids ...string) (int, error)
	ReplaceAll(ctx context.Context, donors []models.Donor) error
	UpsertMany(ctx context.Context, donors []models.Donor) error
}

// AdminStore persists staff accounts.
type AdminStore interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	FindByID(ctx context.Context, id string) (*models.AdminUser, error)
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, admin *models.AdminUser) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AlertStore persists emergency alerts.
type AlertStore interface {
	List(ctx context.Context) ([]models.EmergencyAlert, error)
	Create(ctx context.Context, alert *models.EmergencyAlert) error
	Delete(ctx context.Context, id string) error
	SeedIfEmpty(ctx context.Context, alert models.EmergencyAlert) (bool, error)
}

// AuditStore persists the bounded audit trail.
type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditLogEntry, retain int) error
	List(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}
