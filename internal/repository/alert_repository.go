package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// AlertRepository provides database access for emergency alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new instance of AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// List returns alerts newest first.
func (r *AlertRepository) List(ctx context.Context) ([]models.EmergencyAlert, error) {
	const query = `SELECT id, is_active, severity, blood_group, hospital_name, message, link, updated_at FROM emergency_alerts ORDER BY updated_at DESC`
	var alerts []models.EmergencyAlert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Create stores a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.EmergencyAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.UpdatedAt.IsZero() {
		alert.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO emergency_alerts (id, is_active, severity, blood_group, hospital_name, message, link, updated_at) VALUES (:id, :is_active, :severity, :blood_group, :hospital_name, :message, :link, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// Delete removes an alert.
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM emergency_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SeedIfEmpty inserts alert only when the table holds no alerts.
func (r *AlertRepository) SeedIfEmpty(ctx context.Context, alert models.EmergencyAlert) (bool, error) {
	const query = `INSERT INTO emergency_alerts (id, is_active, severity, blood_group, hospital_name, message, link, updated_at)
SELECT $1, $2, $3, $4, $5, $6, $7, $8
WHERE NOT EXISTS (SELECT 1 FROM emergency_alerts)`
	res, err := r.db.ExecContext(ctx, query, alert.ID, alert.IsActive, alert.Severity, alert.BloodGroup, alert.HospitalName, alert.Message, alert.Link, alert.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("seed alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed alerts rows: %w", err)
	}
	return n > 0, nil
}
