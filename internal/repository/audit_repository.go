package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// AuditRepository persists the audit trail in PostgreSQL.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append stores entry and drops everything older than the newest retain entries.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry, retain int) (err error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO audit_logs (id, action, details, admin_username, created_at) VALUES (:id, :action, :details, :admin_username, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	if retain > 0 {
		const trim = `DELETE FROM audit_logs WHERE seq NOT IN (SELECT seq FROM audit_logs ORDER BY seq DESC LIMIT $1)`
		if _, err = tx.ExecContext(ctx, trim, retain); err != nil {
			return fmt.Errorf("trim audit logs: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit audit append: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	const query = `SELECT id, action, details, admin_username, created_at FROM audit_logs ORDER BY created_at DESC, seq DESC LIMIT $1`
	var entries []models.AuditLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}
