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

// AdminRepository provides database access for staff accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns every staff account ordered by creation.
func (r *AdminRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, role, created_at, last_login FROM admin_users ORDER BY created_at`
	var admins []models.AdminUser
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, role, created_at, last_login FROM admin_users WHERE id = $1 LIMIT 1`
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// FindByUsername returns an admin by username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, role, created_at, last_login FROM admin_users WHERE username = $1 LIMIT 1`
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &admin, nil
}

// Count returns the number of staff accounts.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// Create inserts a staff account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO admin_users (id, username, password_hash, role, created_at, last_login) VALUES (:id, :username, :password_hash, :role, :created_at, :last_login)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Delete removes a staff account.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for an admin.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET password_hash = $2 WHERE id = $1`, id, passwordHash); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}
