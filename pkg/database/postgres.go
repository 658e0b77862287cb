package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/donor-registry-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the registry tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS donors (
        id VARCHAR(50) PRIMARY KEY,
        login_id VARCHAR(50) NOT NULL,
        password_hash VARCHAR(100) NOT NULL DEFAULT '',
        name VARCHAR(255) NOT NULL,
        blood_group VARCHAR(5) NOT NULL DEFAULT '',
        age INT NOT NULL DEFAULT 0,
        gender VARCHAR(20) NOT NULL DEFAULT '',
        address TEXT NOT NULL DEFAULT '',
        phone VARCHAR(32) NOT NULL DEFAULT '',
        occupation VARCHAR(255) NOT NULL DEFAULT '',
        designation VARCHAR(255) NOT NULL DEFAULT '',
        department VARCHAR(255) NOT NULL DEFAULT '',
        last_donation_date VARCHAR(32) NOT NULL DEFAULT '',
        availability VARCHAR(20) NOT NULL DEFAULT 'Available',
        verification_status VARCHAR(20) NOT NULL DEFAULT 'Unverified',
        is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
        reports INT NOT NULL DEFAULT 0,
        internal_notes TEXT NOT NULL DEFAULT '',
        user_type VARCHAR(10) NOT NULL DEFAULT 'Donor',
        version BIGINT NOT NULL DEFAULT 1,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_donors_login_id ON donors (login_id)`,
	`CREATE INDEX IF NOT EXISTS idx_donors_created_at ON donors (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
        id VARCHAR(50) PRIMARY KEY,
        username VARCHAR(100) NOT NULL UNIQUE,
        password_hash VARCHAR(100) NOT NULL,
        role VARCHAR(20) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        last_login TIMESTAMPTZ
    )`,
	`CREATE TABLE IF NOT EXISTS emergency_alerts (
        id VARCHAR(50) PRIMARY KEY,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        severity VARCHAR(20) NOT NULL,
        blood_group VARCHAR(5) NOT NULL,
        hospital_name VARCHAR(255) NOT NULL,
        message TEXT NOT NULL,
        link TEXT NOT NULL DEFAULT '',
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
        id VARCHAR(50) PRIMARY KEY,
        action VARCHAR(64) NOT NULL,
        details TEXT NOT NULL,
        admin_username VARCHAR(255) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        seq BIGSERIAL NOT NULL
    )`,
	// seq orders entries by insertion; tables created before it existed get it here.
	`DO $$ BEGIN
        IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'audit_logs' AND column_name = 'seq') THEN
            ALTER TABLE audit_logs ADD COLUMN seq BIGSERIAL NOT NULL;
        END IF;
    END $$`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_seq ON audit_logs (seq DESC)`,
}
