package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// ErrStaleVersion reports that a versioned write lost to a concurrent writer.
var ErrStaleVersion = errors.New("stale record version")

const donorColumns = `id, login_id, password_hash, name, blood_group, age, gender, address, phone, occupation, designation, department, last_donation_date, availability, verification_status, is_blocked, reports, internal_notes, user_type, version, created_at, updated_at`

const insertDonorQuery = `INSERT INTO donors (` + donorColumns + `) VALUES (:id, :login_id, :password_hash, :name, :blood_group, :age, :gender, :address, :phone, :occupation, :designation, :department, :last_donation_date, :availability, :verification_status, :is_blocked, :reports, :internal_notes, :user_type, :version, :created_at, :updated_at)`

// DonorRepository provides PostgreSQL access to the donor registry.
type DonorRepository struct {
	db *sqlx.DB
}

// NewDonorRepository creates a new instance of DonorRepository.
func NewDonorRepository(db *sqlx.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// List returns the whole registry, newest first.
func (r *DonorRepository) List(ctx context.Context) ([]models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors ORDER BY created_at DESC, id`
	var donors []models.Donor
	if err := r.db.SelectContext(ctx, &donors, query); err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	return donors, nil
}

// FindByID returns a donor by identifier.
func (r *DonorRepository) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	return r.findOne(ctx, `SELECT `+donorColumns+` FROM donors WHERE id = $1 LIMIT 1`, id)
}

// FindByLoginID returns a donor by login id.
func (r *DonorRepository) FindByLoginID(ctx context.Context, loginID string) (*models.Donor, error) {
	return r.findOne(ctx, `SELECT `+donorColumns+` FROM donors WHERE login_id = $1 LIMIT 1`, loginID)
}

func (r *DonorRepository) findOne(ctx context.Context, query string, arg string) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.GetContext(ctx, &donor, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find donor: %w", err)
	}
	return &donor, nil
}

// ExistsByLoginID reports whether a login id is taken.
func (r *DonorRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM donors WHERE login_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, loginID); err != nil {
		return false, fmt.Errorf("check login id: %w", err)
	}
	return exists, nil
}

// Create inserts a donor at version 1.
func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	stampNew(donor, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertDonorQuery, donor); err != nil {
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

// Update rewrites a donor. A positive expectedVersion makes the write conditional and
// ErrStaleVersion is returned when the stored version moved on.
func (r *DonorRepository) Update(ctx context.Context, donor *models.Donor, expectedVersion int64) error {
	donor.UpdatedAt = time.Now().UTC()
	query := `UPDATE donors SET login_id = $2, password_hash = $3, name = $4, blood_group = $5, age = $6, gender = $7, address = $8, phone = $9, occupation = $10, designation = $11, department = $12, last_donation_date = $13, availability = $14, verification_status = $15, is_blocked = $16, reports = $17, internal_notes = $18, user_type = $19, created_at = $20, updated_at = $21, version = version + 1 WHERE id = $1`
	args := []interface{}{
		donor.ID, donor.LoginID, donor.PasswordHash, donor.Name, donor.BloodGroup, donor.Age, donor.Gender,
		donor.Address, donor.Phone, donor.Occupation, donor.Designation, donor.Department, donor.LastDonationDate,
		donor.Availability, donor.VerificationStatus, donor.IsBlocked, donor.Reports, donor.InternalNotes,
		donor.UserType, donor.CreatedAt, donor.UpdatedAt,
	}
	if expectedVersion > 0 {
		query += ` AND version = $22`
		args = append(args, expectedVersion)
	}
	query += ` RETURNING version`

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&donor.Version); err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("update donor: %w", err)
		}
		if expectedVersion == 0 {
			return err
		}
		exists, existsErr := r.exists(ctx, donor.ID)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return ErrStaleVersion
		}
		return sql.ErrNoRows
	}
	return nil
}

func (r *DonorRepository) exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM donors WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check donor: %w", err)
	}
	return exists, nil
}

// Delete removes donors by id and reports how many were removed.
func (r *DonorRepository) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM donors WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete donors: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete donors rows: %w", err)
	}
	return int(n), nil
}

// ReplaceAll swaps the whole registry for donors within one transaction.
func (r *DonorRepository) ReplaceAll(ctx context.Context, donors []models.Donor) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace donors: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM donors`); err != nil {
		return fmt.Errorf("clear donors: %w", err)
	}
	now := time.Now().UTC()
	for i := range donors {
		stampNew(&donors[i], now)
		if _, err = tx.NamedExecContext(ctx, insertDonorQuery, &donors[i]); err != nil {
			return fmt.Errorf("insert donor: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace donors: %w", err)
	}
	return nil
}

// UpsertMany inserts or overwrites donors by id within one transaction.
func (r *DonorRepository) UpsertMany(ctx context.Context, donors []models.Donor) (err error) {
	if len(donors) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert donors: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = insertDonorQuery + `
ON CONFLICT (id)
DO UPDATE SET login_id = EXCLUDED.login_id, password_hash = EXCLUDED.password_hash, name = EXCLUDED.name,
              blood_group = EXCLUDED.blood_group, age = EXCLUDED.age, gender = EXCLUDED.gender,
              address = EXCLUDED.address, phone = EXCLUDED.phone, occupation = EXCLUDED.occupation,
              designation = EXCLUDED.designation, department = EXCLUDED.department,
              last_donation_date = EXCLUDED.last_donation_date, availability = EXCLUDED.availability,
              verification_status = EXCLUDED.verification_status, is_blocked = EXCLUDED.is_blocked,
              reports = EXCLUDED.reports, internal_notes = EXCLUDED.internal_notes, user_type = EXCLUDED.user_type,
              version = EXCLUDED.version, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range donors {
		stampNew(&donors[i], now)
		if _, err = tx.NamedExecContext(ctx, query, &donors[i]); err != nil {
			return fmt.Errorf("upsert donor: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert donors: %w", err)
	}
	return nil
}

// stampNew fills bookkeeping fields a record must carry before it is written.
func stampNew(d *models.Donor, now time.Time) {
	if d.Version <= 0 {
		d.Version = 1
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
}
