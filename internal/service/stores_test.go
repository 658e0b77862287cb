package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/query"
	"github.com/noah-isme/donor-registry-api/internal/repository"
)

var errStoreDown = errors.New("store down")

type memDonorStore struct {
	mu        sync.Mutex
	donors    []models.Donor
	writeErr  error
	listErr   error
	upserts   int
	replaces  int
	loginUsed map[string]bool
	// upsertGate, when set, holds UpsertMany until it is closed.
	upsertGate chan struct{}
}

func newMemDonorStore(donors ...models.Donor) *memDonorStore {
	for i := range donors {
		if donors[i].Version == 0 {
			donors[i].Version = 1
		}
	}
	return &memDonorStore{donors: donors}
}

func (m *memDonorStore) List(ctx context.Context) ([]models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Donor(nil), m.donors...), nil
}

func (m *memDonorStore) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.donors {
		if d.ID == id {
			found := d
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDonorStore) FindByLoginID(ctx context.Context, loginID string) (*models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.donors {
		if d.LoginID == loginID {
			found := d
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDonorStore) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	if m.loginUsed[loginID] {
		return true, nil
	}
	_, err := m.FindByLoginID(ctx, loginID)
	return err == nil, nil
}

func (m *memDonorStore) Create(ctx context.Context, donor *models.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	donor.Version = 1
	m.donors = append([]models.Donor{*donor}, m.donors...)
	return nil
}

func (m *memDonorStore) Update(ctx context.Context, donor *models.Donor, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i, d := range m.donors {
		if d.ID != donor.ID {
			continue
		}
		if expectedVersion > 0 && d.Version != expectedVersion {
			return repository.ErrStaleVersion
		}
		donor.Version = d.Version + 1
		m.donors[i] = *donor
		return nil
	}
	return sql.ErrNoRows
}

func (m *memDonorStore) Delete(ctx context.Context, ids ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.donors[:0]
	n := 0
	for _, d := range m.donors {
		if drop[d.ID] {
			n++
			continue
		}
		kept = append(kept, d)
	}
	m.donors = kept
	return n, nil
}

func (m *memDonorStore) ReplaceAll(ctx context.Context, donors []models.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.replaces++
	m.donors = append([]models.Donor(nil), donors...)
	return nil
}

func (m *memDonorStore) UpsertMany(ctx context.Context, donors []models.Donor) error {
	if m.upsertGate != nil {
		<-m.upsertGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.upserts++
	for _, d := range donors {
		replaced := false
		for i := range m.donors {
			if m.donors[i].ID == d.ID {
				m.donors[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			m.donors = append(m.donors, d)
		}
	}
	return nil
}

func (m *memDonorStore) get(t *testing.T, id string) models.Donor {
	t.Helper()
	d, err := m.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *d
}

type memAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLogEntry
	err     error
}

func (m *memAuditStore) Append(ctx context.Context, entry *models.AuditLogEntry, retain int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append([]models.AuditLogEntry{*entry}, m.entries...)
	if retain > 0 && len(m.entries) > retain {
		m.entries = m.entries[:retain]
	}
	return nil
}

func (m *memAuditStore) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && limit < len(m.entries) {
		return append([]models.AuditLogEntry(nil), m.entries[:limit]...), nil
	}
	return append([]models.AuditLogEntry(nil), m.entries...), nil
}

func (m *memAuditStore) last(t *testing.T) models.AuditLogEntry {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.entries)
	return m.entries[0]
}

type memAdminStore struct {
	admins    []models.AdminUser
	lastLogin map[string]time.Time
}

func (m *memAdminStore) List(ctx context.Context) ([]models.AdminUser, error) {
	return append([]models.AdminUser(nil), m.admins...), nil
}

func (m *memAdminStore) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	for _, a := range m.admins {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAdminStore) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	for _, a := range m.admins {
		if a.Username == username {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAdminStore) Count(ctx context.Context) (int, error) {
	return len(m.admins), nil
}

func (m *memAdminStore) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = "adm-" + admin.Username
	}
	m.admins = append(m.admins, *admin)
	return nil
}

func (m *memAdminStore) Delete(ctx context.Context, id string) error {
	for i, a := range m.admins {
		if a.ID == id {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memAdminStore) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if m.lastLogin == nil {
		m.lastLogin = make(map[string]time.Time)
	}
	m.lastLogin[id] = ts
	return nil
}

func (m *memAdminStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins[i].PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

type memAlertStore struct {
	alerts  []models.EmergencyAlert
	written bool
}

func (m *memAlertStore) List(ctx context.Context) ([]models.EmergencyAlert, error) {
	return append([]models.EmergencyAlert(nil), m.alerts...), nil
}

func (m *memAlertStore) Create(ctx context.Context, alert *models.EmergencyAlert) error {
	if alert.ID == "" {
		alert.ID = "alert-" + alert.HospitalName
	}
	m.written = true
	m.alerts = append([]models.EmergencyAlert{*alert}, m.alerts...)
	return nil
}

func (m *memAlertStore) Delete(ctx context.Context, id string) error {
	for i, a := range m.alerts {
		if a.ID == id {
			m.written = true
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memAlertStore) SeedIfEmpty(ctx context.Context, alert models.EmergencyAlert) (bool, error) {
	if m.written {
		return false, nil
	}
	m.written = true
	m.alerts = []models.EmergencyAlert{alert}
	return true, nil
}

// harness wires the registry services over in-memory stores.
type harness struct {
	donors   *memDonorStore
	audits   *memAuditStore
	registry *RegistryService
	audit    *AuditService
}

func newHarness(donors ...models.Donor) *harness {
	store := newMemDonorStore(donors...)
	audits := &memAuditStore{}
	return &harness{
		donors:   store,
		audits:   audits,
		registry: NewRegistryService(store, query.NewEngine(10, nil), nil, nil, nil, time.Minute),
		audit:    NewAuditService(audits, 500, nil, nil),
	}
}

func sampleDonor(id, loginID, name string, bg models.BloodGroup) models.Donor {
	return models.Donor{
		ID:                 id,
		LoginID:            loginID,
		Name:               name,
		BloodGroup:         bg,
		Age:                30,
		Gender:             "Female",
		Address:            "12 Lake Rd",
		Phone:              "+8801712345678",
		Availability:       models.AvailabilityAvailable,
		VerificationStatus: models.VerificationUnverified,
		UserType:           models.UserTypeDonor,
		CreatedAt:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
