package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

const testPrefix = "blood_donor_connect"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisDonorRepositoryCreatePrependsAndKeepsHash(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRedisDonorRepository(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Donor{ID: "a", LoginID: "BDC-ID1001", Name: "Alice", PasswordHash: "hash-a"}))
	require.NoError(t, repo.Create(ctx, &models.Donor{ID: "b", LoginID: "BDC-ID1002", Name: "Bob", PasswordHash: "hash-b"}))

	donors, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "b", donors[0].ID)
	assert.Equal(t, "hash-a", donors[1].PasswordHash)
	assert.Equal(t, int64(1), donors[1].Version)

	raw, err := mr.Get(testPrefix + KeyDonors)
	require.NoError(t, err)
	assert.Contains(t, raw, `"passwordHash":"hash-a"`)

	exists, err := repo.ExistsByLoginID(ctx, "BDC-ID1002")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByLoginID(ctx, "BDC-ID9999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisDonorRepositoryUpdateVersion(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisDonorRepository(client, testPrefix)
	ctx := context.Background()

	donor := &models.Donor{ID: "a", Name: "Alice"}
	require.NoError(t, repo.Create(ctx, donor))

	donor.Name = "Alice Smith"
	require.NoError(t, repo.Update(ctx, donor, 1))
	assert.Equal(t, int64(2), donor.Version)

	stale := &models.Donor{ID: "a", Name: "Stale"}
	assert.ErrorIs(t, repo.Update(ctx, stale, 1), ErrStaleVersion)
	assert.ErrorIs(t, repo.Update(ctx, &models.Donor{ID: "ghost"}, 0), sql.ErrNoRows)

	stored, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", stored.Name)
}

func TestRedisDonorRepositoryDeleteAndUpsert(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisDonorRepository(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []models.Donor{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}))

	n, err := repo.Delete(ctx, "b", "zzz")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Delete(ctx, "zzz")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.UpsertMany(ctx, []models.Donor{{ID: "c", Name: "C2"}, {ID: "d", Name: "D"}}))
	donors, err := repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(donors))
	for _, d := range donors {
		ids = append(ids, d.ID+":"+d.Name)
	}
	assert.Equal(t, []string{"a:A", "c:C2", "d:D"}, ids)
}

func TestRedisDonorRepositoryEmpty(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisDonorRepository(client, testPrefix)

	donors, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, donors)

	_, err = repo.FindByID(context.Background(), "a")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRedisAdminRepository(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisAdminRepository(client, testPrefix)
	ctx := context.Background()

	admin := &models.AdminUser{Username: "admin", PasswordHash: "hash", Role: models.RoleSuperAdmin}
	require.NoError(t, repo.Create(ctx, admin))
	assert.Error(t, repo.Create(ctx, &models.AdminUser{Username: "admin", Role: models.RoleViewer}))

	found, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, admin.ID, now))
	require.NoError(t, repo.UpdatePassword(ctx, admin.ID, "new-hash"))
	found, err = repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLogin)
	assert.True(t, now.Equal(*found.LastLogin))
	assert.Equal(t, "new-hash", found.PasswordHash)

	require.NoError(t, repo.Delete(ctx, admin.ID))
	assert.ErrorIs(t, repo.Delete(ctx, admin.ID), sql.ErrNoRows)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisAlertRepositorySeedOnlyOnce(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisAlertRepository(client, testPrefix)
	ctx := context.Background()

	seeded, err := repo.SeedIfEmpty(ctx, models.DefaultAlert(time.Now()))
	require.NoError(t, err)
	assert.True(t, seeded)

	require.NoError(t, repo.Delete(ctx, "sys-alert-001"))

	seeded, err = repo.SeedIfEmpty(ctx, models.DefaultAlert(time.Now()))
	require.NoError(t, err)
	assert.False(t, seeded)

	alerts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	require.NoError(t, repo.Create(ctx, &models.EmergencyAlert{Severity: models.SeverityUrgent, BloodGroup: "A+"}))
	require.NoError(t, repo.Create(ctx, &models.EmergencyAlert{Severity: models.SeverityCritical, BloodGroup: "B-"}))
	alerts, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "B-", alerts[0].BloodGroup)
}

func TestRedisAuditRepositoryRetention(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisAuditRepository(client, testPrefix)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		entry := &models.AuditLogEntry{Action: models.AuditActionNodeUpdate, Details: fmt.Sprintf("entry %d", i), AdminUsername: "admin"}
		require.NoError(t, repo.Append(ctx, entry, 5))
	}

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "entry 6", entries[0].Details)
	assert.Equal(t, "entry 2", entries[4].Details)

	entries, err = repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCacheRepositoryNamespacesViews(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, testPrefix, nil)
	ctx := context.Background()

	var got models.RegistryStats
	assert.Error(t, repo.Get(ctx, "stats", &got), "missing view is a miss")

	require.NoError(t, repo.Set(ctx, "stats", models.RegistryStats{Total: 3}, time.Minute))
	assert.True(t, mr.Exists(testPrefix+":view:stats"))
	require.NoError(t, repo.Get(ctx, "stats", &got))
	assert.Equal(t, 3, got.Total)

	require.NoError(t, mr.Set(testPrefix+":view:health", "{not json"))
	var report models.HealthReport
	assert.Error(t, repo.Get(ctx, "health", &report), "undecodable view reads as a miss")

	require.NoError(t, repo.Delete(ctx, "stats", "health"))
	assert.False(t, mr.Exists(testPrefix+":view:stats"))
	assert.False(t, mr.Exists(testPrefix+":view:health"))
	require.NoError(t, repo.Ping(ctx))
}
