package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// fakeShim mimics api.php: rows come back as strings, INSERT leaves isBlocked and
// reports at their column defaults, PATCH sets arbitrary keys.
type fakeShim struct {
	mu    sync.Mutex
	rows  []map[string]interface{}
	calls []string
}

func (f *fakeShim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api.php"), "/")

	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(f.rows)
		return
	case http.MethodPost:
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["createdAt"] = "2024-03-01 10:00:00"
		body["isBlocked"] = "0"
		body["reports"] = "0"
		body["age"] = stringify(body["age"])
		f.rows = append([]map[string]interface{}{body}, f.rows...)
	case http.MethodPatch:
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, row := range f.rows {
			if row["id"] == id {
				for k, v := range body {
					row[k] = stringify(v)
				}
			}
		}
	case http.MethodDelete:
		kept := f.rows[:0]
		for _, row := range f.rows {
			if row["id"] != id {
				kept = append(kept, row)
			}
		}
		f.rows = kept
	}
	_, _ = w.Write([]byte(`{"status":"success","message":"ok"}`))
}

func stringify(v interface{}) interface{} {
	if n, ok := v.(float64); ok {
		b, _ := json.Marshal(n)
		return string(b)
	}
	return v
}

func newRemote(t *testing.T, shim *fakeShim) *RemoteDonorRepository {
	srv := httptest.NewServer(shim)
	t.Cleanup(srv.Close)
	return NewRemoteDonorRepository(srv.URL+"/api.php", 2*time.Second, 0, nil)
}

func TestRemoteDonorRepositoryDecodesShimRows(t *testing.T) {
	shim := &fakeShim{rows: []map[string]interface{}{{
		"id": "d1", "loginId": "BDC-ID1001", "password": "hash", "name": "Alice", "bloodGroup": "O-",
		"age": "34", "gender": "Female", "address": "1 Elm", "phone": "555-0100", "lastDonationDate": nil,
		"availability": "Available", "verificationStatus": "Verified", "isBlocked": "1", "reports": "2",
		"createdAt": "2024-02-10 08:30:00",
	}}}
	repo := newRemote(t, shim)

	donors, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, donors, 1)
	d := donors[0]
	assert.Equal(t, 34, d.Age)
	assert.True(t, d.IsBlocked)
	assert.Equal(t, 2, d.Reports)
	assert.Equal(t, "hash", d.PasswordHash)
	assert.Empty(t, d.LastDonationDate)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC), d.CreatedAt)
	assert.Equal(t, int64(1), d.Version)
}

func TestRemoteDonorRepositoryWrites(t *testing.T) {
	shim := &fakeShim{}
	repo := newRemote(t, shim)
	ctx := context.Background()

	donor := &models.Donor{ID: "d1", LoginID: "BDC-ID1001", PasswordHash: "hash", Name: "Alice", BloodGroup: models.BloodGroupAPos, Age: 30}
	require.NoError(t, repo.Create(ctx, donor))

	donor.Name = "Alice Smith"
	require.NoError(t, repo.Update(ctx, donor, 7))
	stored, err := repo.FindByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", stored.Name)
	assert.Equal(t, 30, stored.Age)

	assert.ErrorIs(t, repo.Update(ctx, &models.Donor{ID: "ghost"}, 0), sql.ErrNoRows)

	n, err := repo.Delete(ctx, "d1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemoteDonorRepositoryInsertKeepsBlockAndReports(t *testing.T) {
	shim := &fakeShim{}
	repo := newRemote(t, shim)
	ctx := context.Background()

	err := repo.UpsertMany(ctx, []models.Donor{
		{ID: "b1", Name: "Blocked", PasswordHash: strings.Repeat("h", 60), IsBlocked: true, Reports: 3},
		{ID: "c1", Name: "Clean", PasswordHash: "hash"},
	})
	require.NoError(t, err)

	blocked, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, 3, blocked.Reports)
	clean, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, clean.IsBlocked)
	assert.Contains(t, shim.calls, "PATCH /api.php/b1")
	assert.NotContains(t, shim.calls, "PATCH /api.php/c1")
}

func TestRemoteDonorRepositoryRefusesOversizedHash(t *testing.T) {
	shim := &fakeShim{}
	repo := newRemote(t, shim).WithPasswordWidth(50)
	bcryptLike := "$2a$10$" + strings.Repeat("x", 53)

	err := repo.UpsertMany(context.Background(), []models.Donor{
		{ID: "ok", Name: "Fits", PasswordHash: "short"},
		{ID: "long", Name: "Too Long", PasswordHash: bcryptLike},
	})
	require.ErrorIs(t, err, ErrRemotePasswordTooLong)
	assert.Empty(t, shim.calls)

	err = repo.Create(context.Background(), &models.Donor{ID: "long", PasswordHash: bcryptLike})
	require.ErrorIs(t, err, ErrRemotePasswordTooLong)
	assert.Empty(t, shim.rows)
}

func TestRemoteDonorRepositoryReplaceAll(t *testing.T) {
	shim := &fakeShim{rows: []map[string]interface{}{
		{"id": "a", "name": "A", "createdAt": "2024-01-01 00:00:00"},
		{"id": "b", "name": "B", "createdAt": "2024-01-01 00:00:00"},
	}}
	repo := newRemote(t, shim)

	err := repo.ReplaceAll(context.Background(), []models.Donor{{ID: "b", Name: "B2"}, {ID: "c", Name: "C"}})
	require.NoError(t, err)

	donors, err := repo.List(context.Background())
	require.NoError(t, err)
	names := map[string]string{}
	for _, d := range donors {
		names[d.ID] = d.Name
	}
	assert.Equal(t, map[string]string{"b": "B2", "c": "C"}, names)
	assert.Contains(t, shim.calls, "DELETE /api.php/a")
	assert.Contains(t, shim.calls, "PATCH /api.php/b")
}

func TestRemoteDonorRepositoryShimError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Connection failed: refused"}`))
	}))
	defer srv.Close()
	repo := NewRemoteDonorRepository(srv.URL, time.Second, 0, nil)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Connection failed")
}
