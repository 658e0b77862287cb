package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

type adminDocument struct {
	models.AdminUser
	PasswordHash string `json:"passwordHash"`
}

func (doc adminDocument) admin() models.AdminUser {
	a := doc.AdminUser
	a.PasswordHash = doc.PasswordHash
	return a
}

// RedisAdminRepository keeps staff accounts as one JSON array.
type RedisAdminRepository struct {
	coll blobCollection[adminDocument]
}

// NewRedisAdminRepository creates an admin repository on the given key prefix.
func NewRedisAdminRepository(client *redis.Client, prefix string) *RedisAdminRepository {
	return &RedisAdminRepository{coll: newBlobCollection[adminDocument](client, prefix+KeyAdminUsers)}
}

// List returns every staff account.
func (r *RedisAdminRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	docs, _, err := r.coll.load(ctx)
	if err != nil {
		return nil, err
	}
	admins := make([]models.AdminUser, len(docs))
	for i, doc := range docs {
		admins[i] = doc.admin()
	}
	return admins, nil
}

// FindByID returns an admin by identifier.
func (r *RedisAdminRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	return r.find(ctx, func(a models.AdminUser) bool { return a.ID == id })
}

// FindByUsername returns an admin by username.
func (r *RedisAdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.find(ctx, func(a models.AdminUser) bool { return a.Username == username })
}

func (r *RedisAdminRepository) find(ctx context.Context, match func(models.AdminUser) bool) (*models.AdminUser, error) {
	admins, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if match(admins[i]) {
			return &admins[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

// Count returns the number of staff accounts.
func (r *RedisAdminRepository) Count(ctx context.Context) (int, error) {
	admins, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(admins), nil
}

// Create appends a staff account. Usernames stay unique.
func (r *RedisAdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	return r.coll.update(ctx, func(docs []adminDocument) ([]adminDocument, error) {
		for _, doc := range docs {
			if doc.Username == admin.Username {
				return nil, fmt.Errorf("create admin: username %q already exists", admin.Username)
			}
		}
		return append(docs, adminDocument{AdminUser: *admin, PasswordHash: admin.PasswordHash}), nil
	})
}

// Delete removes a staff account.
func (r *RedisAdminRepository) Delete(ctx context.Context, id string) error {
	return r.coll.update(ctx, func(docs []adminDocument) ([]adminDocument, error) {
		for i, doc := range docs {
			if doc.ID == id {
				return append(docs[:i], docs[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// UpdateLastLogin updates the last login timestamp for an admin.
func (r *RedisAdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return r.modify(ctx, id, func(doc *adminDocument) { doc.LastLogin = &ts })
}

// UpdatePassword updates the stored password hash.
func (r *RedisAdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.modify(ctx, id, func(doc *adminDocument) { doc.PasswordHash = passwordHash })
}

func (r *RedisAdminRepository) modify(ctx context.Context, id string, fn func(*adminDocument)) error {
	return r.coll.update(ctx, func(docs []adminDocument) ([]adminDocument, error) {
		for i := range docs {
			if docs[i].ID == id {
				fn(&docs[i])
				return docs, nil
			}
		}
		return nil, sql.ErrNoRows
	})
}
