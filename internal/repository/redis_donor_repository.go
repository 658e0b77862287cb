package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// donorDocument is the stored shape of a donor; it keeps the credential hash that the API hides.
type donorDocument struct {
	models.Donor
	PasswordHash string `json:"passwordHash"`
}

func toDonorDocument(d models.Donor) donorDocument {
	return donorDocument{Donor: d, PasswordHash: d.PasswordHash}
}

func (doc donorDocument) donor() models.Donor {
	d := doc.Donor
	d.PasswordHash = doc.PasswordHash
	return d
}

// RedisDonorRepository keeps the registry as one JSON array, newest donors first.
type RedisDonorRepository struct {
	coll blobCollection[donorDocument]
}

// NewRedisDonorRepository creates a donor repository on the given key prefix.
func NewRedisDonorRepository(client *redis.Client, prefix string) *RedisDonorRepository {
	return &RedisDonorRepository{coll: newBlobCollection[donorDocument](client, prefix+KeyDonors)}
}

// List returns the registry in stored order.
func (r *RedisDonorRepository) List(ctx context.Context) ([]models.Donor, error) {
	docs, _, err := r.coll.load(ctx)
	if err != nil {
		return nil, err
	}
	donors := make([]models.Donor, len(docs))
	for i, doc := range docs {
		donors[i] = doc.donor()
	}
	return donors, nil
}

// FindByID returns a donor by identifier.
func (r *RedisDonorRepository) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	return r.find(ctx, func(d models.Donor) bool { return d.ID == id })
}

// FindByLoginID returns a donor by login id.
func (r *RedisDonorRepository) FindByLoginID(ctx context.Context, loginID string) (*models.Donor, error) {
	return r.find(ctx, func(d models.Donor) bool { return d.LoginID == loginID })
}

func (r *RedisDonorRepository) find(ctx context.Context, match func(models.Donor) bool) (*models.Donor, error) {
	donors, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range donors {
		if match(donors[i]) {
			return &donors[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

// ExistsByLoginID reports whether a login id is taken.
func (r *RedisDonorRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	_, err := r.FindByLoginID(ctx, loginID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Create prepends a donor at version 1.
func (r *RedisDonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	stampNew(donor, time.Now().UTC())
	return r.coll.update(ctx, func(docs []donorDocument) ([]donorDocument, error) {
		return append([]donorDocument{toDonorDocument(*donor)}, docs...), nil
	})
}

// Update rewrites a donor in place, enforcing expectedVersion when positive.
func (r *RedisDonorRepository) Update(ctx context.Context, donor *models.Donor, expectedVersion int64) error {
	donor.UpdatedAt = time.Now().UTC()
	return r.coll.update(ctx, func(docs []donorDocument) ([]donorDocument, error) {
		for i := range docs {
			if docs[i].ID != donor.ID {
				continue
			}
			if expectedVersion > 0 && docs[i].Version != expectedVersion {
				return nil, ErrStaleVersion
			}
			donor.Version = docs[i].Version + 1
			docs[i] = toDonorDocument(*donor)
			return docs, nil
		}
		return nil, sql.ErrNoRows
	})
}

// Delete removes donors by id and reports how many were removed.
func (r *RedisDonorRepository) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	removed := 0
	err := r.coll.update(ctx, func(docs []donorDocument) ([]donorDocument, error) {
		removed = 0
		kept := docs[:0]
		for _, doc := range docs {
			if _, ok := remove[doc.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, doc)
		}
		if removed == 0 {
			return nil, errSkipWrite
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ReplaceAll overwrites the registry with donors in the given order.
func (r *RedisDonorRepository) ReplaceAll(ctx context.Context, donors []models.Donor) error {
	now := time.Now().UTC()
	docs := make([]donorDocument, len(donors))
	for i := range donors {
		stampNew(&donors[i], now)
		docs[i] = toDonorDocument(donors[i])
	}
	return r.coll.replace(ctx, docs)
}

// UpsertMany overwrites donors in place by id and appends unknown ones.
func (r *RedisDonorRepository) UpsertMany(ctx context.Context, donors []models.Donor) error {
	if len(donors) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range donors {
		stampNew(&donors[i], now)
	}
	return r.coll.update(ctx, func(docs []donorDocument) ([]donorDocument, error) {
		index := make(map[string]int, len(docs))
		for i, doc := range docs {
			index[doc.ID] = i
		}
		for _, d := range donors {
			if i, ok := index[d.ID]; ok {
				docs[i] = toDonorDocument(d)
				continue
			}
			index[d.ID] = len(docs)
			docs = append(docs, toDonorDocument(d))
		}
		return docs, nil
	})
}
