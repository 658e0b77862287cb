package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// RedisAlertRepository keeps emergency alerts as one JSON array, newest first.
type RedisAlertRepository struct {
	coll blobCollection[models.EmergencyAlert]
}

// NewRedisAlertRepository creates an alert repository on the given key prefix.
func NewRedisAlertRepository(client *redis.Client, prefix string) *RedisAlertRepository {
	return &RedisAlertRepository{coll: newBlobCollection[models.EmergencyAlert](client, prefix+KeyAlerts)}
}

// List returns alerts newest first.
func (r *RedisAlertRepository) List(ctx context.Context) ([]models.EmergencyAlert, error) {
	alerts, _, err := r.coll.load(ctx)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.EmergencyAlert{}
	}
	return alerts, nil
}

// Create prepends an alert.
func (r *RedisAlertRepository) Create(ctx context.Context, alert *models.EmergencyAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.UpdatedAt.IsZero() {
		alert.UpdatedAt = time.Now().UTC()
	}
	return r.coll.update(ctx, func(alerts []models.EmergencyAlert) ([]models.EmergencyAlert, error) {
		return append([]models.EmergencyAlert{*alert}, alerts...), nil
	})
}

// Delete removes an alert.
func (r *RedisAlertRepository) Delete(ctx context.Context, id string) error {
	return r.coll.update(ctx, func(alerts []models.EmergencyAlert) ([]models.EmergencyAlert, error) {
		for i, a := range alerts {
			if a.ID == id {
				return append(alerts[:i], alerts[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// SeedIfEmpty writes alert only when the collection was never written. A collection
// emptied by terminate stays empty.
func (r *RedisAlertRepository) SeedIfEmpty(ctx context.Context, alert models.EmergencyAlert) (bool, error) {
	return r.coll.seed(ctx, []models.EmergencyAlert{alert})
}
