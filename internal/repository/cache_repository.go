package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// CacheRepository keeps derived registry views (stats, health reports) as JSON values under
// "<prefix>:view:<name>" so they never collide with the collection keys sharing the database.
type CacheRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, prefix string, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, prefix: prefix, logger: logger}
}

func (r *CacheRepository) key(name string) string {
	return r.prefix + ":view:" + name
}

// Get decodes the view stored under name into dest. A missing key yields ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, name string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get view %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// a view written by an older build is treated as absent and overwritten on the next load
		r.logger.Debug("discarding undecodable cached view", zap.String("view", name), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set stores value under name for ttl.
func (r *CacheRepository) Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", name, err)
	}
	if err := r.client.Set(ctx, r.key(name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set view %s: %w", name, err)
	}
	return nil
}

// Delete drops the named views in one round trip.
func (r *CacheRepository) Delete(ctx context.Context, names ...string) error {
	if r.client == nil || len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = r.key(name)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete views: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *CacheRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
