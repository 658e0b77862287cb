package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached registry views.
type CacheRepository interface {
	Get(ctx context.Context, name string, dest interface{}) error
	Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, names ...string) error
}

// CacheService caches derived registry views. Cache failures never fail a read; they are
// logged and the view is recomputed.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active. A nil service is a disabled cache.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

func (s *CacheService) get(ctx context.Context, name string, dest interface{}) bool {
	start := time.Now()
	err := s.repo.Get(ctx, name, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("view", name), zap.Error(err))
	}
	return err == nil
}

func (s *CacheService) set(ctx context.Context, name string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, name, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("view", name), zap.Error(err))
	}
}

// Invalidate drops the named views.
func (s *CacheService) Invalidate(ctx context.Context, names ...string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, names...); err != nil {
		s.logger.Warn("cache invalidate failed", zap.Strings("views", names), zap.Error(err))
		return err
	}
	return nil
}

// cachedView returns the view stored under name, or computes it with load and stores the
// result. The boolean reports a cache hit. Load errors are returned and nothing is cached.
func cachedView[T any](ctx context.Context, cache *CacheService, name string, ttl time.Duration, load func() (T, error)) (T, bool, error) {
	if cache.Enabled() {
		var cached T
		if cache.get(ctx, name, &cached) {
			return cached, true, nil
		}
	}
	value, err := load()
	if err != nil {
		return value, false, err
	}
	if cache.Enabled() {
		cache.set(ctx, name, value, ttl)
	}
	return value, false, nil
}
