package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/query"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// Cached view names. Every registry write drops all of them.
const (
	viewStats  = "stats"
	viewHealth = "health"
)

var registryViews = []string{viewStats, viewHealth}

// RegistryService serves read views over the donor registry: admin queries, public search,
// statistics and the health report. Derived reports are cached until the next write.
type RegistryService struct {
	repo     DonorStore
	engine   *query.Engine
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewRegistryService constructs a RegistryService.
func NewRegistryService(repo DonorStore, engine *query.Engine, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *RegistryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = query.NewEngine(0, nil)
	}
	return &RegistryService{repo: repo, engine: engine, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Engine exposes the query rules used by this service.
func (s *RegistryService) Engine() *query.Engine {
	return s.engine
}

// Donors loads the whole registry.
func (s *RegistryService) Donors(ctx context.Context) ([]models.Donor, error) {
	start := time.Now()
	donors, err := s.repo.List(ctx)
	s.metrics.ObserveStoreOp("list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registry")
	}
	if donors == nil {
		donors = []models.Donor{}
	}
	return donors, nil
}

// Query filters, sorts and paginates the registry. The health report used by the Duplicates
// and Incomplete filters is computed from the same snapshot.
func (s *RegistryService) Query(ctx context.Context, filter models.DonorFilter) (*models.DonorPage, error) {
	donors, err := s.Donors(ctx)
	if err != nil {
		return nil, err
	}
	page := s.engine.Query(donors, filter, nil)
	return &page, nil
}

// SearchPublic runs the anonymous donor lookup.
func (s *RegistryService) SearchPublic(ctx context.Context, filter models.PublicSearchFilter) ([]models.PublicDonor, models.Pagination, error) {
	donors, err := s.Donors(ctx)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	items, pagination := s.engine.SearchPublic(donors, filter)
	return items, pagination, nil
}

// Stats returns headline counts. The boolean reports a cache hit.
func (s *RegistryService) Stats(ctx context.Context) (*models.RegistryStats, bool, error) {
	stats, hit, err := cachedView(ctx, s.cache, viewStats, s.cacheTTL, func() (models.RegistryStats, error) {
		donors, err := s.Donors(ctx)
		if err != nil {
			return models.RegistryStats{}, err
		}
		return query.Stats(donors), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &stats, hit, nil
}

// Health runs the data-quality pass. The boolean reports a cache hit.
func (s *RegistryService) Health(ctx context.Context) (*models.HealthReport, bool, error) {
	report, hit, err := cachedView(ctx, s.cache, viewHealth, s.cacheTTL, func() (models.HealthReport, error) {
		donors, err := s.Donors(ctx)
		if err != nil {
			return models.HealthReport{}, err
		}
		return query.HealthCheck(donors), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &report, hit, nil
}

// Reach counts the donors a broadcast for bloodGroup would notify.
func (s *RegistryService) Reach(ctx context.Context, bloodGroup string) (int, error) {
	donors, err := s.Donors(ctx)
	if err != nil {
		return 0, err
	}
	return query.Reach(donors, bloodGroup), nil
}

// Invalidate drops cached views after a registry write.
func (s *RegistryService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, registryViews...); err != nil {
		s.logger.Warn("failed to invalidate registry cache", zap.Error(err))
	}
}
