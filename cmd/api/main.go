package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/donor-registry-api/api/swagger"
	"github.com/noah-isme/donor-registry-api/internal/handler"
	internalmiddleware "github.com/noah-isme/donor-registry-api/internal/middleware"
	"github.com/noah-isme/donor-registry-api/internal/query"
	"github.com/noah-isme/donor-registry-api/internal/repository"
	"github.com/noah-isme/donor-registry-api/internal/service"
	"github.com/noah-isme/donor-registry-api/pkg/cache"
	"github.com/noah-isme/donor-registry-api/pkg/config"
	"github.com/noah-isme/donor-registry-api/pkg/database"
	"github.com/noah-isme/donor-registry-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/donor-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/donor-registry-api/pkg/middleware/requestid"
)

// @title Blood Donor Registry API
// @version 1.0.0
// @description Donor registry with staged CSV imports, exports and emergency broadcasts.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// stores groups the repositories selected by STORE_DRIVER.
type stores struct {
	donors service.DonorStore
	admins service.AdminStore
	alerts service.AlertStore
	audit  service.AuditStore
	ready  []func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Store.Driver != config.StoreDriverPostgres || cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	st, closeStores, err := openStores(ctx, cfg, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to open stores", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStores()

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logr), metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	validate := validator.New()
	engine := query.NewEngine(cfg.Registry.DefaultPageSize, cfg.Registry.AllowedPageSizes)
	registrySvc := service.NewRegistryService(st.donors, engine, cacheSvc, metricsSvc, logr, cfg.Cache.TTL)
	auditSvc := service.NewAuditService(st.audit, cfg.Audit.Retention, metricsSvc, logr)
	donorSvc := service.NewDonorService(st.donors, registrySvc, auditSvc, validate, logr, service.DonorConfig{
		LoginIDPrefix: cfg.Registry.LoginIDPrefix,
		RecoveryDays:  cfg.Registry.RecoveryDays,
		HashCost:      cfg.Registry.PasswordHashCost,
	})
	importSvc := service.NewImportService(st.donors, registrySvc, auditSvc, metricsSvc, logr, service.ImportConfig{
		LoginIDPrefix:    cfg.Import.LoginIDPrefix,
		StagingTTL:       cfg.Import.StagingTTL,
		StagingCapacity:  cfg.Import.StagingCapacity,
		MaxFileSize:      cfg.Import.MaxFileSize,
		HashCost:         cfg.Registry.PasswordHashCost,
		SimulatedLatency: cfg.Registry.SimulatedLatency,
	})
	bulkSvc := service.NewBulkService(st.donors, registrySvc, auditSvc, validate, logr, cfg.Registry.SimulatedLatency)
	exportSvc := service.NewExportService(registrySvc, auditSvc, logr, cfg.Registry.RecoveryDays, nil, nil, nil)
	alertSvc := service.NewAlertService(st.alerts, registrySvc, auditSvc, metricsSvc, validate, logr, cfg.Registry.SimulatedLatency)
	authSvc := service.NewAuthService(st.admins, st.donors, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		HashCost:          cfg.Registry.PasswordHashCost,
	})
	adminSvc := service.NewAdminService(st.admins, auditSvc, validate, logr, cfg.Registry.PasswordHashCost)

	bootstrap(ctx, cfg, logr, adminSvc, alertSvc, donorSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.ResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
		for _, check := range st.ready {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Donor:    handler.NewDonorHandler(donorSvc),
		Registry: handler.NewRegistryHandler(registrySvc),
		Bulk:     handler.NewBulkHandler(bulkSvc),
		Import:   handler.NewImportHandler(importSvc, cfg.Import.MaxFileSize),
		Export:   handler.NewExportHandler(exportSvc),
		Alert:    handler.NewAlertHandler(alertSvc, donorSvc),
		Audit:    handler.NewAuditHandler(auditSvc),
		Admin:    handler.NewAdminHandler(adminSvc),
		Metrics:  metricsHandler,
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStores builds the repositories for the configured driver. Admins, alerts and audit live
// in redis whenever the donors do not live in postgres.
func openStores(ctx context.Context, cfg *config.Config, client *redis.Client, logr *zap.Logger) (*stores, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgresStores(db), func() { _ = db.Close() }, nil
	case config.StoreDriverRedis, config.StoreDriverRemote:
		prefix := cfg.Redis.KeyPrefix
		st := &stores{
			donors: repository.NewRedisDonorRepository(client, prefix),
			admins: repository.NewRedisAdminRepository(client, prefix),
			alerts: repository.NewRedisAlertRepository(client, prefix),
			audit:  repository.NewRedisAuditRepository(client, prefix),
			ready:  []func(ctx context.Context) error{cache.Ready(client)},
		}
		if cfg.Store.Driver == config.StoreDriverRemote {
			st.donors = repository.NewRemoteDonorRepository(cfg.Store.RemoteURL, cfg.Store.RemoteTimeout, cfg.Store.RemoteRetries, logr).
				WithPasswordWidth(cfg.Store.RemotePasswordWidth)
		}
		return st, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func postgresStores(db *sqlx.DB) *stores {
	return &stores{
		donors: repository.NewDonorRepository(db),
		admins: repository.NewAdminRepository(db),
		alerts: repository.NewAlertRepository(db),
		audit:  repository.NewAuditRepository(db),
		ready:  []func(ctx context.Context) error{db.PingContext},
	}
}

// bootstrap seeds the first Super Admin, the default alert and optionally demo donors.
// Failures are logged and do not stop the server.
func bootstrap(ctx context.Context, cfg *config.Config, logr *zap.Logger, admins *service.AdminService, alerts *service.AlertService, donors *service.DonorService) {
	if created, err := admins.Bootstrap(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logr.Error("failed to bootstrap admin", zap.Error(err))
	} else if created {
		logr.Info("bootstrap super admin created", zap.String("username", cfg.Admin.Username))
	}

	if cfg.Registry.SeedDefaultAlert {
		if _, err := alerts.Seed(ctx); err != nil {
			logr.Warn("failed to seed default alert", zap.Error(err))
		}
	}

	if cfg.Registry.SeedInitialDonors {
		if seeded, err := donors.SeedDemo(ctx); err != nil {
			logr.Warn("failed to seed demo donors", zap.Error(err))
		} else if seeded {
			logr.Info("demo donors seeded")
		}
	}
}
