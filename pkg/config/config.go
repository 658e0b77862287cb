package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers select where the donor collection lives.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverRemote   = "remote"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Store    StoreConfig
	Import   ImportConfig
	Registry RegistryConfig
	Audit    AuditConfig
	Cache    CacheConfig
	Admin    BootstrapAdminConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig picks the persistence backend for donor records.
type StoreConfig struct {
	Driver        string
	RemoteURL     string
	RemoteTimeout time.Duration
	RemoteRetries int
	// RemotePasswordWidth is the shim's password column width; hashes longer than it are refused.
	RemotePasswordWidth int
}

// ImportConfig tunes CSV staging.
type ImportConfig struct {
	StagingTTL      time.Duration
	StagingCapacity int
	MaxFileSize     int64
	LoginIDPrefix   string
}

// RegistryConfig holds donor-facing registry rules.
type RegistryConfig struct {
	LoginIDPrefix     string
	DefaultPageSize   int
	AllowedPageSizes  []int
	RecoveryDays      int
	PasswordHashCost  int
	SimulatedLatency  time.Duration
	SeedDefaultAlert  bool
	SeedInitialDonors bool
}

// AuditConfig bounds the audit trail.
type AuditConfig struct {
	Retention int
}

// CacheConfig governs caching of derived registry views.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// BootstrapAdminConfig seeds the first Super Admin.
type BootstrapAdminConfig struct {
	Username string
	Password string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))
	switch driver {
	case StoreDriverPostgres, StoreDriverRedis, StoreDriverRemote:
	default:
		driver = StoreDriverPostgres
	}
	cfg.Store = StoreConfig{
		Driver:              driver,
		RemoteURL:           v.GetString("REMOTE_STORE_URL"),
		RemoteTimeout:       parseDuration(v.GetString("REMOTE_STORE_TIMEOUT"), 10*time.Second),
		RemoteRetries:       v.GetInt("REMOTE_STORE_RETRIES"),
		RemotePasswordWidth: v.GetInt("REMOTE_STORE_PASSWORD_WIDTH"),
	}

	maxFile := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxFile <= 0 {
		maxFile = 5 * 1024 * 1024
	}
	capacity := v.GetInt("IMPORT_STAGING_CAPACITY")
	if capacity <= 0 {
		capacity = 32
	}
	cfg.Import = ImportConfig{
		StagingTTL:      parseDuration(v.GetString("IMPORT_STAGING_TTL"), 30*time.Minute),
		StagingCapacity: capacity,
		MaxFileSize:     maxFile,
		LoginIDPrefix:   v.GetString("IMPORT_LOGIN_ID_PREFIX"),
	}

	pageSizes := parseInts(v.GetString("ALLOWED_PAGE_SIZES"))
	if len(pageSizes) == 0 {
		pageSizes = []int{5, 10, 20, 50}
	}
	cfg.Registry = RegistryConfig{
		LoginIDPrefix:     v.GetString("LOGIN_ID_PREFIX"),
		DefaultPageSize:   v.GetInt("DEFAULT_PAGE_SIZE"),
		AllowedPageSizes:  pageSizes,
		RecoveryDays:      v.GetInt("DONATION_RECOVERY_DAYS"),
		PasswordHashCost:  v.GetInt("PASSWORD_HASH_COST"),
		SimulatedLatency:  parseDuration(v.GetString("SIMULATED_LATENCY"), 0),
		SeedDefaultAlert:  v.GetBool("SEED_DEFAULT_ALERT"),
		SeedInitialDonors: v.GetBool("SEED_INITIAL_DONORS"),
	}

	retention := v.GetInt("AUDIT_RETENTION")
	if retention <= 0 {
		retention = 500
	}
	cfg.Audit = AuditConfig{Retention: retention}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.Admin = BootstrapAdminConfig{
		Username: v.GetString("BOOTSTRAP_ADMIN_USERNAME"),
		Password: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "blood_connect")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "blood_donor_connect")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "donor-registry-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("REMOTE_STORE_URL", "http://localhost/api.php")
	v.SetDefault("REMOTE_STORE_TIMEOUT", "10s")
	v.SetDefault("REMOTE_STORE_RETRIES", 2)
	v.SetDefault("REMOTE_STORE_PASSWORD_WIDTH", 60)

	v.SetDefault("IMPORT_STAGING_TTL", "30m")
	v.SetDefault("IMPORT_STAGING_CAPACITY", 32)
	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("IMPORT_LOGIN_ID_PREFIX", "IMP")

	v.SetDefault("LOGIN_ID_PREFIX", "BDC-ID")
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("ALLOWED_PAGE_SIZES", "5,10,20,50")
	v.SetDefault("DONATION_RECOVERY_DAYS", 90)
	v.SetDefault("PASSWORD_HASH_COST", 10)
	v.SetDefault("SIMULATED_LATENCY", "0s")
	v.SetDefault("SEED_DEFAULT_ALERT", true)
	v.SetDefault("SEED_INITIAL_DONORS", false)

	v.SetDefault("AUDIT_RETENTION", 500)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "admin")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "password123")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseInts(raw string) []int {
	var result []int
	for _, part := range splitAndTrim(raw) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		result = append(result, n)
	}
	return result
}

// viper reports a missing explicit config file as a plain fs error, not ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
}
