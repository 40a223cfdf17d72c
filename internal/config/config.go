package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Identity  IdentityConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Dispatch  DispatchConfig
	Bootstrap BootstrapConfig

	invalid []string
}

type ServerConfig struct {
	AppEnv          string
	Port            string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	Migrate         bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type IdentityConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type StorageConfig struct {
	Driver             string
	Bucket             string
	ServiceAccountJSON string
	LocalDir           string
	LocalBaseURL       string
}

type UploadConfig struct {
	MaxBytes int64
	CacheTTL time.Duration
}

type CacheConfig struct {
	Driver        string
	Size          int
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

type DispatchConfig struct {
	CountryCode string
	TaxRate     float64
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			AppEnv:          env.String("APP_ENV", "production"),
			Port:            env.String("APP_PORT", "8080"),
			ShutdownTimeout: env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:    env.String("LOGGER_LEVEL", "info"),
			Encoding: env.String("LOGGER_ENCODING", "json"),
		},
		Database: DatabaseConfig{
			Driver:          env.String("DATABASE_DRIVER", "postgres"),
			URL:             env.String("DATABASE_URL", ""),
			Migrate:         env.Bool("DATABASE_MIGRATE", true),
			MaxOpenConns:    env.Int("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    env.Int("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.Duration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Identity: IdentityConfig{
			Secret:   env.String("AUTH_SECRET", ""),
			Issuer:   env.String("AUTH_ISSUER", "menu-backend"),
			TokenTTL: env.Duration("AUTH_TOKEN_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Driver:             env.String("STORAGE_DRIVER", "gcs"),
			Bucket:             env.String("STORAGE_BUCKET", ""),
			ServiceAccountJSON: env.String("SERVICE_ACCOUNT_JSON", ""),
			LocalDir:           env.String("STORAGE_LOCAL_DIR", "./uploads"),
			LocalBaseURL:       env.String("STORAGE_LOCAL_BASE_URL", "http://localhost:8080/assets"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(env.Int("UPLOAD_MAX_BYTES", 500*1024)),
			CacheTTL: env.Duration("UPLOAD_CACHE_TTL", 48*time.Hour),
		},
		Cache: CacheConfig{
			Driver:        env.String("CACHE_DRIVER", "memory"),
			Size:          env.Int("CACHE_SIZE", 1024),
			TTL:           env.Duration("CACHE_TTL", 5*time.Minute),
			RedisAddr:     env.String("REDIS_ADDR", "localhost:6379"),
			RedisPassword: env.String("REDIS_PASSWORD", ""),
			RedisDB:       env.Int("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			PerSecond: env.Float("RATE_LIMIT_PER_SECOND", 20),
			Burst:     env.Int("RATE_LIMIT_BURST", 40),
		},
		Dispatch: DispatchConfig{
			CountryCode: env.String("DISPATCH_COUNTRY_CODE", "91"),
			TaxRate:     env.Float("DISPATCH_TAX_RATE", 0.05),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    env.String("BOOTSTRAP_ADMIN_EMAIL", ""),
			AdminPassword: env.String("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}
	cfg.invalid = env.invalid
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports malformed values and every required setting that is missing.
func (c *Config) Validate() error {
	if len(c.invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(c.invalid, ", "))
	}
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Identity.Secret == "" {
		missing = append(missing, "AUTH_SECRET")
	}
	switch c.Storage.Driver {
	case "gcs":
		if c.Storage.Bucket == "" {
			missing = append(missing, "STORAGE_BUCKET")
		}
		if c.Storage.ServiceAccountJSON == "" {
			missing = append(missing, "SERVICE_ACCOUNT_JSON")
		}
	case "local":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// envReader reads typed environment values and records the keys whose
// values do not parse.
type envReader struct {
	invalid []string
}

func (e *envReader) String(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (e *envReader) Int(key string, fallback int) int {
	return parse(e, key, fallback, strconv.Atoi)
}

func (e *envReader) Float(key string, fallback float64) float64 {
	return parse(e, key, fallback, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func (e *envReader) Bool(key string, fallback bool) bool {
	return parse(e, key, fallback, strconv.ParseBool)
}

func (e *envReader) Duration(key string, fallback time.Duration) time.Duration {
	return parse(e, key, fallback, time.ParseDuration)
}

func parse[T any](e *envReader, key string, fallback T, fn func(string) (T, error)) T {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := fn(value)
	if err != nil {
		e.invalid = append(e.invalid, fmt.Sprintf("%s=%q", key, value))
		return fallback
	}
	return v
}
