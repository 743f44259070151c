// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Supplier SupplierConfig `mapstructure:"supplier"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// DatabaseConfig holds database connection settings. Driver selects the
// backend: "postgres" for production, "sqlite" for local development and
// tests. The SQLite path is ignored for postgres and vice versa.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"` // postgres, sqlite
	Path         string        `mapstructure:"path"`   // sqlite file path, ":memory:" allowed
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// CacheConfig holds BoundedCache settings. RefetchLimit is the staleness
// threshold: any search result older than this triggers a supplier refresh.
type CacheConfig struct {
	Capacity     int           `mapstructure:"capacity"`
	RefetchLimit time.Duration `mapstructure:"refetch_limit"`
}

// SupplierConfig holds supplier gateway settings. Mode selects the
// implementation: "simulator" (default) or "remote" (pull_url-backed).
type SupplierConfig struct {
	Mode      string          `mapstructure:"mode"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Remote    RemoteConfig    `mapstructure:"remote"`
}

// SimulatorConfig holds the simulated supplier call settings.
type SimulatorConfig struct {
	Delay     time.Duration `mapstructure:"delay"`      // per-call latency
	PriceStep float64       `mapstructure:"price_step"` // fixed price drift per refresh
	MinCalls  int           `mapstructure:"min_calls"`  // call floor for empty result sets
}

// RemoteConfig holds the pull_url-backed gateway settings.
type RemoteConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// RefreshConfig holds background catalog refresh settings.
type RefreshConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for distributed locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "product-comparison-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8888)
	v.SetDefault("app.debug", true)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "product.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "product_comparison")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Cache defaults
	v.SetDefault("cache.capacity", 100)
	v.SetDefault("cache.refetch_limit", "1h")

	// Supplier gateway defaults
	v.SetDefault("supplier.mode", "simulator")
	v.SetDefault("supplier.simulator.delay", "200ms")
	v.SetDefault("supplier.simulator.price_step", 1.0)
	v.SetDefault("supplier.simulator.min_calls", 5)
	v.SetDefault("supplier.remote.timeout", "10s")
	v.SetDefault("supplier.remote.retry.max_attempts", 3)
	v.SetDefault("supplier.remote.retry.wait_time", "1s")
	v.SetDefault("supplier.remote.retry.max_wait_time", "5s")
	v.SetDefault("supplier.remote.circuit_breaker.max_requests", 3)
	v.SetDefault("supplier.remote.circuit_breaker.interval", "60s")
	v.SetDefault("supplier.remote.circuit_breaker.timeout", "30s")
	v.SetDefault("supplier.remote.circuit_breaker.failure_ratio", 0.5)

	// Background refresh defaults
	v.SetDefault("refresh.enabled", false)
	v.SetDefault("refresh.interval", "30m")
	v.SetDefault("refresh.on_startup", false)
	v.SetDefault("refresh.timeout", "1m")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
