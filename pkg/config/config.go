package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/barrister-bot/barrister/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (optional shared permission cache)
	Redis RedisConfig

	// Cache configuration (in-process guild config cache)
	Cache CacheConfig

	// Audit configuration
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the optional shared cache settings
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds in-process cache settings
type CacheConfig struct {
	GuildConfigSize int
	GuildConfigTTL  time.Duration
}

// AuditConfig holds audit retention settings
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept before the janitor
	// prunes them
	RetentionDays int
	// PruneSchedule is a cron expression for the janitor
	PruneSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("BARRISTER_HOST", "0.0.0.0"),
			Port:            getEnv("BARRISTER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("BARRISTER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("BARRISTER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("BARRISTER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("BARRISTER_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("BARRISTER_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("BARRISTER_POSTGRES_URL", ""),
			MaxOpenConns:    getEnvInt("BARRISTER_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns:    getEnvInt("BARRISTER_POSTGRES_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("BARRISTER_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("BARRISTER_REDIS_ENABLED", false),
			Addr:     getEnv("BARRISTER_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("BARRISTER_REDIS_PASSWORD", ""),
			DB:       getEnvInt("BARRISTER_REDIS_DB", 0),
		},
		Cache: CacheConfig{
			GuildConfigSize: getEnvInt("BARRISTER_GUILD_CACHE_SIZE", 1024),
			GuildConfigTTL:  getEnvDuration("BARRISTER_GUILD_CACHE_TTL", 5*time.Minute),
		},
		Audit: AuditConfig{
			RetentionDays: getEnvInt("BARRISTER_AUDIT_RETENTION_DAYS", 365),
			PruneSchedule: getEnv("BARRISTER_AUDIT_PRUNE_SCHEDULE", "0 3 * * *"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("BARRISTER_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("BARRISTER_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("postgres max connections must be at least 1")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Cache.GuildConfigSize < 1 {
		return fmt.Errorf("guild config cache size must be at least 1")
	}

	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("audit retention must be at least one day")
	}
	if c.Audit.PruneSchedule == "" {
		return fmt.Errorf("audit prune schedule is required")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
