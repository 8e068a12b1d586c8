package config

import (
	"os"
	"testing"
	"time"

	"github.com/barrister-bot/barrister/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{name: "true string", envValue: "true", defaultValue: false, want: true},
		{name: "TRUE string", envValue: "TRUE", defaultValue: false, want: true},
		{name: "one string", envValue: "1", defaultValue: false, want: true},
		{name: "false string", envValue: "false", defaultValue: true, want: false},
		{name: "unset uses default", envValue: "", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}
			if got := getEnvBool(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// TestGetEnvInt tests the getEnvInt helper function
func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{name: "valid integer", envValue: "42", defaultValue: 0, want: 42},
		{name: "invalid integer uses default", envValue: "abc", defaultValue: 7, want: 7},
		{name: "unset uses default", envValue: "", defaultValue: 7, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_INT_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}
			if got := getEnvInt(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{name: "valid duration", envValue: "45s", defaultValue: time.Minute, want: 45 * time.Second},
		{name: "invalid duration uses default", envValue: "soon", defaultValue: time.Minute, want: time.Minute},
		{name: "unset uses default", envValue: "", defaultValue: time.Minute, want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_DURATION_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}
			if got := getEnvDuration(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvDuration(%q, %v) = %v, want %v", key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// TestLoadConfigDefaults verifies defaults with only the required URL set
func TestLoadConfigDefaults(t *testing.T) {
	os.Setenv("BARRISTER_POSTGRES_URL", "postgres://localhost/barrister")
	defer os.Unsetenv("BARRISTER_POSTGRES_URL")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Server.HealthPort = %q, want 9090", cfg.Server.HealthPort)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Database.MaxOpenConns = %d, want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis.Enabled = true, want false by default")
	}
	if cfg.Cache.GuildConfigTTL != 5*time.Minute {
		t.Errorf("Cache.GuildConfigTTL = %v, want 5m", cfg.Cache.GuildConfigTTL)
	}
	if cfg.Audit.RetentionDays != 365 {
		t.Errorf("Audit.RetentionDays = %d, want 365", cfg.Audit.RetentionDays)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("Observability.LogLevel = %v, want info", cfg.Observability.LogLevel)
	}
}

// TestLoadConfigRequiresDatabaseURL verifies the only hard requirement
func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("BARRISTER_POSTGRES_URL")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() succeeded without a postgres URL")
	}
}

// TestValidate tests configuration validation rules
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080", HealthPort: "9090"},
			Database: DatabaseConfig{
				URL:          "postgres://localhost/barrister",
				MaxOpenConns: 25,
			},
			Cache: CacheConfig{GuildConfigSize: 1024, GuildConfigTTL: 5 * time.Minute},
			Audit: AuditConfig{RetentionDays: 365, PruneSchedule: "0 3 * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "port collision", mutate: func(c *Config) { c.Server.HealthPort = "8080" }, wantErr: true},
		{name: "missing database URL", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
		{name: "zero max conns", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }, wantErr: true},
		{name: "redis enabled without addr", mutate: func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, wantErr: true},
		{name: "zero cache size", mutate: func(c *Config) { c.Cache.GuildConfigSize = 0 }, wantErr: true},
		{name: "zero retention", mutate: func(c *Config) { c.Audit.RetentionDays = 0 }, wantErr: true},
		{name: "empty prune schedule", mutate: func(c *Config) { c.Audit.PruneSchedule = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
