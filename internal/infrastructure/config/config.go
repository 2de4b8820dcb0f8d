package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Customer Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Environment string         `yaml:"environment"`
	Database    DatabaseConfig `yaml:"database"`
	API         APIConfig      `yaml:"api"`
	Logging     LoggingConfig  `yaml:"logging"`
	Security    SecurityConfig `yaml:"security"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Seed      SeedConfig      `yaml:"seed"`
}

// JWTConfig contains JWT token settings.
//
// Secret is a base64-encoded symmetric signing key. It is decoded once at
// startup and must yield at least 32 bytes (256 bits) of key material.
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// SigningKey decodes the base64 JWT secret into raw key material.
func (j JWTConfig) SigningKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(j.Secret)
	if err != nil {
		return nil, fmt.Errorf("decoding jwt secret: %w", err)
	}
	return key, nil
}

// TokenTTL returns the configured token lifetime as a Duration.
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.TokenTTLMinutes) * time.Minute
}

// RateLimitConfig contains login rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// SeedConfig contains the bootstrap accounts created at first start.
type SeedConfig struct {
	SuperAdminEmail    string `yaml:"superadmin_email"`
	SuperAdminPassword string `yaml:"superadmin_password"`
	AdminEmail         string `yaml:"admin_email"`
	AdminPassword      string `yaml:"admin_password"`
}

// minSigningKeyBytes is the minimum decoded JWT key length (256 bits).
const minSigningKeyBytes = 32

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CUSTOMERCORE_SECTION_KEY
// For example: CUSTOMERCORE_DATABASE_PATH, CUSTOMERCORE_JWT_SECRET
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			Path:        "./data/customercore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				TokenTTLMinutes: 60,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 10,
				Burst:             10,
			},
			Seed: SeedConfig{
				SuperAdminEmail: "superadmin@oriontek.com",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CUSTOMERCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CUSTOMERCORE_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}

	// Database
	if v := os.Getenv("CUSTOMERCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("CUSTOMERCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("CUSTOMERCORE_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}

	// Security - bootstrap accounts
	if v := os.Getenv("CUSTOMERCORE_SUPERADMIN_EMAIL"); v != "" {
		cfg.Security.Seed.SuperAdminEmail = v
	}
	if v := os.Getenv("CUSTOMERCORE_SUPERADMIN_PASSWORD"); v != "" {
		cfg.Security.Seed.SuperAdminPassword = v
	}
	if v := os.Getenv("CUSTOMERCORE_ADMIN_EMAIL"); v != "" {
		cfg.Security.Seed.AdminEmail = v
	}
	if v := os.Getenv("CUSTOMERCORE_ADMIN_PASSWORD"); v != "" {
		cfg.Security.Seed.AdminPassword = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	switch c.Environment {
	case "development", "production":
	default:
		errs = append(errs, "environment must be 'development' or 'production'")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Security validation - JWT secret is REQUIRED.
	// An empty or short key would let an attacker forge bearer tokens and
	// impersonate any administrator.
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set CUSTOMERCORE_JWT_SECRET environment variable)")
	} else if key, err := c.Security.JWT.SigningKey(); err != nil {
		errs = append(errs, "security.jwt.secret must be valid base64")
	} else if len(key) < minSigningKeyBytes {
		errs = append(errs, fmt.Sprintf("security.jwt.secret must decode to at least %d bytes", minSigningKeyBytes))
	}

	if c.Security.JWT.TokenTTLMinutes <= 0 {
		errs = append(errs, "security.jwt.token_ttl_minutes must be positive")
	}

	if c.Security.Seed.SuperAdminEmail == "" {
		errs = append(errs, "security.seed.superadmin_email is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
