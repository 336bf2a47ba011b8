// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/olegiv/sitekit/internal/model"
)

// knownWeakTokens contains example tokens that must never be accepted.
var knownWeakTokens = []string{
	"change-me-to-a-long-random-token",
	"REPLACE_WITH_YOUR_OWN_ADMIN_TOKEN",
}

// Database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"SITEKIT_ENV" envDefault:"development"`
	LogLevel   string `env:"SITEKIT_LOG_LEVEL" envDefault:"info"`
	ServerHost string `env:"SITEKIT_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SITEKIT_SERVER_PORT" envDefault:"8080"`

	// Database
	DBDriver string `env:"SITEKIT_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"SITEKIT_DB_PATH" envDefault:"./data/sitekit.db"` // SQLite file
	DBDSN    string `env:"SITEKIT_DB_DSN"`                                 // MySQL DSN

	// Cache configuration
	RedisURL     string `env:"SITEKIT_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"SITEKIT_CACHE_PREFIX" envDefault:"sitekit:"` // Redis key prefix
	CacheTTL     int    `env:"SITEKIT_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"SITEKIT_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Site
	SiteURL        string        `env:"SITEKIT_SITE_URL"`                   // absolute base URL for canonical links
	NoIndex        bool          `env:"SITEKIT_NOINDEX" envDefault:"false"` // ask crawlers to stay away
	MenuKey        string        `env:"SITEKIT_MENU_KEY" envDefault:"main_horizontal"`
	AdminToken     string        `env:"SITEKIT_ADMIN_TOKEN"` // enables POST /-/cache/clear
	RequestTimeout time.Duration `env:"SITEKIT_REQUEST_TIMEOUT" envDefault:"30s"`

	// Reverse proxies whose X-Forwarded-For and X-Real-IP headers are honoured,
	// as addresses or CIDR ranges. Empty means the headers are ignored.
	TrustedProxies []string `env:"SITEKIT_TRUSTED_PROXIES" envSeparator:","`

	// Contact form rate limit per client IP
	ContactRate  float64 `env:"SITEKIT_CONTACT_RATE" envDefault:"0.1"` // requests per second
	ContactBurst int     `env:"SITEKIT_CONTACT_BURST" envDefault:"3"`

	// Scheduler
	EventLogRetentionDays int    `env:"SITEKIT_EVENT_LOG_RETENTION_DAYS" envDefault:"30"`
	ConfigPreloadSchedule string `env:"SITEKIT_CONFIG_PRELOAD_SCHEDULE" envDefault:"@every 10m"`

	// Seeding configuration
	DoSeed   bool `env:"SITEKIT_DO_SEED" envDefault:"false"`
	DemoMode bool `env:"SITEKIT_DEMO_MODE" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// DatabaseDSN returns the SQLite path or the MySQL DSN depending on the driver.
func (c Config) DatabaseDSN() string {
	if c.DBDriver == DriverMySQL {
		return c.DBDSN
	}
	return c.DBPath
}

// AdminEnabled reports whether the admin endpoints are reachable.
func (c Config) AdminEnabled() bool {
	return c.AdminToken != ""
}

// MinAdminTokenLength is the minimum length of SITEKIT_ADMIN_TOKEN.
const MinAdminTokenLength = 32

// LoadDotEnv loads variables from the given .env files without overriding
// the environment. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("SITEKIT_DB_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("SITEKIT_DB_DSN is required for the mysql driver")
		}
	default:
		return fmt.Errorf("SITEKIT_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMySQL, c.DBDriver)
	}

	if model.IsForbiddenMenuKey(c.MenuKey) {
		return fmt.Errorf("SITEKIT_MENU_KEY %q is not a valid menu key", c.MenuKey)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SITEKIT_SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.CacheTTL < 0 || c.CacheMaxSize < 0 {
		return errors.New("SITEKIT_CACHE_TTL and SITEKIT_CACHE_MAX_SIZE must not be negative")
	}
	if c.ContactRate <= 0 || c.ContactBurst <= 0 {
		return errors.New("SITEKIT_CONTACT_RATE and SITEKIT_CONTACT_BURST must be positive")
	}
	if c.EventLogRetentionDays <= 0 {
		return fmt.Errorf("SITEKIT_EVENT_LOG_RETENTION_DAYS must be positive, got %d", c.EventLogRetentionDays)
	}

	if c.AdminToken == "" {
		return nil
	}
	if len(c.AdminToken) < MinAdminTokenLength {
		return fmt.Errorf("SITEKIT_ADMIN_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinAdminTokenLength, len(c.AdminToken))
	}
	for _, weak := range knownWeakTokens {
		if c.AdminToken == weak {
			return errors.New("SITEKIT_ADMIN_TOKEN is a known default value and must not be used; " +
				"generate a secure token with: openssl rand -base64 32")
		}
	}
	if !hasMinimumEntropy(c.AdminToken) {
		slog.Warn("SITEKIT_ADMIN_TOKEN has low character diversity; " +
			"consider generating a random token with: openssl rand -base64 32")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
