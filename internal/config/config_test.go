// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every SITEKIT_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, "SITEKIT_") {
			continue
		}
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
		t.Cleanup(func() { _ = os.Setenv(key, value) })
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.DBPath != "./data/sitekit.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/sitekit.db")
	}
	if cfg.DatabaseDSN() != cfg.DBPath {
		t.Errorf("DatabaseDSN() = %q, want the sqlite path", cfg.DatabaseDSN())
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.MenuKey != "main_horizontal" {
		t.Errorf("MenuKey = %q, want %q", cfg.MenuKey, "main_horizontal")
	}
	if cfg.CacheTTLDuration() != time.Hour {
		t.Errorf("CacheTTLDuration() = %v, want 1h", cfg.CacheTTLDuration())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.UseRedisCache() || cfg.AdminEnabled() {
		t.Error("redis and admin endpoints should be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITEKIT_DB_DRIVER", "mysql")
	t.Setenv("SITEKIT_DB_DSN", "user:pw@tcp(db:3306)/site")
	t.Setenv("SITEKIT_SERVER_HOST", "0.0.0.0")
	t.Setenv("SITEKIT_SERVER_PORT", "3000")
	t.Setenv("SITEKIT_ENV", "production")
	t.Setenv("SITEKIT_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("SITEKIT_MENU_KEY", "footer")
	t.Setenv("SITEKIT_REQUEST_TIMEOUT", "5s")
	t.Setenv("SITEKIT_ADMIN_TOKEN", "Xk3-very-long-admin-token-0123456789")
	t.Setenv("SITEKIT_TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DatabaseDSN() != "user:pw@tcp(db:3306)/site" {
		t.Errorf("DatabaseDSN() = %q", cfg.DatabaseDSN())
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if !cfg.UseRedisCache() || !cfg.AdminEnabled() {
		t.Error("redis and admin endpoints should be enabled")
	}
	if cfg.MenuKey != "footer" {
		t.Errorf("MenuKey = %q, want footer", cfg.MenuKey)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "127.0.0.1" {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"SITEKIT_DB_DRIVER": "postgres"}},
		{"mysql without dsn", map[string]string{"SITEKIT_DB_DRIVER": "mysql"}},
		{"forbidden menu key", map[string]string{"SITEKIT_MENU_KEY": "0"}},
		{"port out of range", map[string]string{"SITEKIT_SERVER_PORT": "70000"}},
		{"bad port", map[string]string{"SITEKIT_SERVER_PORT": "http"}},
		{"zero burst", map[string]string{"SITEKIT_CONTACT_BURST": "0"}},
		{"zero retention", map[string]string{"SITEKIT_EVENT_LOG_RETENTION_DAYS": "0"}},
		{"short admin token", map[string]string{"SITEKIT_ADMIN_TOKEN": "1234567890123456789012345678901"}},
		{"weak admin token", map[string]string{"SITEKIT_ADMIN_TOKEN": "REPLACE_WITH_YOUR_OWN_ADMIN_TOKEN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() should fail")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SITEKIT_SERVER_PORT=9090\nSITEKIT_ENV=production\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// the environment wins over the file
	t.Setenv("SITEKIT_ENV", "staging")
	t.Cleanup(func() { _ = os.Unsetenv("SITEKIT_SERVER_PORT") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.Env != "staging" {
		t.Errorf("Env = %q, want staging", cfg.Env)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAAAAAA", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAAAA11", true},
		{"abc-123-def-456-ghi-789-jkl-0000", true},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}
