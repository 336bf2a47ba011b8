// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend types
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	RedisURL        string // empty selects the memory backend
	Prefix          string
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// New creates the backend described by opts. A Redis backend that cannot be
// reached falls back to memory when fallback is true.
func New(opts Options, fallback bool) (Cacher, string, error) {
	if opts.RedisURL != "" {
		ro := DefaultRedisCacheOptions()
		ro.URL = opts.RedisURL
		if opts.Prefix != "" {
			ro.Prefix = opts.Prefix
		}
		if opts.DefaultTTL > 0 {
			ro.DefaultTTL = opts.DefaultTTL
		}
		rc, err := NewRedisCache(ro)
		if err == nil {
			return rc, BackendRedis, nil
		}
		if !fallback {
			return nil, "", fmt.Errorf("connecting to redis %s: %w", SanitizeRedisURL(opts.RedisURL), err)
		}
		slog.Warn("redis unavailable, using memory cache",
			"url", SanitizeRedisURL(opts.RedisURL), "error", err)
	}

	if opts.CleanupInterval == 0 {
		opts.CleanupInterval = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: opts.CleanupInterval,
	}), BackendMemory, nil
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
