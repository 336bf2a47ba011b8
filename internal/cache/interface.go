// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer of sitekit: byte-level backends
// (memory, Redis), a typed JSON wrapper and versioned tag invalidation.
package cache

import (
	"context"
	"time"
)

// Cacher defines the interface for cache backends.
// All implementations must be safe for concurrent use.
type Cacher interface {
	// Get returns the value or ErrCacheMiss if not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero TTL uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error

	// Has checks if a non-expired key exists.
	Has(ctx context.Context, key string) (bool, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StatsProvider is implemented by backends that count hits and misses.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size_bytes,omitempty"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
