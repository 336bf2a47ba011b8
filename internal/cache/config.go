// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/olegiv/sitekit/internal/model"
)

// ConfigSource loads the key/value site configuration.
type ConfigSource interface {
	All(ctx context.Context, onlyActive bool) ([]model.ConfigItem, error)
}

// ConfigCache provides cached access to site configuration.
// It loads all active values once and serves them from memory until invalidated.
type ConfigCache struct {
	source ConfigSource
	mu     sync.RWMutex
	loaded bool
	values map[string]string

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewConfigCache creates a new config cache.
func NewConfigCache(source ConfigSource) *ConfigCache {
	return &ConfigCache{
		source: source,
		values: make(map[string]string),
	}
}

// Get retrieves a config value by key. Returns "" if not found.
func (c *ConfigCache) Get(ctx context.Context, key string) (string, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, nil
}

// GetOr returns the value of key, or fallback when missing or empty.
func (c *ConfigCache) GetOr(ctx context.Context, key, fallback string) string {
	v, err := c.Get(ctx, key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

// All returns a copy of all config values.
func (c *ConfigCache) All(ctx context.Context) (map[string]string, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result, nil
}

func (c *ConfigCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.loadAll(ctx)
}

func (c *ConfigCache) loadAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.loaded {
		return nil
	}

	items, err := c.source.All(ctx, true)
	if err != nil {
		return err
	}

	c.values = make(map[string]string, len(items))
	for _, item := range items {
		c.values[item.Key] = item.Value
	}
	c.loaded = true
	c.loads.Add(1)
	return nil
}

// Invalidate clears the cache, forcing a reload on next access.
func (c *ConfigCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.values = make(map[string]string)
}

// Preload loads all config into cache.
func (c *ConfigCache) Preload(ctx context.Context) error {
	c.Invalidate()
	return c.loadAll(ctx)
}

// Stats returns cache statistics.
func (c *ConfigCache) Stats() Stats {
	c.mu.RLock()
	items := len(c.values)
	c.mu.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.loads.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

// ResetStats resets the cache statistics.
func (c *ConfigCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.loads.Store(0)
}
