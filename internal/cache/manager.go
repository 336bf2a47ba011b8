// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
)

// Tags shared by cached content.
const (
	TagMenus         = "menus"
	TagArticleAssets = "articleAssets"
)

// MenuTag returns the invalidation tag of one menu group.
func MenuTag(menuKey string) string {
	return "menu:" + menuKey
}

// ArticleAssetTag returns the invalidation tag of one reusable article block.
func ArticleAssetTag(title string) string {
	return TagArticleAssets + "-" + title
}

// NamedStats holds statistics for one cache.
type NamedStats struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
	Stats   Stats  `json:"stats"`
}

// Manager owns the shared backend and the typed caches built on it.
type Manager struct {
	Store   Cacher
	Backend string
	Tags    *Tags
	Config  *ConfigCache
}

// NewManager creates a cache manager around an open backend.
func NewManager(store Cacher, backend string, config ConfigSource) *Manager {
	return &Manager{
		Store:   store,
		Backend: backend,
		Tags:    NewTags(store),
		Config:  NewConfigCache(config),
	}
}

// InvalidateMenus bumps the global menu tag.
func (m *Manager) InvalidateMenus(ctx context.Context) error {
	return m.Tags.Invalidate(ctx, TagMenus)
}

// ClearAll clears all caches and resets statistics.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.Config.Invalidate()
	m.Config.ResetStats()
	if err := m.Store.Clear(ctx); err != nil {
		return err
	}
	if sp, ok := m.Store.(StatsProvider); ok {
		sp.ResetStats()
	}
	slog.Info("caches cleared", "backend", m.Backend)
	return nil
}

// AllStats returns statistics for all caches.
func (m *Manager) AllStats() []NamedStats {
	stats := []NamedStats{
		{Name: "Site Configuration", Backend: BackendMemory, Stats: m.Config.Stats()},
	}
	if sp, ok := m.Store.(StatsProvider); ok {
		stats = append(stats, NamedStats{Name: "Content", Backend: m.Backend, Stats: sp.Stats()})
	}
	return stats
}

// Ping checks the shared backend.
func (m *Manager) Ping(ctx context.Context) error {
	return m.Store.Ping(ctx)
}

// Close releases the shared backend.
func (m *Manager) Close() error {
	return m.Store.Close()
}
