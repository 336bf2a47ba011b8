// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/model"
)

// DefaultTTL is how long a cached structure lives when no invalidation happens.
const DefaultTTL = time.Hour

// Source loads menu entries. store.MenuRepository implements it.
type Source interface {
	FindByKey(ctx context.Context, menuKey string, onlyActive bool) ([]model.MenuEntry, error)
	FindKeys(ctx context.Context) ([]string, error)
}

// Service serves resolved navigation for a request. Structures are cached,
// active flags never are.
type Service struct {
	source   Source
	resolver *Resolver
	logger   *slog.Logger

	structures *cache.TypedCache[Structure]
	tags       *cache.Tags
	group      singleflight.Group
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithCache stores structures in backend with the given TTL.
func WithCache(backend cache.Cacher, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if backend == nil {
			return
		}
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		s.structures = cache.NewTypedCache[Structure](backend, ttl)
		s.tags = cache.NewTags(backend)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a menu service. Without WithCache every call reads the source.
func NewService(source Source, resolver *Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		source:   source,
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigation returns the menu menuKey resolved against current.
func (s *Service) Navigation(ctx context.Context, menuKey string, current model.Route) ([]Node, error) {
	st, err := s.Structure(ctx, menuKey)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(st, current), nil
}

// Structure returns the cached structure of menuKey, loading it on a miss.
// Concurrent misses for the same key share one load.
func (s *Service) Structure(ctx context.Context, menuKey string) (Structure, error) {
	if s.structures == nil {
		return s.load(ctx, menuKey)
	}

	key, err := s.tags.Key(ctx, "menu:"+menuKey, cache.MenuTag(menuKey), cache.TagMenus)
	if err != nil {
		s.logger.Warn("menu cache unavailable", "menu_key", menuKey, "error", err)
		return s.load(ctx, menuKey)
	}
	if st, ok := s.structures.Get(ctx, key); ok {
		return *st, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// the load is shared, so one caller going away must not fail the others
		ctx := context.WithoutCancel(ctx)
		if st, ok := s.structures.Get(ctx, key); ok {
			return *st, nil
		}
		st, err := s.load(ctx, menuKey)
		if err != nil {
			return Structure{}, err
		}
		if err := s.structures.Set(ctx, key, &st); err != nil {
			s.logger.Warn("failed to cache menu", "menu_key", menuKey, "error", err)
		}
		return st, nil
	})
	if err != nil {
		return Structure{}, err
	}
	return v.(Structure), nil
}

func (s *Service) load(ctx context.Context, menuKey string) (Structure, error) {
	entries, err := s.source.FindByKey(ctx, menuKey, true)
	if err != nil {
		return Structure{}, fmt.Errorf("loading menu %q: %w", menuKey, err)
	}
	return Build(menuKey, entries), nil
}

// Invalidate drops the cached structure of one menu.
func (s *Service) Invalidate(ctx context.Context, menuKey string) error {
	if s.tags == nil {
		return nil
	}
	return s.tags.Invalidate(ctx, cache.MenuTag(menuKey))
}

// InvalidateAll drops every cached menu structure.
func (s *Service) InvalidateAll(ctx context.Context) error {
	if s.tags == nil {
		return nil
	}
	return s.tags.Invalidate(ctx, cache.TagMenus)
}

// Keys lists the menu groups present in the source.
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	return s.source.FindKeys(ctx)
}
