// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/middleware"
)

// CacheAdmin is the cache surface exposed to operators. cache.Manager implements it.
type CacheAdmin interface {
	ClearAll(ctx context.Context) error
	AllStats() []cache.NamedStats
}

// MenuCache lists menu groups and drops their cached structures. menu.Service implements it.
type MenuCache interface {
	Keys(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context, menuKey string) error
}

// CacheHandler serves the token-protected cache endpoints.
type CacheHandler struct {
	caches CacheAdmin
	menus  MenuCache
	logger *slog.Logger
}

// NewCacheHandler creates a cache handler.
func NewCacheHandler(caches CacheAdmin, menus MenuCache, logger *slog.Logger) *CacheHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheHandler{caches: caches, menus: menus, logger: logger}
}

// Stats handles GET /-/cache/stats.
func (h *CacheHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"caches": h.caches.AllStats()})
}

// Clear handles POST /-/cache/clear.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.caches.ClearAll(r.Context()); err != nil {
		h.logger.Error("failed to clear caches", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to clear caches")
		return
	}
	h.logger.Info("caches cleared by operator", "category", "cache")
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// Menus handles GET /-/cache/menus.
func (h *CacheHandler) Menus(w http.ResponseWriter, r *http.Request) {
	keys, err := h.menus.Keys(r.Context())
	if err != nil {
		h.logger.Error("failed to list menus", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to list menus")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": keys})
}

// InvalidateMenu handles POST /-/cache/menus/{key}.
func (h *CacheHandler) InvalidateMenu(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.menus.Invalidate(r.Context(), key); err != nil {
		h.logger.Error("failed to invalidate menu", "menu_key", key, "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to invalidate menu")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invalidated": key})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
