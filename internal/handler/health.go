// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/sitekit/internal/middleware"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Pinger is anything that can report its connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// PingContext implements Pinger.
func (f PingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db         Pinger
	cache      Pinger
	cacheName  string
	adminToken string
	version    string
	startTime  time.Time
}

// NewHealthHandler creates a health handler. A nil cache pinger skips the
// cache check.
func NewHealthHandler(db, cache Pinger, cacheName, adminToken, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		cache:      cache,
		cacheName:  cacheName,
		adminToken: adminToken,
		version:    version,
		startTime:  time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed response for callers holding the admin token.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check is a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains runtime information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
}

// Health handles GET /health. The database decides between healthy and
// unhealthy, a failing cache only degrades the status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]Check{"database": ping(ctx, h.db, "Connected")}
	if h.cache != nil {
		checks["cache"] = ping(ctx, h.cache, h.cacheName)
	}

	status := statusHealthy
	code := http.StatusOK
	switch {
	case checks["database"].Status != statusHealthy:
		status = statusUnhealthy
		code = http.StatusServiceUnavailable
	case h.cache != nil && checks["cache"].Status != statusHealthy:
		status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)

	if !middleware.HasToken(r, h.adminToken) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: status})
		return
	}

	resp := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		resp.System = systemInfo()
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

func ping(ctx context.Context, p Pinger, okMessage string) Check {
	start := time.Now()
	err := p.PingContext(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Message: okMessage, Latency: latency}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAllocMB:   m.Alloc / 1024 / 1024,
	}
}
