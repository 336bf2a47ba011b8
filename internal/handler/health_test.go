// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okPinger() Pinger {
	return PingerFunc(func(context.Context) error { return nil })
}

func failingPinger(msg string) Pinger {
	return PingerFunc(func(context.Context) error { return errors.New(msg) })
}

func healthRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestHealth_Public(t *testing.T) {
	h := NewHealthHandler(okPinger(), okPinger(), "memory", testAdminToken, "v1.0.0")

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealth_Detailed(t *testing.T) {
	h := NewHealthHandler(okPinger(), failingPinger("redis down"), "redis", testAdminToken, "v1.0.0")

	rec := httptest.NewRecorder()
	req := healthRequest(testAdminToken)
	req.URL.RawQuery = "verbose=true"
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "a failing cache only degrades")
	var got HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, statusDegraded, got.Status)
	assert.Equal(t, "v1.0.0", got.Version)
	assert.Equal(t, statusHealthy, got.Checks["database"].Status)
	assert.Equal(t, statusUnhealthy, got.Checks["cache"].Status)
	assert.Equal(t, "redis down", got.Checks["cache"].Message)
	require.NotNil(t, got.System)
	assert.NotEmpty(t, got.System.GoVersion)
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(failingPinger("database is locked"), nil, "", testAdminToken, "v1.0.0")

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest("wrong-token"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String(), "details need the admin token")
}

func TestHealth_ThroughRouter(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(t, healthRequest(testAdminToken))
	require.Equal(t, http.StatusOK, rec.Code)
	var got HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, statusHealthy, got.Status)
	assert.Contains(t, got.Checks, "database")
	assert.Contains(t, got.Checks, "cache")
	assert.Nil(t, got.System)

	live := site.get(t, "/health/live")
	assert.JSONEq(t, `{"status":"alive"}`, live.Body.String())
}
