// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/model"
)

func TestBuildLink(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name   string
		route  string
		action string
		params map[string]string
		want   string
	}{
		{"home", model.RouteHome, model.ActionDefault, nil, "/"},
		{"empty action means default", model.RouteHome, "", nil, "/"},
		{"article", model.RouteArticle, model.ActionDefault, map[string]string{"slug": "history"}, "/history"},
		{"gallery index", model.RouteGallery, model.ActionDefault, nil, "/gallery"},
		{"gallery view", model.RouteGallery, model.ActionView, map[string]string{"id": "7"}, "/gallery/7"},
		{"calendar", model.RouteCalendar, model.ActionDefault, nil, "/calendar"},
		{"contact", model.RouteContact, model.ActionDefault, nil, "/contact"},
		{"extra params sorted", model.RouteCalendar, model.ActionDefault, map[string]string{"mode": "events", "month": "2026-05"}, "/calendar?mode=events&month=2026-05"},
		{"extra params escaped", model.RouteArticle, model.ActionDefault, map[string]string{"slug": "a", "q": "x y"}, "/a?q=x+y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.BuildLink(tt.route, tt.action, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildLink_Unresolvable(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name   string
		route  string
		action string
		params map[string]string
	}{
		{"unknown route", "Shop", model.ActionDefault, nil},
		{"unknown action", model.RouteArticle, "edit", map[string]string{"slug": "a"}},
		{"missing slug", model.RouteArticle, model.ActionDefault, nil},
		{"invalid slug", model.RouteArticle, model.ActionDefault, map[string]string{"slug": "Not A Slug"}},
		{"invalid id", model.RouteGallery, model.ActionView, map[string]string{"id": "abc"}},
		{"non-positive id", model.RouteGallery, model.ActionView, map[string]string{"id": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := b.BuildLink(tt.route, tt.action, tt.params)
			assert.Empty(t, link)

			var lre *LinkResolutionError
			require.True(t, errors.As(err, &lre), "got %v", err)
			assert.Equal(t, tt.route, lre.Route)
		})
	}
}

func TestCurrent_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, model.Route{}, Current(req.Context()))
}

func TestMiddleware_CopiesURLParams(t *testing.T) {
	var got model.Route
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/gallery/{id}", Handler(model.RouteGallery, model.ActionView, func(_ http.ResponseWriter, req *http.Request) {
		got = Current(req.Context())
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/gallery/42", nil))

	assert.Equal(t, model.RouteGallery, got.Name)
	assert.Equal(t, model.ActionView, got.Action)
	assert.Equal(t, map[string]string{"id": "42"}, got.Params)
}
