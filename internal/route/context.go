// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sitekit/internal/model"
)

type contextKey struct{}

// WithCurrent stores the route identity of the request in ctx.
func WithCurrent(ctx context.Context, r model.Route) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// Current returns the route identity stored in ctx.
func Current(ctx context.Context) model.Route {
	r, _ := ctx.Value(contextKey{}).(model.Route)
	return r
}

// Middleware tags the request with a route identity. Chi URL params are copied
// into the route params, so it must run inside the matched chi route.
func Middleware(name, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			current := model.Route{Name: name, Action: action, Params: map[string]string{}}
			if rctx := chi.RouteContext(req.Context()); rctx != nil {
				for i, k := range rctx.URLParams.Keys {
					if k == "*" || i >= len(rctx.URLParams.Values) {
						continue
					}
					current.Params[k] = rctx.URLParams.Values[i]
				}
			}
			next.ServeHTTP(w, req.WithContext(WithCurrent(req.Context(), current)))
		})
	}
}

// Handler wraps a handler func with Middleware.
func Handler(name, action string, h http.HandlerFunc) http.Handler {
	return Middleware(name, action)(h)
}
