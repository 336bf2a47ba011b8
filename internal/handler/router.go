// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"net/netip"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/sitekit/internal/middleware"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/route"
)

// Route paths
const (
	RouteRoot         = "/"
	RouteArticle      = "/{slug}"
	RouteGallery      = "/gallery"
	RouteGalleryView  = "/gallery/{id}"
	RouteCalendar     = "/calendar"
	RouteContact      = "/contact"
	RouteHealth       = "/health"
	RouteHealthLive   = "/health/live"
	RouteCacheClear   = "/-/cache/clear"
	RouteCacheStats   = "/-/cache/stats"
	RouteCacheMenus   = "/-/cache/menus"
	RouteCacheMenu    = "/-/cache/menus/{key}"
	RouteEvents       = "/-/events"
	RouteContactLog   = "/-/contact-messages"
	RouteJobs         = "/-/jobs"
	RouteJobRun       = "/-/jobs/{name}/run"
	RouteStatic       = "/static/*"
	RouteRobots       = "/robots.txt"
	staticPrefix      = "/static/"
	staticCacheMaxAge = 31536000
)

// RouterConfig wires the handlers and middleware of the site.
type RouterConfig struct {
	Frontend       *FrontendHandler
	Health         *HealthHandler
	Cache          *CacheHandler
	Jobs           *JobsHandler
	Activity       *ActivityHandler
	Sessions       *scs.SessionManager
	CSRF           middleware.CSRFConfig
	Security       middleware.SecurityHeadersConfig
	ContactLimiter *middleware.ClientRateLimiter
	AdminToken     string
	RequestTimeout time.Duration
	Static         fs.FS  // served under /static/
	Robots         string // robots.txt body, see seo.BuildRobots
	TrustedProxies []netip.Prefix
	RequestLog     bool
}

// NewRouter builds the site router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(cfg.TrustedProxies))
	if cfg.RequestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(cfg.Security))

	if cfg.Static != nil {
		static := middleware.StaticCache(staticCacheMaxAge)(http.StripPrefix(staticPrefix, http.FileServer(http.FS(cfg.Static))))
		r.Handle(RouteStatic, static)
	}

	if cfg.Robots != "" {
		r.Get(RouteRobots, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "public, max-age=3600")
			_, _ = w.Write([]byte(cfg.Robots))
		})
	}

	if cfg.Health != nil {
		r.Get(RouteHealth, cfg.Health.Health)
		r.Get(RouteHealthLive, cfg.Health.Liveness)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(cfg.AdminToken))
		if cfg.Cache != nil {
			r.Get(RouteCacheStats, cfg.Cache.Stats)
			r.Post(RouteCacheClear, cfg.Cache.Clear)
			r.Get(RouteCacheMenus, cfg.Cache.Menus)
			r.Post(RouteCacheMenu, cfg.Cache.InvalidateMenu)
		}
		if cfg.Activity != nil {
			r.Get(RouteEvents, cfg.Activity.Events)
			r.Get(RouteContactLog, cfg.Activity.ContactMessages)
		}
		if cfg.Jobs != nil {
			r.Get(RouteJobs, cfg.Jobs.List)
			r.Post(RouteJobRun, cfg.Jobs.Run)
		}
	})

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(cfg.Sessions.LoadAndSave)
		}
		r.Use(middleware.CSRF(cfg.CSRF))

		h := cfg.Frontend
		r.Method(http.MethodGet, RouteRoot, route.Handler(model.RouteHome, model.ActionDefault, h.Home))
		r.Method(http.MethodGet, RouteGallery, route.Handler(model.RouteGallery, model.ActionDefault, h.GalleryIndex))
		r.Method(http.MethodGet, RouteGalleryView, route.Handler(model.RouteGallery, model.ActionView, h.GalleryShow))
		r.Method(http.MethodGet, RouteCalendar, route.Handler(model.RouteCalendar, model.ActionDefault, h.CalendarMonth))
		r.Method(http.MethodGet, RouteContact, route.Handler(model.RouteContact, model.ActionDefault, h.Contact))

		submit := route.Handler(model.RouteContact, model.ActionDefault, h.SubmitContact)
		if cfg.ContactLimiter != nil {
			submit = cfg.ContactLimiter.Middleware(submit)
		}
		r.Method(http.MethodPost, RouteContact, submit)

		r.Method(http.MethodGet, RouteArticle, route.Handler(model.RouteArticle, model.ActionDefault, h.Article))
		r.NotFound(h.NotFound)
	})

	return r
}
