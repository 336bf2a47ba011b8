// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/content"
	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/menu"
	"github.com/olegiv/sitekit/internal/middleware"
	"github.com/olegiv/sitekit/internal/render"
	"github.com/olegiv/sitekit/internal/route"
	"github.com/olegiv/sitekit/internal/scheduler"
	"github.com/olegiv/sitekit/internal/seo"
	"github.com/olegiv/sitekit/internal/snippet"
	"github.com/olegiv/sitekit/internal/store"
	"github.com/olegiv/sitekit/internal/testutil"
	"github.com/olegiv/sitekit/web"
)

const testAdminToken = "test-admin-token-0123456789abcdefghij"

// testProxy is the trusted reverse proxy range of the test site.
const testProxy = "203.0.113.0/24"

var testNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

// testSite is a fully wired site over a seeded SQLite database.
type testSite struct {
	db       *sql.DB
	router   http.Handler
	frontend *FrontendHandler
	caches   *cache.Manager
	menus    *menu.Service
	articles *store.ArticleRepository
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	ctx := context.Background()
	logger := testutil.TestLoggerSilent()

	db := testutil.TestDB(t)
	require.NoError(t, store.Seed(ctx, db))
	require.NoError(t, store.SeedDemo(ctx, db, testNow))

	backend := cache.NewSimpleMemoryCache(time.Minute)
	caches := cache.NewManager(backend, cache.BackendMemory, store.NewConfigurationRepository(db))
	t.Cleanup(func() { _ = caches.Close() })

	links := route.NewBuilder()
	galleries := store.NewGalleryRepository(db)
	calendar := store.NewCalendarRepository(db)
	now := func() time.Time { return testNow }

	registry := macro.NewRegistry()
	require.NoError(t, snippet.Register(registry, snippet.Deps{
		Galleries: galleries,
		Calendar:  calendar,
		Settings:  caches.Config,
		Links:     links,
		Now:       now,
	}))
	expander := macro.New(macro.DefaultAllowlist(), registry, macro.WithLogger(logger))

	menuRepo := store.NewMenuRepository(db)
	menus := menu.NewService(
		menuRepo,
		menu.NewResolver(links, menu.WithResolverLogger(logger)),
		menu.WithCache(backend, time.Minute),
		menu.WithLogger(logger),
	)
	menuRepo.OnChange(menus.Invalidate)

	articles := store.NewArticleRepository(db)
	contacts := store.NewContactRepository(db)
	pipeline := content.NewPipeline(expander)
	assets := content.NewAssets(articles, pipeline, backend, logger)
	articles.OnChange(assets.Invalidate)

	trusted, err := middleware.ParseTrustedProxies([]string{testProxy})
	require.NoError(t, err)

	sessions := scs.New()
	renderer, err := render.New(render.Config{TemplatesFS: web.TemplatesFS(), SessionManager: sessions, Now: now})
	require.NoError(t, err)

	frontend := NewFrontendHandler(FrontendDeps{
		Articles:    articles,
		Galleries:   galleries,
		Contacts:    contacts,
		Navigation:  menus,
		Content:     pipeline,
		Assets:      assets,
		Settings:    caches.Config,
		Links:       links,
		Calendar:    snippet.NewCalendar(calendar, links, now),
		ContactForm: snippet.NewContactForm(caches.Config, links),
		Renderer:    renderer,
		Sessions:    sessions,
		Logger:      logger,
	})

	jobs := scheduler.New(logger)
	require.NoError(t, jobs.Add(scheduler.RetentionJob(store.NewEventLogRepository(db), 30*24*time.Hour, now, logger)))
	require.NoError(t, jobs.Add(scheduler.ConfigPreloadJob(caches.Config, "@every 10m")))

	router := NewRouter(RouterConfig{
		Frontend:       frontend,
		Health:         NewHealthHandler(db, PingerFunc(caches.Ping), cache.BackendMemory, testAdminToken, "test"),
		Cache:          NewCacheHandler(caches, menus, logger),
		Jobs:           NewJobsHandler(jobs, logger),
		Activity:       NewActivityHandler(store.NewEventLogRepository(db), contacts, logger),
		Sessions:       sessions,
		CSRF:           middleware.DefaultCSRFConfig(nil, false, ""),
		Security:       middleware.DefaultSecurityHeadersConfig(false),
		ContactLimiter: middleware.NewClientRateLimiter(0.01, 3),
		AdminToken:     testAdminToken,
		RequestTimeout: 5 * time.Second,
		Static:         web.StaticFS(),
		Robots:         seo.BuildRobots(seo.RobotsConfig{}),
		TrustedProxies: trusted,
	})

	return &testSite{db: db, router: router, frontend: frontend, caches: caches, menus: menus, articles: articles}
}

func (s *testSite) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func contactRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validContact() url.Values {
	return url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"phone":   {"+1 555 0100"},
		"message": {"Is the house free in June?"},
	}
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

// activeLabels returns the labels of active menu items in document order.
func activeLabels(doc *goquery.Document) []string {
	var labels []string
	doc.Find("nav.menu li.active").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.ChildrenFiltered(".menu__link").First().Text()))
	})
	return labels
}
