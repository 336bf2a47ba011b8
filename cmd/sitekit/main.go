// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/config"
	"github.com/olegiv/sitekit/internal/content"
	"github.com/olegiv/sitekit/internal/handler"
	"github.com/olegiv/sitekit/internal/logging"
	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/menu"
	"github.com/olegiv/sitekit/internal/middleware"
	"github.com/olegiv/sitekit/internal/render"
	"github.com/olegiv/sitekit/internal/route"
	"github.com/olegiv/sitekit/internal/scheduler"
	"github.com/olegiv/sitekit/internal/seo"
	"github.com/olegiv/sitekit/internal/session"
	"github.com/olegiv/sitekit/internal/snippet"
	"github.com/olegiv/sitekit/internal/store"
	"github.com/olegiv/sitekit/internal/version"
	"github.com/olegiv/sitekit/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Sitekit - menu driven site with content macros\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_DB_DRIVER      sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_DB_PATH        SQLite database path (default: ./data/sitekit.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_DB_DSN         MySQL DSN\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_SERVER_PORT    Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_ENV            development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_REDIS_URL      Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_ADMIN_TOKEN    Bearer token for /-/ endpoints (optional, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_TRUSTED_PROXIES Proxy addresses or CIDRs allowed to set X-Forwarded-For\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_DEMO_MODE      Seed demo menus, articles and galleries\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
	slog.SetDefault(logger)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	ctx := context.Background()
	slog.Info("running database migrations", "driver", cfg.DBDriver)
	if err := store.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also land in the event log from here on
	events := store.NewEventLogRepository(db)
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), events))
	slog.SetDefault(logger)

	if cfg.DoSeed || cfg.DemoMode {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}
	if cfg.DemoMode {
		if err := store.SeedDemo(ctx, db, time.Now()); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	backend, backendName, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    cfg.CacheMaxSize,
	}, true)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	caches := cache.NewManager(backend, backendName, store.NewConfigurationRepository(db))
	defer func() { _ = caches.Close() }()
	if err := caches.Config.Preload(ctx); err != nil {
		slog.Warn("failed to preload configuration", "error", err)
	}
	slog.Info("cache initialized", "backend", backendName)

	links := route.NewBuilder()
	galleries := store.NewGalleryRepository(db)
	calendar := store.NewCalendarRepository(db)

	registry := macro.NewRegistry()
	if err := snippet.Register(registry, snippet.Deps{
		Galleries: galleries,
		Calendar:  calendar,
		Settings:  caches.Config,
		Links:     links,
	}); err != nil {
		return fmt.Errorf("registering snippets: %w", err)
	}
	expander := macro.New(macro.DefaultAllowlist(), registry, macro.WithLogger(logger))

	menuRepo := store.NewMenuRepository(db)
	menus := menu.NewService(
		menuRepo,
		menu.NewResolver(links, menu.WithResolverLogger(logger)),
		menu.WithCache(backend, cfg.CacheTTLDuration()),
		menu.WithLogger(logger),
	)
	menuRepo.OnChange(menus.Invalidate)

	articles := store.NewArticleRepository(db)
	contacts := store.NewContactRepository(db)
	pipeline := content.NewPipeline(expander)
	assets := content.NewAssets(articles, pipeline, backend, logger)
	articles.OnChange(assets.Invalidate)

	sessions := session.New(db, cfg.DBDriver, cfg.IsDevelopment())
	renderer, err := render.New(render.Config{TemplatesFS: web.TemplatesFS(), SessionManager: sessions})
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	frontend := handler.NewFrontendHandler(handler.FrontendDeps{
		Articles:    articles,
		Galleries:   galleries,
		Contacts:    contacts,
		Navigation:  menus,
		Content:     pipeline,
		Assets:      assets,
		Settings:    caches.Config,
		Links:       links,
		Calendar:    snippet.NewCalendar(calendar, links, time.Now),
		ContactForm: snippet.NewContactForm(caches.Config, links),
		Renderer:    renderer,
		Sessions:    sessions,
		MenuKey:     cfg.MenuKey,
		SiteURL:     cfg.SiteURL,
		NoIndex:     cfg.NoIndex,
		Logger:      logger,
	})

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parsing SITEKIT_TRUSTED_PROXIES: %w", err)
	}

	jobs := scheduler.New(logger)
	retention := time.Duration(cfg.EventLogRetentionDays) * 24 * time.Hour
	if err := jobs.Add(scheduler.RetentionJob(events, retention, time.Now, logger)); err != nil {
		return err
	}
	if err := jobs.Add(scheduler.ConfigPreloadJob(caches.Config, cfg.ConfigPreloadSchedule)); err != nil {
		return err
	}
	jobs.Start()

	router := handler.NewRouter(handler.RouterConfig{
		Frontend:       frontend,
		Health:         handler.NewHealthHandler(db, handler.PingerFunc(caches.Ping), backendName, cfg.AdminToken, version.Get().Version),
		Cache:          handler.NewCacheHandler(caches, menus, logger),
		Jobs:           handler.NewJobsHandler(jobs, logger),
		Activity:       handler.NewActivityHandler(events, contacts, logger),
		Sessions:       sessions,
		CSRF:           middleware.DefaultCSRFConfig(nil, cfg.IsDevelopment(), cfg.ServerAddr()),
		Security:       middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
		ContactLimiter: middleware.NewClientRateLimiter(cfg.ContactRate, cfg.ContactBurst),
		AdminToken:     cfg.AdminToken,
		RequestTimeout: cfg.RequestTimeout,
		Static:         web.StaticFS(),
		Robots:         seo.BuildRobots(seo.RobotsConfig{DisallowAll: cfg.NoIndex}),
		TrustedProxies: trustedProxies,
		RequestLog:     cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		jobs.Stop(ctx)
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dbCfg := store.DefaultDBConfig(cfg.DatabaseDSN())
	dbCfg.Driver = cfg.DBDriver

	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("opening database", "driver", cfg.DBDriver)
	db, err := store.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
