// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides the SQL data layer: connections, migrations and
// repositories.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrations embed.FS

// Supported drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// psql builds queries with "?" placeholders, understood by both drivers.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DBConfig holds database configuration options.
type DBConfig struct {
	Driver string // DriverSQLite or DriverMySQL
	// DSN is a file path for SQLite and a go-sql-driver DSN for MySQL.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns sensible defaults for SQLite.
func DefaultDBConfig(path string) DBConfig {
	return DBConfig{
		Driver: DriverSQLite,
		DSN:    path,
		// WAL allows many readers and a single writer
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// sqlitePragmas are applied to every pooled connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"temp_store(MEMORY)",
}

// NewDB opens a SQLite database with default settings.
func NewDB(path string) (*sql.DB, error) {
	return Open(DefaultDBConfig(path))
}

// Open opens and verifies a database connection.
func Open(cfg DBConfig) (*sql.DB, error) {
	dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func driverDSN(cfg DBConfig) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.DSN == "" {
			return "", errors.New("sqlite path is required")
		}
		q := url.Values{}
		for _, p := range sqlitePragmas {
			q.Add("_pragma", p)
		}
		q.Set("_time_format", "sqlite")
		sep := "?"
		if strings.Contains(cfg.DSN, "?") {
			sep = "&"
		}
		return cfg.DSN + sep + q.Encode(), nil
	case DriverMySQL:
		mc, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("parsing mysql dsn: %w", err)
		}
		mc.ParseTime = true
		// RowsAffected counts matched rows, as in SQLite
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate runs all pending migrations of the driver's dialect.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if driver == DriverMySQL {
		dialect, dir = goose.DialectMySQL, "migrations/mysql"
	}

	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// dbTime normalises a timestamp before it is written, so stored values
// compare correctly as text in SQLite.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
