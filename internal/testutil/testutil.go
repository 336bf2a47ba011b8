// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the sitekit project.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a file-backed SQLite database in a temp dir with all
// migrations applied. It is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "sitekit-test.db"))
	require.NoError(t, err, "NewDB")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(context.Background(), db, store.DriverSQLite), "Migrate")
	return db
}

var memoryDBSeq atomic.Int64

// MemoryDB creates an in-memory SQLite database through the cgo driver with
// all migrations applied. Each call gets its own database.
func MemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sitekit-mem-%d?mode=memory&cache=shared&_foreign_keys=1", memoryDBSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err, "opening in-memory database")
	// one connection keeps the shared in-memory database alive
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(context.Background(), db, store.DriverSQLite), "Migrate")
	return db
}

// MockDB creates a sqlmock database matching queries verbatim. Unmet
// expectations fail the test on cleanup.
func MockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err, "creating mock database")
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}
