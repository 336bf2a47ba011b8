// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager used for flash messages.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

const flashKey = "flash"

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next page view.
type Flash struct {
	Kind    string
	Message string
}

// New creates a session manager. SQLite databases keep sessions in the
// sessions table, other drivers in process memory.
func New(db *sql.DB, driver string, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if driver == "sqlite" && db != nil {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Name = "sitekit_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}

// SetFlash stores a flash message for the next request.
func SetFlash(ctx context.Context, sm *scs.SessionManager, f Flash) {
	sm.Put(ctx, flashKey+".kind", f.Kind)
	sm.Put(ctx, flashKey+".message", f.Message)
}

// PopFlash returns and removes the pending flash message.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (Flash, bool) {
	msg := sm.PopString(ctx, flashKey+".message")
	kind := sm.PopString(ctx, flashKey+".kind")
	if msg == "" {
		return Flash{}, false
	}
	return Flash{Kind: kind, Message: msg}, true
}
