// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the sitekit frontend.
package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers, so no
// token is rendered into forms.
type CSRFConfig struct {
	// AuthKey is kept for API compatibility with gorilla/csrf.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig. In development the server address
// and its localhost aliases are trusted.
func DefaultCSRFConfig(authKey []byte, isDev bool, serverAddr string) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		// csrf expects host-only values, not full URLs
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
		if serverAddr != "" && serverAddr != "localhost:8080" && serverAddr != "127.0.0.1:8080" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, serverAddr)
		}
	}
	return cfg
}

// CSRF returns a middleware rejecting cross-site unsafe requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
