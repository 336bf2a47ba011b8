// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/sitekit/internal/util"
)

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RequireToken allows requests carrying "Authorization: Bearer <token>".
// An empty token disables the protected routes entirely.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.NotFound(w, r)
				return
			}

			given, ok := bearerToken(r)
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				slog.Warn("invalid admin token", "ip", util.ClientIP(r), "path", r.URL.Path)
				WriteJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasToken reports whether r carries the bearer token. It is always false
// for an empty token.
func HasToken(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	given, ok := bearerToken(r)
	return ok && subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, given, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	given = strings.TrimSpace(given)
	if !ok || !strings.EqualFold(scheme, "bearer") || given == "" {
		return "", false
	}
	return given, true
}
