// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"log/slog"
)

// ChangeHook is called after a successful write with each key whose cached
// views are now stale: a menu key for menus, an article title for articles.
type ChangeHook func(ctx context.Context, key string) error

// notify runs hook for every distinct non-empty key. Hook failures are logged;
// the write itself has already succeeded.
func notify(ctx context.Context, hook ChangeHook, kind string, keys ...string) {
	if hook == nil {
		return
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if err := hook(ctx, k); err != nil {
			slog.Warn("failed to invalidate cached "+kind, "key", k, "error", err)
		}
	}
}
