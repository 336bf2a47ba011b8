// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Job names
const (
	JobEventLogRetention = "event_log_retention"
	JobConfigPreload     = "config_preload"
)

// EventPurger deletes old event log rows. store.EventLogRepository implements it.
type EventPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Preloader refreshes a cache from its source. cache.ConfigCache implements it.
type Preloader interface {
	Preload(ctx context.Context) error
}

// RetentionJob deletes event log entries older than retention once a day.
func RetentionJob(events EventPurger, retention time.Duration, now func() time.Time, logger *slog.Logger) Job {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Job{
		Name:        JobEventLogRetention,
		Description: fmt.Sprintf("Delete event log entries older than %s", retention),
		Schedule:    "@daily",
		Run: func(ctx context.Context) error {
			cutoff := now().Add(-retention)
			n, err := events.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("purging event log: %w", err)
			}
			if n > 0 {
				logger.Info("purged old events", "deleted", n, "cutoff", cutoff)
			}
			return nil
		},
	}
}

// ConfigPreloadJob reloads the site configuration cache on schedule.
func ConfigPreloadJob(config Preloader, schedule string) Job {
	return Job{
		Name:        JobConfigPreload,
		Description: "Reload the site configuration cache",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			if err := config.Preload(ctx); err != nil {
				return fmt.Errorf("preloading configuration: %w", err)
			}
			return nil
		},
	}
}
