// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/olegiv/sitekit/internal/model"
)

// EventLogRepository persists application events.
type EventLogRepository struct {
	db *sql.DB
}

// NewEventLogRepository creates an EventLogRepository.
func NewEventLogRepository(db *sql.DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// Insert stores one event.
func (r *EventLogRepository) Insert(ctx context.Context, e model.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	query, args, err := psql.Insert("event_log").
		Columns("level", "category", "message", "metadata", "created_at").
		Values(e.Level, e.Category, e.Message, e.Metadata, dbTime(e.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// Recent returns the newest events.
func (r *EventLogRepository) Recent(ctx context.Context, limit uint64) ([]model.Event, error) {
	query, args, err := psql.Select("id", "level", "category", "message", "metadata", "created_at").
		From("event_log").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes events created before cutoff and returns how many.
func (r *EventLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := psql.Delete("event_log").Where(sq.Lt{"created_at": dbTime(cutoff)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}
