// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/olegiv/sitekit/internal/model"
)

// Calendar constants
const (
	EventStatusConfirmed = "confirmed"
	EventTypeBlocking    = "blocking"
	EventTypeGeneral     = "general"
	blockingEventTitle   = "Blocked"
)

// CalendarRepository reads calendar events and manages blocked days.
type CalendarRepository struct {
	db *sql.DB
}

// NewCalendarRepository creates a CalendarRepository.
func NewCalendarRepository(db *sql.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func occurrenceQuery(from, to time.Time) sq.SelectBuilder {
	return psql.Select().
		From("event_occurrences eo").
		Join("events e ON e.id = eo.event_id").
		Join("event_types et ON et.id = e.event_type_id").
		Where(sq.Eq{"e.status": EventStatusConfirmed}).
		Where(sq.LtOrEq{"eo.starts_at": dbTime(to)}).
		Where(sq.GtOrEq{"eo.ends_at": dbTime(from)})
}

// BinaryDays returns the UTC days between from and to covered by a confirmed
// event whose type blocks capacity.
func (r *CalendarRepository) BinaryDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	query, args, err := occurrenceQuery(from, to).
		Columns("eo.starts_at", "eo.ends_at").
		Where(sq.Eq{"et.blocks_capacity": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading blocked days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lo, hi := day(from), day(to)
	seen := map[time.Time]bool{}
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scanning occurrence: %w", err)
		}
		for d := day(start); !d.After(day(end)); d = d.AddDate(0, 0, 1) {
			if !d.Before(lo) && !d.After(hi) {
				seen[d] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// Events returns confirmed event occurrences overlapping the range.
func (r *CalendarRepository) Events(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	query, args, err := occurrenceQuery(from, to).
		Columns("e.id", "e.title", "COALESCE(e.color_override, et.color)", "eo.starts_at", "eo.ends_at").
		OrderBy("eo.starts_at", "e.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CalendarEvent
	for rows.Next() {
		var ev model.CalendarEvent
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Color, &ev.StartsAt, &ev.EndsAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CreateEvent stores a confirmed event with one occurrence.
func (r *CalendarRepository) CreateEvent(ctx context.Context, typeSlug string, ev *model.CalendarEvent) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		typeID, err := eventTypeID(ctx, tx, typeSlug)
		if err != nil {
			return err
		}
		id, err := insertEvent(ctx, tx, typeID, ev.Title, ev.Color, ev.StartsAt, ev.EndsAt)
		if err != nil {
			return err
		}
		ev.ID = id
		return nil
	})
}

// ToggleBlockingDay blocks the UTC day of d, or unblocks it when already
// blocked. It returns whether the day is blocked afterwards.
func (r *CalendarRepository) ToggleBlockingDay(ctx context.Context, d time.Time) (bool, error) {
	start := day(d)
	end := start.Add(24*time.Hour - time.Second)

	var blocked bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		typeID, err := eventTypeID(ctx, tx, EventTypeBlocking)
		if err != nil {
			return err
		}

		query, args, err := psql.Select("e.id").
			From("events e").
			Join("event_occurrences eo ON eo.event_id = e.id").
			Where(sq.Eq{"e.event_type_id": typeID, "eo.starts_at": dbTime(start), "eo.ends_at": dbTime(end)}).
			Limit(1).
			ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}

		var existing int64
		err = tx.QueryRowContext(ctx, query, args...).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = insertEvent(ctx, tx, typeID, blockingEventTitle, "", start, end)
			blocked = true
			return err
		case err != nil:
			return fmt.Errorf("looking up blocked day: %w", err)
		}

		for _, table := range []struct{ name, col string }{
			{"event_occurrences", "event_id"},
			{"events", "id"},
		} {
			query, args, err := psql.Delete(table.name).Where(sq.Eq{table.col: existing}).ToSql()
			if err != nil {
				return fmt.Errorf("building query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("unblocking day: %w", err)
			}
		}
		blocked = false
		return nil
	})
	return blocked, err
}

func eventTypeID(ctx context.Context, tx *sql.Tx, slug string) (int64, error) {
	query, args, err := psql.Select("id").From("event_types").
		Where(sq.Eq{"slug": slug, "is_active": true}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("event type %q: %w", slug, ErrNotFound)
		}
		return 0, fmt.Errorf("loading event type %q: %w", slug, err)
	}
	return id, nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, typeID int64, title, color string, start, end time.Time) (int64, error) {
	var colorOverride sql.NullString
	if color != "" {
		colorOverride = sql.NullString{String: color, Valid: true}
	}
	query, args, err := psql.Insert("events").
		Columns("event_type_id", "title", "status", "color_override", "created_at").
		Values(typeID, title, EventStatusConfirmed, colorOverride, dbTime(time.Now())).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading event id: %w", err)
	}

	query, args, err = psql.Insert("event_occurrences").
		Columns("event_id", "starts_at", "ends_at").
		Values(id, dbTime(start), dbTime(end)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("inserting occurrence: %w", err)
	}
	return id, nil
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
