// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/olegiv/sitekit/internal/model"
)

// ConfigurationRepository reads and writes the key/value site configuration.
type ConfigurationRepository struct {
	db *sql.DB
}

// NewConfigurationRepository creates a ConfigurationRepository.
func NewConfigurationRepository(db *sql.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// All returns configuration rows ordered by category and key.
func (r *ConfigurationRepository) All(ctx context.Context, onlyActive bool) ([]model.ConfigItem, error) {
	q := psql.Select("config_key", "value", "category", "active").
		From("configuration").
		OrderBy("category", "config_key")
	if onlyActive {
		q = q.Where(sq.Eq{"active": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing configuration: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ConfigItem
	for rows.Next() {
		var it model.ConfigItem
		if err := rows.Scan(&it.Key, &it.Value, &it.Category, &it.Active); err != nil {
			return nil, fmt.Errorf("scanning configuration: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Set inserts or replaces one configuration row.
func (r *ConfigurationRepository) Set(ctx context.Context, it model.ConfigItem) error {
	if it.Key == "" {
		return fmt.Errorf("configuration key is required")
	}
	if it.Category == "" {
		it.Category = "general"
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := psql.Select("COUNT(*)").From("configuration").Where(sq.Eq{"config_key": it.Key}).ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		var n int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return fmt.Errorf("checking configuration %q: %w", it.Key, err)
		}

		var stmt sq.Sqlizer
		if n == 0 {
			stmt = psql.Insert("configuration").
				Columns("config_key", "value", "category", "active").
				Values(it.Key, it.Value, it.Category, it.Active)
		} else {
			stmt = psql.Update("configuration").
				SetMap(map[string]any{"value": it.Value, "category": it.Category, "active": it.Active}).
				Where(sq.Eq{"config_key": it.Key})
		}
		query, args, err = stmt.ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving configuration %q: %w", it.Key, err)
		}
		return nil
	})
}
