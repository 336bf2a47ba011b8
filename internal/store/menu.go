// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/util"
)

// ErrInvalidMenuEntry is returned for entries that would break the menu tree.
var ErrInvalidMenuEntry = errors.New("store: invalid menu entry")

var menuColumns = []string{
	"id", "menu_key", "parent_id", "label", "position", "is_active",
	"presenter", "action", "params", "created_at", "updated_at",
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// MenuRepository reads and writes menu entries.
type MenuRepository struct {
	db       *sql.DB
	onChange ChangeHook
}

// NewMenuRepository creates a MenuRepository.
func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// OnChange registers a hook called with the menu key after an entry of that
// menu is created, updated or deleted. menu.Service.Invalidate fits it.
func (r *MenuRepository) OnChange(hook ChangeHook) {
	r.onChange = hook
}

// FindKeys returns the distinct menu keys in order.
func (r *MenuRepository) FindKeys(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("DISTINCT menu_key").From("menus").OrderBy("menu_key").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing menu keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning menu key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// FindByKey returns the entries of one menu ordered by parent and position.
func (r *MenuRepository) FindByKey(ctx context.Context, menuKey string, onlyActive bool) ([]model.MenuEntry, error) {
	q := psql.Select(menuColumns...).
		From("menus").
		Where(sq.Eq{"menu_key": menuKey}).
		OrderBy("parent_id", "position", "id")
	if onlyActive {
		q = q.Where(sq.Eq{"is_active": true})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing menu %q: %w", menuKey, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.MenuEntry
	for rows.Next() {
		e, err := scanMenuEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByID returns one entry.
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (model.MenuEntry, error) {
	query, args, err := psql.Select(menuColumns...).From("menus").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.MenuEntry{}, fmt.Errorf("building query: %w", err)
	}

	e, err := scanMenuEntry(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuEntry{}, ErrNotFound
	}
	return e, err
}

// Create inserts e and sets its ID and timestamps.
func (r *MenuRepository) Create(ctx context.Context, e *model.MenuEntry) error {
	if err := r.validate(ctx, e); err != nil {
		return err
	}
	params, err := encodeParams(e.Target)
	if err != nil {
		return err
	}

	now := dbTime(time.Now())
	presenter, action := targetColumns(e.Target)
	query, args, err := psql.Insert("menus").
		Columns("menu_key", "parent_id", "label", "position", "is_active", "presenter", "action", "params", "created_at", "updated_at").
		Values(e.MenuKey, util.NullInt64FromPtr(e.ParentID), e.Label, e.Position, e.IsActive, presenter, action, params, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting menu entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading menu entry id: %w", err)
	}
	e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
	notify(ctx, r.onChange, "menu", e.MenuKey)
	return nil
}

// Update saves every field of e except the menu key and creation time.
func (r *MenuRepository) Update(ctx context.Context, e *model.MenuEntry) error {
	stored, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	e.MenuKey = stored.MenuKey
	if err := r.validate(ctx, e); err != nil {
		return err
	}
	params, err := encodeParams(e.Target)
	if err != nil {
		return err
	}

	now := dbTime(time.Now())
	presenter, action := targetColumns(e.Target)
	query, args, err := psql.Update("menus").
		SetMap(map[string]any{
			"parent_id":  util.NullInt64FromPtr(e.ParentID),
			"label":      e.Label,
			"position":   e.Position,
			"is_active":  e.IsActive,
			"presenter":  presenter,
			"action":     action,
			"params":     params,
			"updated_at": now,
		}).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating menu entry %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	e.UpdatedAt = now
	notify(ctx, r.onChange, "menu", e.MenuKey)
	return nil
}

// Delete removes an entry and, through the foreign key, its children.
// Deleting a missing entry is not an error.
func (r *MenuRepository) Delete(ctx context.Context, id int64) error {
	stored, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	query, args, err := psql.Delete("menus").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting menu entry %d: %w", id, err)
	}
	notify(ctx, r.onChange, "menu", stored.MenuKey)
	return nil
}

// validate enforces the two-level shape: a parent must be a top-level
// grouping entry of the same menu.
func (r *MenuRepository) validate(ctx context.Context, e *model.MenuEntry) error {
	if model.IsForbiddenMenuKey(e.MenuKey) {
		return fmt.Errorf("%w: forbidden menu key %q", ErrInvalidMenuEntry, e.MenuKey)
	}
	if e.Label == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidMenuEntry)
	}
	if e.ParentID == nil {
		return nil
	}
	if e.ID != 0 && *e.ParentID == e.ID {
		return fmt.Errorf("%w: entry cannot be its own parent", ErrInvalidMenuEntry)
	}

	parent, err := r.GetByID(ctx, *e.ParentID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: parent %d does not exist", ErrInvalidMenuEntry, *e.ParentID)
	}
	if err != nil {
		return err
	}
	if parent.MenuKey != e.MenuKey || !parent.IsGroup() {
		return fmt.Errorf("%w: parent %d is not a group of menu %q", ErrInvalidMenuEntry, parent.ID, e.MenuKey)
	}
	return nil
}

func scanMenuEntry(s rowScanner) (model.MenuEntry, error) {
	var (
		e                 model.MenuEntry
		parentID          sql.NullInt64
		presenter, action sql.NullString
		params            sql.NullString
	)
	err := s.Scan(&e.ID, &e.MenuKey, &parentID, &e.Label, &e.Position, &e.IsActive,
		&presenter, &action, &params, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning menu entry: %w", err)
	}

	e.ParentID = util.Int64Ptr(parentID)
	if presenter.Valid && presenter.String != "" {
		e.Target = &model.Target{Presenter: presenter.String, Action: action.String}
		if params.Valid && params.String != "" {
			if err := json.Unmarshal([]byte(params.String), &e.Target.Params); err != nil {
				return e, fmt.Errorf("decoding params of menu entry %d: %w", e.ID, err)
			}
		}
	}
	return e, nil
}

func targetColumns(t *model.Target) (sql.NullString, sql.NullString) {
	if t == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return util.NullStringFromValue(t.Presenter), util.NullStringFromValue(t.Action)
}

func encodeParams(t *model.Target) (sql.NullString, error) {
	if t == nil || len(t.Params) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(t.Params)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding menu params: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
