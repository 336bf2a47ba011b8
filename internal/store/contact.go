// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/util"
)

// ContactRepository stores contact form submissions.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a ContactRepository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create stores m and sets its ID and creation time.
func (r *ContactRepository) Create(ctx context.Context, m *model.ContactMessage) error {
	now := dbTime(time.Now())
	query, args, err := psql.Insert("contact_messages").
		Columns("name", "email", "phone", "message", "remote_ip", "created_at").
		Values(m.Name, m.Email, util.NullStringFromValue(m.Phone), m.Message, util.NullStringFromValue(m.RemoteIP), now).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting contact message: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading contact message id: %w", err)
	}
	m.CreatedAt = now
	return nil
}

// Recent returns the newest messages.
func (r *ContactRepository) Recent(ctx context.Context, limit uint64) ([]model.ContactMessage, error) {
	query, args, err := psql.Select("id", "name", "email", "phone", "message", "remote_ip", "created_at").
		From("contact_messages").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ContactMessage
	for rows.Next() {
		var (
			m         model.ContactMessage
			phone, ip sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &phone, &m.Message, &ip, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		m.Phone, m.RemoteIP = phone.String, ip.String
		out = append(out, m)
	}
	return out, rows.Err()
}
