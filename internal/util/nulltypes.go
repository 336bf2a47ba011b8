// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions.
package util

import (
	"database/sql"
	"time"
)

// NullInt64FromPtr converts a pointer to int64 into sql.NullInt64.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr != nil {
		return sql.NullInt64{Int64: *ptr, Valid: true}
	}
	return sql.NullInt64{}
}

// Int64Ptr converts sql.NullInt64 back into a pointer, nil when invalid.
func Int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// NullStringFromValue returns a valid NullString only for non-empty strings.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullTimeFromPtr converts a pointer to time.Time into sql.NullTime.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr != nil {
		return sql.NullTime{Time: *ptr, Valid: true}
	}
	return sql.NullTime{}
}

// TimePtr converts sql.NullTime back into a pointer, nil when invalid.
func TimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
