// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategorySystem = "system"
	EventCategoryMacro  = "macro"
	EventCategoryMenu   = "menu"
	EventCategoryCache  = "cache"
)

// Event represents a persisted log entry.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}

// CalendarEvent is one confirmed event occurrence shown on the calendar.
type CalendarEvent struct {
	ID       int64
	Title    string
	Color    string
	StartsAt time.Time
	EndsAt   time.Time
}

// ContactMessage is a submitted contact form.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
