// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Default menu keys
const (
	MenuMainHorizontal = "main_horizontal"
)

// ForbiddenMenuKeys can never be used as a menu group name.
var ForbiddenMenuKeys = []string{"", "0"}

// Target identifies the route a menu entry links to.
type Target struct {
	Presenter string            `json:"presenter"`
	Action    string            `json:"action"`
	Params    map[string]string `json:"params,omitempty"`
}

// Param returns a target parameter, or "" when absent.
func (t *Target) Param(key string) (string, bool) {
	if t == nil || t.Params == nil {
		return "", false
	}
	v, ok := t.Params[key]
	return v, ok
}

// MenuEntry represents one navigation item of a menu group.
type MenuEntry struct {
	ID        int64     `json:"id"`
	MenuKey   string    `json:"menu_key"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"is_active"`
	Target    *Target   `json:"target,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTopLevel returns true if the entry has no parent.
func (e MenuEntry) IsTopLevel() bool {
	return e.ParentID == nil
}

// IsGroup returns true for top-level entries without a link of their own.
func (e MenuEntry) IsGroup() bool {
	return e.ParentID == nil && e.Target == nil
}

// IsForbiddenMenuKey checks if a menu key is reserved.
func IsForbiddenMenuKey(key string) bool {
	for _, k := range ForbiddenMenuKeys {
		if k == key {
			return true
		}
	}
	return false
}
