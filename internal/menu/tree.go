// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menu builds the navigation tree of a menu group and resolves it
// against the route of the current request.
package menu

import (
	"sort"

	"github.com/olegiv/sitekit/internal/model"
)

// Branch is one top-level entry with the children collected under it.
type Branch struct {
	Entry    model.MenuEntry   `json:"entry"`
	Children []model.MenuEntry `json:"children,omitempty"`
}

// Structure is the request-independent shape of a menu. It is what gets cached.
type Structure struct {
	MenuKey  string   `json:"menu_key"`
	Branches []Branch `json:"branches"`
}

// Size returns the number of entries placed in the structure.
func (s Structure) Size() int {
	n := len(s.Branches)
	for _, b := range s.Branches {
		n += len(b.Children)
	}
	return n
}

// Build converts a flat list of entries into a two-level structure.
//
// Entries are indexed by id first; the second pass attaches each child to its
// parent by lookup. A child is kept only when its parent is a top-level
// grouping entry of the same list, anything else is dropped.
func Build(menuKey string, entries []model.MenuEntry) Structure {
	ordered := make([]model.MenuEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	st := Structure{MenuKey: menuKey, Branches: make([]Branch, 0, len(ordered))}
	index := make(map[int64]int, len(ordered)) // entry id -> branch index

	for _, e := range ordered {
		if !e.IsTopLevel() {
			continue
		}
		index[e.ID] = len(st.Branches)
		st.Branches = append(st.Branches, Branch{Entry: e})
	}

	for _, e := range ordered {
		if e.IsTopLevel() {
			continue
		}
		i, ok := index[*e.ParentID]
		if !ok || !st.Branches[i].Entry.IsGroup() {
			continue
		}
		st.Branches[i].Children = append(st.Branches[i].Children, e)
	}

	return st
}
