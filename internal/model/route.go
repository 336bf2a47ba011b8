// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Route names
const (
	RouteHome     = "Home"
	RouteArticle  = "Article"
	RouteGallery  = "Gallery"
	RouteCalendar = "Calendar"
	RouteContact  = "Contact"
)

// Route actions
const (
	ActionDefault = "default"
	ActionView    = "view"
)

// Route is a snapshot of the route identity of an in-flight request.
type Route struct {
	Name   string
	Action string
	Params map[string]string
}

// Param returns a route parameter.
func (r Route) Param(key string) (string, bool) {
	if r.Params == nil {
		return "", false
	}
	v, ok := r.Params[key]
	return v, ok
}

// Is reports whether the route has the given name and action.
func (r Route) Is(name, action string) bool {
	return r.Name == name && r.Action == action
}
