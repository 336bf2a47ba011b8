// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package route maps named routes to URLs and tracks the route identity
// of the request being served.
package route

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/util"
)

// LinkResolutionError is returned when a route target cannot be turned into a URL.
type LinkResolutionError struct {
	Route  string
	Action string
	Reason string
}

func (e *LinkResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve link %s:%s: %s", e.Route, e.Action, e.Reason)
}

// pattern describes one entry of the route table.
type pattern struct {
	path     string   // path with {param} placeholders
	required []string // params that must be present
}

// Builder builds URLs for named routes.
type Builder struct {
	routes map[string]pattern
}

// NewBuilder creates a Builder with the site's route table.
func NewBuilder() *Builder {
	return &Builder{
		routes: map[string]pattern{
			key(model.RouteHome, model.ActionDefault):     {path: "/"},
			key(model.RouteArticle, model.ActionDefault):  {path: "/{slug}", required: []string{"slug"}},
			key(model.RouteGallery, model.ActionDefault):  {path: "/gallery"},
			key(model.RouteGallery, model.ActionView):     {path: "/gallery/{id}", required: []string{"id"}},
			key(model.RouteCalendar, model.ActionDefault): {path: "/calendar"},
			key(model.RouteContact, model.ActionDefault):  {path: "/contact"},
		},
	}
}

func key(name, action string) string {
	return name + ":" + action
}

// BuildLink returns the URL for a route. Parameters that are not part of the
// path are appended as a query string in key order.
func (b *Builder) BuildLink(name, action string, params map[string]string) (string, error) {
	if action == "" {
		action = model.ActionDefault
	}
	p, ok := b.routes[key(name, action)]
	if !ok {
		return "", &LinkResolutionError{Route: name, Action: action, Reason: "unknown route"}
	}

	used := make(map[string]bool, len(p.required))
	path := p.path
	for _, param := range p.required {
		value := params[param]
		if reason := validateParam(param, value); reason != "" {
			return "", &LinkResolutionError{Route: name, Action: action, Reason: reason}
		}
		path = strings.Replace(path, "{"+param+"}", url.PathEscape(value), 1)
		used[param] = true
	}

	var extra []string
	for k := range params {
		if !used[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return path, nil
	}
	sort.Strings(extra)
	q := url.Values{}
	for _, k := range extra {
		q.Set(k, params[k])
	}
	return path + "?" + q.Encode(), nil
}

// validateParam returns a non-empty reason when a required param is unusable.
func validateParam(name, value string) string {
	if value == "" {
		return "missing parameter " + name
	}
	switch name {
	case "slug":
		if !util.IsValidSlug(value) {
			return "invalid slug " + strconv.Quote(value)
		}
	case "id":
		if id, err := strconv.ParseInt(value, 10, 64); err != nil || id <= 0 {
			return "invalid id " + strconv.Quote(value)
		}
	}
	return ""
}
