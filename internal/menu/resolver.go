// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"errors"
	"log/slog"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/route"
)

// LinkBuilder turns a route target into a URL.
type LinkBuilder interface {
	BuildLink(name, action string, params map[string]string) (string, error)
}

// Node is a resolved menu item ready for templates.
type Node struct {
	ID       int64
	Label    string
	Link     string
	IsParent bool
	IsActive bool
	Disabled bool // link could not be resolved, render as inert text
	Children []Node
}

// Resolver computes links and active flags for a Structure.
type Resolver struct {
	links      LinkBuilder
	categories map[string]bool
	logger     *slog.Logger
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCategoryRoutes replaces the set of routes whose leaves are active for
// any action and params of that route.
func WithCategoryRoutes(names ...string) ResolverOption {
	return func(r *Resolver) {
		r.categories = make(map[string]bool, len(names))
		for _, n := range names {
			r.categories[n] = true
		}
	}
}

// WithResolverLogger sets the logger used for link failures.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. The gallery route is a category by default.
func NewResolver(links LinkBuilder, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		links:      links,
		categories: map[string]bool{model.RouteGallery: true},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces one node per top-level entry of st.
func (r *Resolver) Resolve(st Structure, current model.Route) []Node {
	nodes := make([]Node, 0, len(st.Branches))
	for _, b := range st.Branches {
		if !b.Entry.IsGroup() {
			nodes = append(nodes, r.leaf(b.Entry, current))
			continue
		}

		parent := Node{
			ID:       b.Entry.ID,
			Label:    b.Entry.Label,
			IsParent: true,
			Children: make([]Node, 0, len(b.Children)),
		}
		for _, child := range b.Children {
			n := r.leaf(child, current)
			if n.IsActive {
				parent.IsActive = true
			}
			parent.Children = append(parent.Children, n)
		}
		nodes = append(nodes, parent)
	}
	return nodes
}

func (r *Resolver) leaf(e model.MenuEntry, current model.Route) Node {
	n := Node{ID: e.ID, Label: e.Label}
	if e.Target == nil {
		// A child without target has nowhere to go.
		n.Disabled = true
		return n
	}

	n.IsActive = r.IsActive(e.Target, current)

	link, err := r.links.BuildLink(e.Target.Presenter, e.Target.Action, e.Target.Params)
	if err != nil {
		var lre *route.LinkResolutionError
		if !errors.As(err, &lre) {
			r.logger.Warn("menu link builder failed", "entry_id", e.ID, "error", err)
		} else {
			r.logger.Debug("menu link not resolvable", "entry_id", e.ID, "reason", lre.Reason)
		}
		n.Disabled = true
		return n
	}
	n.Link = link
	return n
}

// IsActive reports whether a target matches the current route.
func (r *Resolver) IsActive(t *model.Target, current model.Route) bool {
	if t == nil || current.Name == "" || t.Presenter != current.Name {
		return false
	}
	if r.categories[t.Presenter] {
		return true
	}

	action := t.Action
	if action == "" {
		action = model.ActionDefault
	}
	if action != current.Action {
		return false
	}

	if slug, ok := t.Param("slug"); ok {
		currentSlug, ok := current.Param("slug")
		return ok && currentSlug == slug
	}
	return true
}
