// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package macro

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicateRenderer indicates an attempt to register a renderer key twice.
	ErrDuplicateRenderer = errors.New("macro: duplicate renderer")
	// ErrInvalidRenderer is returned for an empty key or a nil renderer.
	ErrInvalidRenderer = errors.New("macro: invalid renderer")
	// ErrInvalidAction is returned for allow-list actions outside the tag grammar.
	ErrInvalidAction = errors.New("macro: invalid action")
)

// Renderer produces the HTML fragment that replaces a macro tag.
type Renderer interface {
	Render(ctx context.Context, params Params) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, params Params) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, params Params) (string, error) {
	return f(ctx, params)
}

// Registry maps renderer keys to renderers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register binds renderer to key.
func (r *Registry) Register(key string, renderer Renderer) error {
	key = strings.TrimSpace(key)
	if key == "" || renderer == nil {
		return ErrInvalidRenderer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRenderer, key)
	}
	r.renderers[key] = renderer
	return nil
}

// Get returns the renderer bound to key.
func (r *Registry) Get(key string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[key]
	return renderer, ok
}

// Keys returns the registered keys in order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var actionPattern = regexp.MustCompile(`^[a-z0-9_]+::[a-z0-9_]+$`)

// Allowlist maps tag actions ("namespace::name") to renderer keys. It is
// immutable once built.
type Allowlist struct {
	actions map[string]string
}

// NewAllowlist builds an allow-list. Actions are matched case-insensitively.
func NewAllowlist(entries map[string]string) (Allowlist, error) {
	a := Allowlist{actions: make(map[string]string, len(entries))}
	for action, key := range entries {
		action = strings.ToLower(strings.TrimSpace(action))
		if !actionPattern.MatchString(action) {
			return Allowlist{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
		}
		if strings.TrimSpace(key) == "" {
			return Allowlist{}, fmt.Errorf("%w: empty renderer key for %q", ErrInvalidAction, action)
		}
		a.actions[action] = key
	}
	return a, nil
}

// Renderer keys of the site's built-in macros.
const (
	RendererGalleryTrapezoid = "gallery.trapezoid"
	RendererGalleryPreview   = "gallery.preview"
	RendererFormContact      = "form.contact"
	RendererCalendarBasic    = "calendar.basic"
)

// DefaultAllowlist returns the allow-list of the site's built-in macros.
func DefaultAllowlist() Allowlist {
	return Allowlist{actions: map[string]string{
		"gallery::trapezoid": RendererGalleryTrapezoid,
		"gallery::preview":   RendererGalleryPreview,
		"form::contact":      RendererFormContact,
		"calendar::basic":    RendererCalendarBasic,
	}}
}

// Lookup returns the renderer key allowed for action.
func (a Allowlist) Lookup(action string) (string, bool) {
	key, ok := a.actions[strings.ToLower(action)]
	return key, ok
}

// Actions returns the allowed actions in order.
func (a Allowlist) Actions() []string {
	out := make([]string, 0, len(a.actions))
	for action := range a.actions {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}
