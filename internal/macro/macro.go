// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package macro expands bracket tags such as [[@gallery::preview|id=6]]
// embedded in article text into server-rendered HTML.
package macro

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
)

// tagPattern matches one tag. The parameter segment is matched loosely so a
// malformed pair only drops that pair, not the whole tag.
var tagPattern = regexp.MustCompile(`(?i)\[\[@([a-z0-9_]+)::([a-z0-9_]+)((?:\|[^|\]]*)*)\]\]`)

var keyPattern = regexp.MustCompile(`(?i)^[a-z0-9_]+$`)

// Tag is one macro found in a text.
type Tag struct {
	Raw       string
	Namespace string
	Name      string
	Params    Params
	Start     int // byte offsets of Raw in the scanned text
	End       int
}

// Action returns the lower-cased "namespace::name" of the tag.
func (t Tag) Action() string {
	return strings.ToLower(t.Namespace + "::" + t.Name)
}

// Scan returns every well-formed tag of text in order.
func Scan(text string) []Tag {
	if !strings.Contains(text, "[[@") {
		return nil
	}
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	tags := make([]Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, Tag{
			Raw:       text[m[0]:m[1]],
			Namespace: text[m[2]:m[3]],
			Name:      text[m[4]:m[5]],
			Params:    parseParams(text[m[6]:m[7]]),
			Start:     m[0],
			End:       m[1],
		})
	}
	return tags
}

// parseParams parses "|k=v|k2=v2". Pairs without "=" or with an invalid key
// are skipped; the last duplicate wins.
func parseParams(segment string) Params {
	var p Params
	if segment == "" {
		return p
	}
	for _, pair := range strings.Split(segment[1:], "|") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || !keyPattern.MatchString(key) {
			continue
		}
		p.set(key, html.UnescapeString(value))
	}
	return p
}

// Expander replaces allow-listed tags with renderer output.
type Expander struct {
	allowlist Allowlist
	registry  *Registry
	logger    *slog.Logger
}

// Option customises an Expander.
type Option func(*Expander)

// WithLogger sets the logger used for renderer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Expander.
func New(allowlist Allowlist, registry *Registry, opts ...Option) *Expander {
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Expander{
		allowlist: allowlist,
		registry:  registry,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns text with every allow-listed tag replaced by its rendered
// fragment. Unknown tags and tags whose renderer fails are kept verbatim.
// Renderer output is inserted as is and never scanned again.
func (e *Expander) Expand(ctx context.Context, text string) string {
	tags := Scan(text)
	if len(tags) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, tag := range tags {
		b.WriteString(text[last:tag.Start])
		b.WriteString(e.expandTag(ctx, tag))
		last = tag.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func (e *Expander) expandTag(ctx context.Context, tag Tag) string {
	key, ok := e.allowlist.Lookup(tag.Action())
	if !ok {
		return tag.Raw
	}
	renderer, ok := e.registry.Get(key)
	if !ok {
		e.logger.Debug("macro renderer not registered", "tag", tag.Raw, "renderer", key)
		return tag.Raw
	}

	out, err := render(ctx, renderer, tag.Params)
	if err != nil {
		e.logger.Warn("macro render failed", "tag", tag.Raw, "renderer", key, "error", err)
		return tag.Raw
	}
	return out
}

func render(ctx context.Context, r Renderer, params Params) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("renderer panic: %v", rec)
		}
	}()
	return r.Render(ctx, params)
}
