// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content turns stored article bodies into HTML ready for templates.
package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/sitekit/internal/model"
)

// Expander rewrites content macros. macro.Expander implements it.
type Expander interface {
	Expand(ctx context.Context, text string) string
}

// Pipeline converts, sanitizes and expands article bodies.
type Pipeline struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	expander Expander
}

// NewPipeline creates a pipeline. A nil expander leaves macros as text.
func NewPipeline(expander Expander) *Pipeline {
	return &Pipeline{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			// raw HTML is kept here and filtered by the policy
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy:   articlePolicy(),
		expander: expander,
	}
}

func articlePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowStyles("text-align").OnElements("p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th")
	return p
}

// Sanitize converts body to safe HTML without expanding macros.
func (p *Pipeline) Sanitize(body string, markdown bool) (string, error) {
	if markdown {
		var buf bytes.Buffer
		if err := p.markdown.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("converting markdown: %w", err)
		}
		body = buf.String()
	}
	return p.policy.Sanitize(body), nil
}

// Render returns the final body of a. Renderer output is inserted after
// sanitizing and is not filtered.
func (p *Pipeline) Render(ctx context.Context, a *model.Article) (template.HTML, error) {
	body, err := p.Sanitize(a.Content, a.IsMarkdown())
	if err != nil {
		return "", fmt.Errorf("article %d: %w", a.ID, err)
	}
	if p.expander != nil {
		body = p.expander.Expand(ctx, body)
	}
	return template.HTML(body), nil
}
