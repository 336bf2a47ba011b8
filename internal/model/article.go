// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Article content types
const (
	ArticleTypeHTML     = "html"
	ArticleTypeMarkdown = "markdown"
	ArticleTypeIndex    = "index"
)

// ForbiddenArticleSlugs collide with fixed routes.
var ForbiddenArticleSlugs = []string{"administration", "gallery", "calendar", "contact", "health"}

// Article represents a public article or news page.
type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Type        string     `json:"type"`
	ShowTitle   bool       `json:"show_title"`
	IsPublished bool       `json:"is_published"`
	OGImage     string     `json:"og_image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// IsMarkdown returns true if the content must be converted from markdown.
func (a *Article) IsMarkdown() bool {
	return a.Type == ArticleTypeMarkdown
}

// IsForbiddenSlug checks if a slug is reserved by a fixed route.
func IsForbiddenSlug(slug string) bool {
	for _, s := range ForbiddenArticleSlugs {
		if s == slug {
			return true
		}
	}
	return false
}
