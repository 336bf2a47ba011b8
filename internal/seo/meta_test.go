// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"html/template"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

var site = Defaults{
	SiteName:    "Lakeside",
	SiteURL:     "https://lakeside.example/",
	Title:       "Lakeside cottage",
	Description: "Holiday cottage by the lake",
	OGImage:     "/uploads/og.jpg",
}

func TestBuildMeta_SiteDefaults(t *testing.T) {
	meta := BuildMeta(nil, site)

	assert.Equal(t, "Lakeside cottage", meta.Title)
	assert.Equal(t, "Lakeside cottage", meta.OGTitle)
	assert.Equal(t, "Holiday cottage by the lake", meta.Description)
	assert.Equal(t, "Holiday cottage by the lake", meta.OGDescription)
	assert.Equal(t, "https://lakeside.example/uploads/og.jpg", meta.OGImage)
	assert.Equal(t, "website", meta.OGType)
	assert.Equal(t, "index,follow", meta.Robots)
	assert.Empty(t, meta.Canonical)
}

func TestBuildMeta_OGVariants(t *testing.T) {
	s := site
	s.Title = ""
	s.TitleOG = "Stay at Lakeside"
	s.DescriptionOG = "Book your summer"
	s.SiteURL = ""
	s.NoIndex = true

	meta := BuildMeta(nil, s)
	assert.Equal(t, "Lakeside", meta.Title, "site name is the last fallback")
	assert.Equal(t, "Stay at Lakeside", meta.OGTitle)
	assert.Equal(t, "Holiday cottage by the lake", meta.Description)
	assert.Equal(t, "Book your summer", meta.OGDescription)
	assert.Equal(t, "/uploads/og.jpg", meta.OGImage, "relative without a site URL")
	assert.Equal(t, "noindex,nofollow", meta.Robots)
}

func TestBuildMeta_Page(t *testing.T) {
	page := &Page{
		Title:   "History",
		Path:    "/history",
		Body:    template.HTML(`<h2>Since 1921</h2><p>The cottage was built by <b>my grandfather</b>.</p>`),
		OGImage: "https://cdn.example/history.jpg",
	}

	meta := BuildMeta(page, site)
	assert.Equal(t, "History", meta.Title)
	assert.Equal(t, "History", meta.OGTitle)
	assert.Equal(t, "Since 1921 The cottage was built by my grandfather.", meta.Description)
	assert.Equal(t, meta.Description, meta.OGDescription)
	assert.Equal(t, "https://cdn.example/history.jpg", meta.OGImage)
	assert.Equal(t, "https://lakeside.example/history", meta.Canonical)
	assert.Equal(t, "article", meta.OGType)
}

func TestBuildMeta_EmptyBodyKeepsDefaultDescription(t *testing.T) {
	meta := BuildMeta(&Page{Title: "Gallery", Body: "  "}, site)
	assert.Equal(t, "Holiday cottage by the lake", meta.Description)
	assert.Equal(t, "https://lakeside.example/uploads/og.jpg", meta.OGImage)
}

func TestExcerpt(t *testing.T) {
	body := template.HTML(`<p>Write to us.</p><form action="/contact"><label>Name</label></form><script>var x</script><p>We answer within a day.</p>`)
	assert.Equal(t, "Write to us. We answer within a day.", Excerpt(body, 160))
}

func TestExcerpt_Truncates(t *testing.T) {
	words := strings.Repeat("žluťoučký kůň ", 30)
	got := Excerpt(template.HTML("<p>"+words+"</p>"), 40)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 43)
	assert.True(t, utf8.ValidString(got))
	assert.False(t, strings.Contains(got, " ..."))
}
