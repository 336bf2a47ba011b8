// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSchema(t *testing.T, page SchemaPage, d Defaults) []map[string]any {
	t.Helper()
	var entities []map[string]any
	require.NoError(t, json.Unmarshal([]byte(BuildSchema(page, d)), &entities))
	return entities
}

func TestBuildSchema_Article(t *testing.T) {
	meta := BuildMeta(&Page{Title: "History", Path: "/history", Body: "<p>Built in 1931.</p>"}, site)
	entities := decodeSchema(t, SchemaPage{
		Type:        SchemaArticle,
		Meta:        meta,
		Path:        "/history",
		PublishedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		ModifiedAt:  time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC),
		Breadcrumbs: []Breadcrumb{{Name: "Home", URL: "/"}, {Name: "History", URL: "/history"}},
	}, site)

	require.Len(t, entities, 2)
	article := entities[0]
	assert.Equal(t, "https://schema.org", article["@context"])
	assert.Equal(t, "Article", article["@type"])
	assert.Equal(t, "History", article["headline"])
	assert.Equal(t, "Built in 1931.", article["description"])
	assert.Equal(t, "https://lakeside.example/uploads/og.jpg", article["image"])
	assert.Equal(t, "https://lakeside.example/history", article["mainEntityOfPage"])
	assert.Equal(t, "2025-01-15T10:00:00Z", article["datePublished"])
	assert.Equal(t, "2025-01-20T14:30:00Z", article["dateModified"])

	publisher, ok := article["publisher"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Lakeside", publisher["name"])
	assert.Equal(t, map[string]any{"@type": "ImageObject", "url": "https://lakeside.example/uploads/og.jpg"}, publisher["logo"])

	crumbs := entities[1]
	assert.Equal(t, "BreadcrumbList", crumbs["@type"])
	items, ok := crumbs["itemListElement"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{
		"@type": "ListItem", "position": float64(1), "name": "Home", "item": "https://lakeside.example/",
	}, items[0])
	assert.Equal(t, map[string]any{
		"@type": "ListItem", "position": float64(2), "name": "History", "item": "https://lakeside.example/history",
	}, items[1])
}

func TestBuildSchema_WebSite(t *testing.T) {
	entities := decodeSchema(t, SchemaPage{Type: SchemaWebSite, Meta: BuildMeta(nil, site), Path: "/"}, site)

	require.Len(t, entities, 2)
	assert.Equal(t, "WebSite", entities[0]["@type"])
	assert.Equal(t, "Lakeside", entities[0]["name"])
	assert.Equal(t, "https://lakeside.example/", entities[0]["url"])
	assert.Equal(t, "WebPage", entities[1]["@type"])
	assert.Equal(t, "Lakeside cottage", entities[1]["name"])
	assert.Equal(t, "Holiday cottage by the lake", entities[1]["description"])
}

func TestBuildSchema_WebPageIsDefault(t *testing.T) {
	d := site
	d.SiteURL = ""
	entities := decodeSchema(t, SchemaPage{
		Meta:        BuildMeta(nil, d),
		Path:        "/calendar",
		Breadcrumbs: []Breadcrumb{{Name: "Home", URL: "/"}, {Name: "Calendar", URL: "/calendar"}},
	}, d)

	require.Len(t, entities, 2)
	assert.Equal(t, "WebPage", entities[0]["@type"])
	assert.Equal(t, "/calendar", entities[0]["url"], "relative without a site URL")
	assert.Equal(t, "BreadcrumbList", entities[1]["@type"])
}

func TestBuildSchema_NoBreadcrumbs(t *testing.T) {
	entities := decodeSchema(t, SchemaPage{Meta: BuildMeta(nil, site), Path: "/gallery"}, site)
	require.Len(t, entities, 1)
	assert.Equal(t, "WebPage", entities[0]["@type"])
}

func TestBuildSchema_EscapesScriptEnd(t *testing.T) {
	meta := Meta{Title: "</script><script>alert(1)</script>"}
	out := string(BuildSchema(SchemaPage{Type: SchemaArticle, Meta: meta, Path: "/x"}, Defaults{}))

	assert.NotContains(t, out, "</script>")
	assert.True(t, strings.Contains(out, `\u003c/script\u003e`))
	assert.NotContains(t, out, "publisher", "no publisher without a site name")
}
