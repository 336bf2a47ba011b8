// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"html/template"
	"time"
)

const schemaContext = "https://schema.org"

// Schema types of the main entity of a page.
const (
	SchemaWebPage = "WebPage"
	SchemaWebSite = "WebSite"
	SchemaArticle = "Article"
)

// Breadcrumb is one step of a page's breadcrumb trail. URL may be relative;
// it is made absolute with the site URL.
type Breadcrumb struct {
	Name string
	URL  string
}

// SchemaPage describes a page for structured data.
type SchemaPage struct {
	Type        string // SchemaWebPage when empty
	Meta        Meta   // title, description and image come from here
	Path        string // request path, the page URL
	Breadcrumbs []Breadcrumb
	PublishedAt time.Time
	ModifiedAt  time.Time
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	DatePublished    string     `json:"datePublished,omitempty"`
	DateModified     string     `json:"dateModified,omitempty"`
	Publisher        *OrgSchema `json:"publisher,omitempty"`
	MainEntityOfPage string     `json:"mainEntityOfPage,omitempty"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// WebPageSchema represents JSON-LD WebPage structured data.
type WebPageSchema struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// WebSiteSchema represents JSON-LD WebSite structured data for the home page.
type WebSiteSchema struct {
	Context string `json:"@context"`
	Type    string `json:"@type"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
}

// BreadcrumbSchema represents JSON-LD BreadcrumbList structured data.
type BreadcrumbSchema struct {
	Context  string           `json:"@context"`
	Type     string           `json:"@type"`
	ItemList []BreadcrumbItem `json:"itemListElement"`
}

// BreadcrumbItem represents a single breadcrumb item.
type BreadcrumbItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

// BuildSchema returns the JSON-LD entities of a page as a JSON array: the
// main entity (a WebSite is followed by its WebPage) and, when the page has
// breadcrumbs, a BreadcrumbList.
func BuildSchema(page SchemaPage, site Defaults) template.JS {
	url := absoluteURL(page.Path, site.SiteURL)

	var entities []any
	switch page.Type {
	case SchemaArticle:
		entities = append(entities, buildArticle(page, site, url))
	case SchemaWebSite:
		entities = append(entities,
			WebSiteSchema{Context: schemaContext, Type: SchemaWebSite, Name: firstNonEmpty(site.SiteName, page.Meta.Title), URL: url},
			buildWebPage(page, url),
		)
	default:
		entities = append(entities, buildWebPage(page, url))
	}

	if len(page.Breadcrumbs) > 0 {
		entities = append(entities, buildBreadcrumbs(page.Breadcrumbs, site.SiteURL))
	}
	return marshalJSONLD(entities)
}

func buildArticle(page SchemaPage, site Defaults, url string) ArticleSchema {
	article := ArticleSchema{
		Context:          schemaContext,
		Type:             SchemaArticle,
		Headline:         page.Meta.Title,
		Description:      page.Meta.Description,
		Image:            page.Meta.OGImage,
		MainEntityOfPage: url,
	}
	if !page.PublishedAt.IsZero() {
		article.DatePublished = page.PublishedAt.Format(time.RFC3339)
	}
	if !page.ModifiedAt.IsZero() {
		article.DateModified = page.ModifiedAt.Format(time.RFC3339)
	}
	if site.SiteName != "" {
		article.Publisher = &OrgSchema{Type: "Organization", Name: site.SiteName}
		if site.OGImage != "" {
			article.Publisher.Logo = &ImageSchema{
				Type: "ImageObject",
				URL:  absoluteURL(site.OGImage, site.SiteURL),
			}
		}
	}
	return article
}

func buildWebPage(page SchemaPage, url string) WebPageSchema {
	return WebPageSchema{
		Context:     schemaContext,
		Type:        SchemaWebPage,
		Name:        page.Meta.Title,
		Description: page.Meta.Description,
		URL:         url,
	}
}

func buildBreadcrumbs(crumbs []Breadcrumb, siteURL string) BreadcrumbSchema {
	list := BreadcrumbSchema{
		Context:  schemaContext,
		Type:     "BreadcrumbList",
		ItemList: make([]BreadcrumbItem, 0, len(crumbs)),
	}
	for i, c := range crumbs {
		list.ItemList = append(list.ItemList, BreadcrumbItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     c.Name,
			Item:     absoluteURL(c.URL, siteURL),
		})
	}
	return list
}

// marshalJSONLD marshals structured data to JSON-LD script tag content.
// The encoder escapes <, > and &, so the output cannot close the script element.
func marshalJSONLD(v any) template.JS {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return template.JS(data)
}
