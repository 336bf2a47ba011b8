// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the meta tags and robots.txt of the public site.
package seo

import (
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionLength is the maximum length of a derived description, in runes.
const DescriptionLength = 160

const blockElements = "p, div, br, li, dt, dd, h1, h2, h3, h4, h5, h6, blockquote, figcaption, td, th, section, article"

// Meta holds the head tags of one page.
type Meta struct {
	Title         string
	Description   string
	Canonical     string
	OGTitle       string
	OGDescription string
	OGImage       string
	OGType        string // website or article
	Robots        string
}

// Defaults are the site-wide values from configuration.
type Defaults struct {
	SiteName      string
	SiteURL       string // optional; makes canonical and image URLs absolute
	Title         string // seo_default_title
	TitleOG       string // seo_default_title_og
	Description   string // seo_default_description
	DescriptionOG string // seo_default_description_og
	OGImage       string // seo_default_og_image
	NoIndex       bool
}

// Page describes the content a page shows. A nil page means a listing or
// utility page that uses the site defaults.
type Page struct {
	Title   string
	Path    string        // request path, used for the canonical URL
	Body    template.HTML // rendered body; its text becomes the description
	OGImage string
}

// BuildMeta combines page and site values. Page values win; the OG variants
// fall back to the plain ones.
func BuildMeta(page *Page, site Defaults) Meta {
	meta := Meta{
		OGType: "website",
		Robots: robotsDirective(site.NoIndex),
	}

	meta.Title = firstNonEmpty(site.Title, site.SiteName)
	meta.OGTitle = firstNonEmpty(site.TitleOG, meta.Title)
	meta.Description = site.Description
	meta.OGDescription = firstNonEmpty(site.DescriptionOG, site.Description)
	meta.OGImage = site.OGImage

	if page != nil {
		meta.OGType = "article"
		if page.Title != "" {
			meta.Title = page.Title
			meta.OGTitle = page.Title
		}
		if excerpt := Excerpt(page.Body, DescriptionLength); excerpt != "" {
			meta.Description = excerpt
			meta.OGDescription = excerpt
		}
		if page.OGImage != "" {
			meta.OGImage = page.OGImage
		}
		if page.Path != "" {
			meta.Canonical = absoluteURL(page.Path, site.SiteURL)
		}
	}

	meta.OGImage = absoluteURL(meta.OGImage, site.SiteURL)
	return meta
}

// Excerpt returns the visible text of body cut to maxLen runes at a word
// boundary. Forms and scripts are skipped.
func Excerpt(body template.HTML, maxLen int) string {
	if strings.TrimSpace(string(body)) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	doc.Find("form, script, style, noscript, template").Remove()
	// keep words of adjacent blocks apart
	doc.Find(blockElements).AppendHtml(" ")

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return truncateText(text, maxLen)
}

func truncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	truncated := string([]rune(text)[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated) + "..."
}

func robotsDirective(noIndex bool) string {
	if noIndex {
		return "noindex,nofollow"
	}
	return "index,follow"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// absoluteURL prefixes relative paths with siteURL when one is configured.
func absoluteURL(url, siteURL string) string {
	if url == "" || siteURL == "" {
		return url
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return strings.TrimSuffix(siteURL, "/") + url
}
