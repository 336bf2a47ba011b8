// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package snippet holds the HTML renderers bound to the site's content macros.
package snippet

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("snippet").ParseFS(templateFS, "templates/*.html"))

var strict = bluemonday.StrictPolicy()

// ErrInvalidParam is returned when a macro parameter is missing or unusable.
var ErrInvalidParam = errors.New("snippet: invalid parameter")

// GallerySource loads galleries and their pictures.
type GallerySource interface {
	GetGallery(ctx context.Context, id int64) (model.Gallery, error)
	PicturesByGallery(ctx context.Context, galleryID int64, onlyVisible bool) ([]model.Picture, error)
}

// CalendarSource loads calendar data for a date range.
type CalendarSource interface {
	BinaryDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
	Events(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
}

// Settings reads site configuration values.
type Settings interface {
	GetOr(ctx context.Context, key, fallback string) string
}

// LinkBuilder builds URLs for named routes.
type LinkBuilder interface {
	BuildLink(name, action string, params map[string]string) (string, error)
}

// Deps are the collaborators of the built-in renderers.
type Deps struct {
	Galleries GallerySource
	Calendar  CalendarSource
	Settings  Settings
	Links     LinkBuilder
	Now       func() time.Time // defaults to time.Now
}

// Register binds every built-in renderer to reg.
func Register(reg *macro.Registry, deps Deps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	renderers := map[string]macro.Renderer{
		macro.RendererGalleryTrapezoid: &Gallery{source: deps.Galleries, links: deps.Links, layout: LayoutTrapezoid},
		macro.RendererGalleryPreview:   &Gallery{source: deps.Galleries, links: deps.Links, layout: LayoutPreview},
		macro.RendererFormContact:      NewContactForm(deps.Settings, deps.Links),
		macro.RendererCalendarBasic:    NewCalendar(deps.Calendar, deps.Links, deps.Now),
	}
	for key, r := range renderers {
		if err := reg.Register(key, r); err != nil {
			return err
		}
	}
	return nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return buf.String(), nil
}

// plainText strips all markup from s. The result is escaped again by the
// template, so entities produced by the policy are decoded first.
func plainText(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}
