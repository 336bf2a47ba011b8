// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package snippet

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
)

// Gallery layouts
const (
	LayoutTrapezoid = "gallery_trapezoid.html"
	LayoutPreview   = "gallery_preview.html"
)

// DefaultPictureCount is the number of pictures shown when count is absent.
const DefaultPictureCount = 5

const maxPictureCount = 50

var cssLength = regexp.MustCompile(`^\d+(\.\d+)?(px|em|rem|vh|vw|%)$`)

// Gallery renders a strip of pictures of one gallery.
//
// Params: id (required), count, height, and for the trapezoid layout top,
// second and toLeft.
type Gallery struct {
	source GallerySource
	links  LinkBuilder
	layout string
}

type galleryView struct {
	Gallery  model.Gallery
	Pictures []model.Picture
	Link     string
	Height   string
	Top      string
	Second   string
	ToLeft   bool
}

// Render implements macro.Renderer.
func (g *Gallery) Render(ctx context.Context, p macro.Params) (string, error) {
	id, err := strconv.ParseInt(p.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("%w: id %q", ErrInvalidParam, p.Get("id"))
	}

	count := p.Int("count", DefaultPictureCount)
	if count < 1 {
		count = DefaultPictureCount
	}
	if count > maxPictureCount {
		count = maxPictureCount
	}

	height := p.Get("height")
	if height != "" && !cssLength.MatchString(height) {
		return "", fmt.Errorf("%w: height %q", ErrInvalidParam, height)
	}

	gallery, err := g.source.GetGallery(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading gallery %d: %w", id, err)
	}
	if !gallery.IsPublished {
		return "", fmt.Errorf("gallery %d is not published", id)
	}

	pictures, err := g.source.PicturesByGallery(ctx, id, true)
	if err != nil {
		return "", fmt.Errorf("loading pictures of gallery %d: %w", id, err)
	}
	if len(pictures) > count {
		pictures = pictures[:count]
	}
	for i := range pictures {
		pictures[i].Description = plainText(pictures[i].Description)
	}

	view := galleryView{
		Gallery:  gallery,
		Pictures: pictures,
		Height:   height,
		Top:      plainText(p.Get("top")),
		Second:   plainText(p.Get("second")),
		ToLeft:   isTrue(p.Get("toLeft")),
	}
	view.Gallery.Title = plainText(gallery.Title)
	if g.links != nil {
		link, err := g.links.BuildLink(model.RouteGallery, model.ActionView, map[string]string{"id": strconv.FormatInt(id, 10)})
		if err == nil {
			view.Link = link
		}
	}

	return execute(g.layout, view)
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
