// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Gallery represents a photo gallery.
type Gallery struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Picture is one image of a gallery.
type Picture struct {
	ID          int64     `json:"id"`
	GalleryID   int64     `json:"gallery_id"`
	Path        string    `json:"path"`
	ThumbPath   string    `json:"thumb_path"`
	Description string    `json:"description"`
	IsVisible   bool      `json:"is_visible"`
	IsCover     bool      `json:"is_cover"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Thumb returns the thumbnail path, falling back to the full image.
func (p Picture) Thumb() string {
	if p.ThumbPath != "" {
		return p.ThumbPath
	}
	return p.Path
}
