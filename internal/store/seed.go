// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/sitekit/internal/model"
)

// DefaultConfiguration holds the rows Seed creates when missing.
var DefaultConfiguration = []model.ConfigItem{
	{Key: model.ConfigKeySiteName, Value: "Sitekit", Category: "general", Active: true},
	{Key: model.ConfigKeySEODefaultTitle, Value: "Sitekit", Category: "seo", Active: true},
	{Key: model.ConfigKeySEODefaultTitleOG, Value: "", Category: "seo", Active: true},
	{Key: model.ConfigKeySEODefaultDescription, Value: "", Category: "seo", Active: true},
	{Key: model.ConfigKeySEODefaultDescriptionOG, Value: "", Category: "seo", Active: true},
	{Key: model.ConfigKeySEODefaultOGImage, Value: "", Category: "seo", Active: true},
	{Key: model.ConfigKeyContactIntro, Value: "", Category: "contact", Active: true},
}

// Seed creates initial data: default configuration, the index article, the
// unpublished footer block and the main menu. Existing data is left alone.
func Seed(ctx context.Context, db *sql.DB) error {
	configs := NewConfigurationRepository(db)
	existing, err := configs.All(ctx, false)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		have[it.Key] = true
	}
	for _, it := range DefaultConfiguration {
		if have[it.Key] {
			continue
		}
		if err := configs.Set(ctx, it); err != nil {
			return fmt.Errorf("seeding configuration: %w", err)
		}
	}

	articles := NewArticleRepository(db)
	if _, err := articles.FindIndex(ctx); errors.Is(err, ErrNotFound) {
		home := &model.Article{
			Title:       "Welcome",
			Slug:        "home",
			Type:        model.ArticleTypeIndex,
			Content:     "<p>Your new site is ready.</p>",
			IsPublished: true,
		}
		if err := articles.Create(ctx, home); err != nil {
			return fmt.Errorf("creating index article: %w", err)
		}
		slog.Info("created index article", "id", home.ID)
	} else if err != nil {
		return fmt.Errorf("checking index article: %w", err)
	}

	if _, err := articles.GetByTitle(ctx, "Footer"); errors.Is(err, ErrNotFound) {
		footer := &model.Article{
			Title:   "Footer",
			Slug:    "footer",
			Content: `<p class="site-footer__text">Built with Sitekit.</p>`,
		}
		if err := articles.Create(ctx, footer); err != nil {
			return fmt.Errorf("creating footer block: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking footer block: %w", err)
	}

	menus := NewMenuRepository(db)
	entries, err := menus.FindByKey(ctx, model.MenuMainHorizontal, false)
	if err != nil {
		return fmt.Errorf("checking main menu: %w", err)
	}
	if len(entries) > 0 {
		return nil
	}
	for i, it := range []struct {
		label string
		route string
	}{
		{"Home", model.RouteHome},
		{"Gallery", model.RouteGallery},
		{"Calendar", model.RouteCalendar},
		{"Contact", model.RouteContact},
	} {
		e := &model.MenuEntry{
			MenuKey:  model.MenuMainHorizontal,
			Label:    it.label,
			Position: i + 1,
			IsActive: true,
			Target:   &model.Target{Presenter: it.route, Action: model.ActionDefault},
		}
		if err := menus.Create(ctx, e); err != nil {
			return fmt.Errorf("creating menu entry %s: %w", it.label, err)
		}
	}
	slog.Info("seeded main menu", "menu_key", model.MenuMainHorizontal)
	return nil
}
