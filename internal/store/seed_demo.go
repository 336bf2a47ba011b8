// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/olegiv/sitekit/internal/model"
)

// SeedDemo creates demo content showing every macro: articles embedding
// galleries, the contact form and the calendar, a grouped menu and a few
// calendar events. It runs after Seed and is skipped when demo articles exist.
func SeedDemo(ctx context.Context, db *sql.DB, now time.Time) error {
	articles := NewArticleRepository(db)
	if _, err := articles.GetBySlug(ctx, "about", false); err == nil {
		slog.Info("demo content already exists, skipping")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking demo content: %w", err)
	}

	slog.Info("seeding demo content")

	galleryID, err := seedDemoGallery(ctx, NewGalleryRepository(db))
	if err != nil {
		return fmt.Errorf("seeding demo gallery: %w", err)
	}
	if err := seedDemoArticles(ctx, articles, galleryID); err != nil {
		return fmt.Errorf("seeding demo articles: %w", err)
	}
	if err := seedDemoEvents(ctx, NewCalendarRepository(db), now); err != nil {
		return fmt.Errorf("seeding demo events: %w", err)
	}
	if err := seedDemoMenu(ctx, NewMenuRepository(db)); err != nil {
		return fmt.Errorf("seeding demo menu: %w", err)
	}

	slog.Info("demo content seeded successfully")
	return nil
}

func seedDemoGallery(ctx context.Context, galleries *GalleryRepository) (int64, error) {
	g := &model.Gallery{
		Title:       "Summer on the lake",
		Description: "A few pictures from last season.",
		IsPublished: true,
	}
	if err := galleries.CreateGallery(ctx, g); err != nil {
		return 0, err
	}
	ids := make([]int64, 0, 7)
	for i := 1; i <= 7; i++ {
		n := strconv.Itoa(i)
		p := &model.Picture{
			GalleryID:   g.ID,
			Path:        "/uploads/demo/lake-" + n + ".jpg",
			ThumbPath:   "/uploads/demo/thumbs/lake-" + n + ".jpg",
			Description: "Lake, picture " + n,
			IsVisible:   true,
		}
		if err := galleries.InsertPicture(ctx, p); err != nil {
			return 0, err
		}
		ids = append(ids, p.ID)
	}
	if err := galleries.SetCover(ctx, g.ID, ids[0]); err != nil {
		return 0, err
	}
	// the last upload is kept as a hidden draft
	if _, err := galleries.TogglePictureVisibility(ctx, ids[len(ids)-1]); err != nil {
		return 0, err
	}
	return g.ID, nil
}

func seedDemoArticles(ctx context.Context, articles *ArticleRepository, galleryID int64) error {
	id := strconv.FormatInt(galleryID, 10)
	for _, a := range []*model.Article{
		{
			Title:       "About",
			Slug:        "about",
			Type:        model.ArticleTypeHTML,
			ShowTitle:   true,
			IsPublished: true,
			Content: `<p>We run a small guest house by the lake.</p>
<p>[[@Gallery::trapezoid|id=` + id + `|count=4]]</p>`,
		},
		{
			Title:       "History",
			Slug:        "history",
			Type:        model.ArticleTypeMarkdown,
			ShowTitle:   true,
			IsPublished: true,
			Content: `The house was built in **1931** and restored in 2019.

[[@Gallery::preview|id=` + id + `|height=180px]]`,
		},
		{
			Title:       "Availability",
			Slug:        "availability",
			Type:        model.ArticleTypeHTML,
			ShowTitle:   true,
			IsPublished: true,
			Content: `<p>Days marked red are already booked.</p>
<p>[[@Calendar::basic|mode=binary]]</p>
<p>Questions? [[@Form::contact]]</p>`,
		},
	} {
		if err := articles.Create(ctx, a); err != nil {
			return fmt.Errorf("creating article %s: %w", a.Slug, err)
		}
	}
	return nil
}

func seedDemoEvents(ctx context.Context, calendar *CalendarRepository, now time.Time) error {
	start := day(now).AddDate(0, 0, 3)
	for _, offset := range []int{0, 1, 2, 9} {
		if _, err := calendar.ToggleBlockingDay(ctx, start.AddDate(0, 0, offset)); err != nil {
			return err
		}
	}
	return calendar.CreateEvent(ctx, EventTypeGeneral, &model.CalendarEvent{
		Title:    "Garden party",
		Color:    "#27ae60",
		StartsAt: start.AddDate(0, 0, 14).Add(18 * time.Hour),
		EndsAt:   start.AddDate(0, 0, 14).Add(23 * time.Hour),
	})
}

func seedDemoMenu(ctx context.Context, menus *MenuRepository) error {
	group := &model.MenuEntry{
		MenuKey:  model.MenuMainHorizontal,
		Label:    "About us",
		Position: 5,
		IsActive: true,
	}
	if err := menus.Create(ctx, group); err != nil {
		return err
	}
	for i, it := range []struct{ label, slug string }{
		{"About", "about"},
		{"History", "history"},
		{"Availability", "availability"},
	} {
		e := &model.MenuEntry{
			MenuKey:  model.MenuMainHorizontal,
			ParentID: &group.ID,
			Label:    it.label,
			Position: i + 1,
			IsActive: true,
			Target: &model.Target{
				Presenter: model.RouteArticle,
				Action:    model.ActionDefault,
				Params:    map[string]string{"slug": it.slug},
			},
		}
		if err := menus.Create(ctx, e); err != nil {
			return fmt.Errorf("creating menu entry %s: %w", it.slug, err)
		}
	}
	return nil
}
