// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/store"
)

// AssetTTL is how long a looked up article block stays cached.
const AssetTTL = 12 * time.Hour

// Well-known blocks rendered by the layout.
const (
	AssetFooter   = "Footer"
	AssetNotFound = "Not found"
)

// AssetSource finds articles by title. store.ArticleRepository implements it.
type AssetSource interface {
	GetByTitle(ctx context.Context, title string) (model.Article, error)
}

// ArticleRenderer turns an article into HTML. Pipeline implements it.
type ArticleRenderer interface {
	Render(ctx context.Context, a *model.Article) (template.HTML, error)
}

// cachedAsset remembers misses too, so a missing block costs one query per TTL.
type cachedAsset struct {
	Found   bool          `json:"found"`
	Article model.Article `json:"article"`
}

// Assets renders reusable article blocks looked up by title. The article is
// cached under the tags articleAssets and articleAssets-<title>; rendering
// runs on every call so macros such as the calendar stay current.
type Assets struct {
	source   AssetSource
	renderer ArticleRenderer
	logger   *slog.Logger

	articles *cache.TypedCache[cachedAsset]
	tags     *cache.Tags
}

// NewAssets creates an asset renderer. A nil backend disables caching.
func NewAssets(source AssetSource, renderer ArticleRenderer, backend cache.Cacher, logger *slog.Logger) *Assets {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assets{source: source, renderer: renderer, logger: logger}
	if backend != nil {
		a.articles = cache.NewTypedCache[cachedAsset](backend, AssetTTL)
		a.tags = cache.NewTags(backend)
	}
	return a
}

// Render returns the rendered block titled title, or "" when there is none.
func (a *Assets) Render(ctx context.Context, title string) (template.HTML, error) {
	asset, err := a.lookup(ctx, title)
	if err != nil {
		return "", err
	}
	if !asset.Found {
		return "", nil
	}
	return a.renderer.Render(ctx, &asset.Article)
}

func (a *Assets) lookup(ctx context.Context, title string) (*cachedAsset, error) {
	if a.articles == nil {
		return a.load(ctx, title)
	}
	key, err := a.tags.Key(ctx, "article-asset:"+title, cache.TagArticleAssets, cache.ArticleAssetTag(title))
	if err != nil {
		a.logger.Warn("article asset cache unavailable", "title", title, "error", err)
		return a.load(ctx, title)
	}
	return a.articles.GetOrSet(ctx, key, func() (*cachedAsset, error) {
		return a.load(ctx, title)
	})
}

func (a *Assets) load(ctx context.Context, title string) (*cachedAsset, error) {
	article, err := a.source.GetByTitle(ctx, title)
	if errors.Is(err, store.ErrNotFound) {
		return &cachedAsset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading article asset %q: %w", title, err)
	}
	return &cachedAsset{Found: true, Article: article}, nil
}

// Invalidate drops the cached block titled title. It matches store.ChangeHook.
func (a *Assets) Invalidate(ctx context.Context, title string) error {
	if a.tags == nil {
		return nil
	}
	return a.tags.Invalidate(ctx, cache.ArticleAssetTag(title))
}

// InvalidateAll drops every cached block.
func (a *Assets) InvalidateAll(ctx context.Context) error {
	if a.tags == nil {
		return nil
	}
	return a.tags.Invalidate(ctx, cache.TagArticleAssets)
}
