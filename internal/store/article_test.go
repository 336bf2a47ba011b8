// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/model"
)

func TestArticleRepository_SlugAllocation(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(newTestDB(t))

	tests := []struct {
		title, slug string
		want        string
	}{
		{"Zážitkový kurz 2024", "", "zazitkovy-kurz-2024"},
		{"Zážitkový kurz 2024", "", "zazitkovy-kurz-2024-1"},
		{"Anything", "Our Team!", "our-team"},
		{"Reserved", "gallery", "gallery-1"},
		{"Reserved again", "contact", "contact-1"},
		{"!!!", "", "article"},
	}
	for _, tt := range tests {
		a := &model.Article{Title: tt.title, Slug: tt.slug, IsPublished: true}
		require.NoError(t, repo.Create(ctx, a))
		assert.Equal(t, tt.want, a.Slug, "title %q slug %q", tt.title, tt.slug)
		assert.Equal(t, model.ArticleTypeHTML, a.Type)
		assert.NotZero(t, a.ID)
	}
}

func TestArticleRepository_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(newTestDB(t))

	draft := &model.Article{Title: "Draft", Content: "<p>wip</p>"}
	require.NoError(t, repo.Create(ctx, draft))
	other := &model.Article{Title: "Other", IsPublished: true}
	require.NoError(t, repo.Create(ctx, other))

	_, err := repo.GetBySlug(ctx, "draft", true)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetBySlug(ctx, "draft", false)
	require.NoError(t, err)
	assert.Equal(t, "<p>wip</p>", got.Content)
	assert.Nil(t, got.UpdatedAt)

	// keeping its own slug is not a collision
	got.Title = "Draft v2"
	require.NoError(t, repo.Update(ctx, &got))
	assert.Equal(t, "draft", got.Slug)
	require.NotNil(t, got.UpdatedAt)

	got.Slug = "other"
	require.NoError(t, repo.Update(ctx, &got))
	assert.Equal(t, "other-1", got.Slug)

	reloaded, err := repo.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft v2", reloaded.Title)
	assert.Equal(t, "other-1", reloaded.Slug)

	missing := model.Article{ID: 999, Title: "x", Slug: "x"}
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)
}

func TestArticleRepository_FindIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(newTestDB(t))

	_, err := repo.FindIndex(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, a := range []*model.Article{
		{Title: "Home", Type: model.ArticleTypeIndex, IsPublished: true},
		{Title: "Notes", Type: model.ArticleTypeMarkdown, IsPublished: true},
		{Title: "Hidden", Type: model.ArticleTypeIndex},
	} {
		require.NoError(t, repo.Create(ctx, a))
	}

	index, err := repo.FindIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, "home", index.Slug)
}

func TestArticleRepository_GetByTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.Article{Title: "Footer", Content: "<p>first</p>"}))
	require.NoError(t, repo.Create(ctx, &model.Article{Title: "Footer", Content: "<p>second</p>"}))

	got, err := repo.GetByTitle(ctx, "Footer")
	require.NoError(t, err)
	assert.Equal(t, "<p>first</p>", got.Content, "unpublished articles are found, oldest first")

	_, err = repo.GetByTitle(ctx, "footer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleRepository_ChangeHook(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(newTestDB(t))

	var changed []string
	repo.OnChange(func(_ context.Context, title string) error {
		changed = append(changed, title)
		return nil
	})

	a := &model.Article{Title: "Footer", Content: "<p>v1</p>"}
	require.NoError(t, repo.Create(ctx, a))
	a.Content = "<p>v2</p>"
	require.NoError(t, repo.Update(ctx, a))
	a.Title = "Site footer"
	require.NoError(t, repo.Update(ctx, a))

	assert.Equal(t, []string{"Footer", "Footer", "Footer", "Site footer"}, changed)

	missing := model.Article{ID: 999, Title: "x", Slug: "x"}
	require.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)
	assert.Len(t, changed, 4)
}
