// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/util"
)

var articleColumns = []string{
	"id", "title", "slug", "content", "type", "show_title", "is_published",
	"og_image", "created_at", "updated_at",
}

// ArticleRepository reads and writes articles.
type ArticleRepository struct {
	db       *sql.DB
	onChange ChangeHook
}

// NewArticleRepository creates an ArticleRepository.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// OnChange registers a hook called with the old and new title after an
// article is created or updated.
func (r *ArticleRepository) OnChange(hook ChangeHook) {
	r.onChange = hook
}

// GetBySlug returns the article with slug.
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string, onlyPublished bool) (model.Article, error) {
	q := psql.Select(articleColumns...).From("articles").Where(sq.Eq{"slug": slug})
	if onlyPublished {
		q = q.Where(sq.Eq{"is_published": true})
	}
	return r.getOne(ctx, q)
}

// GetByID returns the article with id.
func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (model.Article, error) {
	return r.getOne(ctx, psql.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}))
}

// GetByTitle returns the first article titled title, published or not.
// Reusable page blocks are looked up this way.
func (r *ArticleRepository) GetByTitle(ctx context.Context, title string) (model.Article, error) {
	return r.getOne(ctx, psql.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"title": title}).
		OrderBy("id").
		Limit(1))
}

// FindIndex returns the published article shown on the home page.
func (r *ArticleRepository) FindIndex(ctx context.Context) (model.Article, error) {
	return r.getOne(ctx, psql.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"type": model.ArticleTypeIndex, "is_published": true}).
		OrderBy("id").
		Limit(1))
}

func (r *ArticleRepository) getOne(ctx context.Context, q sq.SelectBuilder) (model.Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return model.Article{}, fmt.Errorf("building query: %w", err)
	}
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	return a, err
}

// Create inserts a. The slug is derived from the title when empty and made
// unique with a numeric suffix.
func (r *ArticleRepository) Create(ctx context.Context, a *model.Article) error {
	base := a.Slug
	if base == "" {
		base = a.Title
	}
	slug, err := r.availableSlug(ctx, util.Slugify(base), 0)
	if err != nil {
		return err
	}
	if a.Type == "" {
		a.Type = model.ArticleTypeHTML
	}

	now := dbTime(time.Now())
	query, args, err := psql.Insert("articles").
		Columns("title", "slug", "content", "type", "show_title", "is_published", "og_image", "created_at").
		Values(a.Title, slug, a.Content, a.Type, a.ShowTitle, a.IsPublished, util.NullStringFromValue(a.OGImage), now).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading article id: %w", err)
	}
	a.ID, a.Slug, a.CreatedAt, a.UpdatedAt = id, slug, now, nil
	notify(ctx, r.onChange, "article", a.Title)
	return nil
}

// Update saves a. A changed slug is normalised and made unique.
func (r *ArticleRepository) Update(ctx context.Context, a *model.Article) error {
	old, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	slug, err := r.availableSlug(ctx, util.Slugify(a.Slug), a.ID)
	if err != nil {
		return err
	}

	now := dbTime(time.Now())
	query, args, err := psql.Update("articles").
		SetMap(map[string]any{
			"title":        a.Title,
			"slug":         slug,
			"content":      a.Content,
			"type":         a.Type,
			"show_title":   a.ShowTitle,
			"is_published": a.IsPublished,
			"og_image":     util.NullStringFromValue(a.OGImage),
			"updated_at":   now,
		}).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating article %d: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	a.Slug, a.UpdatedAt = slug, &now
	notify(ctx, r.onChange, "article", old.Title, a.Title)
	return nil
}

// availableSlug returns base or base-N, skipping reserved slugs and slugs
// used by articles other than self.
func (r *ArticleRepository) availableSlug(ctx context.Context, base string, self int64) (string, error) {
	return util.AvailableSlug(base, model.IsForbiddenSlug, func(candidate string) (bool, error) {
		q := psql.Select("COUNT(*)").From("articles").Where(sq.Eq{"slug": candidate})
		if self != 0 {
			q = q.Where(sq.NotEq{"id": self})
		}
		query, args, err := q.ToSql()
		if err != nil {
			return false, fmt.Errorf("building query: %w", err)
		}
		var n int
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return false, fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		return n > 0, nil
	})
}

func scanArticle(s rowScanner) (model.Article, error) {
	var (
		a         model.Article
		ogImage   sql.NullString
		updatedAt sql.NullTime
	)
	err := s.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Type, &a.ShowTitle, &a.IsPublished,
		&ogImage, &a.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("scanning article: %w", err)
	}
	a.OGImage = ogImage.String
	a.UpdatedAt = util.TimePtr(updatedAt)
	return a, nil
}
