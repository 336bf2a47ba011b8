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

var (
	galleryColumns = []string{"id", "title", "description", "is_published", "created_at"}
	pictureColumns = []string{"id", "gallery_id", "path", "thumb_path", "description", "is_visible", "is_cover", "uploaded_at"}
)

// GalleryRepository reads and writes galleries and their pictures.
type GalleryRepository struct {
	db *sql.DB
}

// NewGalleryRepository creates a GalleryRepository.
func NewGalleryRepository(db *sql.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

// ListGalleries returns galleries newest first.
func (r *GalleryRepository) ListGalleries(ctx context.Context, onlyPublished bool) ([]model.Gallery, error) {
	q := psql.Select(galleryColumns...).From("galleries").OrderBy("created_at DESC", "id DESC")
	if onlyPublished {
		q = q.Where(sq.Eq{"is_published": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing galleries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Gallery
	for rows.Next() {
		var g model.Gallery
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.IsPublished, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gallery: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGallery returns one gallery.
func (r *GalleryRepository) GetGallery(ctx context.Context, id int64) (model.Gallery, error) {
	query, args, err := psql.Select(galleryColumns...).From("galleries").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Gallery{}, fmt.Errorf("building query: %w", err)
	}

	var g model.Gallery
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.Title, &g.Description, &g.IsPublished, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Gallery{}, ErrNotFound
	}
	if err != nil {
		return model.Gallery{}, fmt.Errorf("loading gallery %d: %w", id, err)
	}
	return g, nil
}

// CoverPictures returns the cover picture of each listed gallery that has one.
func (r *GalleryRepository) CoverPictures(ctx context.Context, galleryIDs []int64) (map[int64]model.Picture, error) {
	out := make(map[int64]model.Picture, len(galleryIDs))
	if len(galleryIDs) == 0 {
		return out, nil
	}

	pics, err := r.pictures(ctx, sq.Eq{"gallery_id": galleryIDs, "is_cover": true})
	if err != nil {
		return nil, err
	}
	for _, p := range pics {
		out[p.GalleryID] = p
	}
	return out, nil
}

// PicturesByGallery returns the pictures of a gallery in upload order.
func (r *GalleryRepository) PicturesByGallery(ctx context.Context, galleryID int64, onlyVisible bool) ([]model.Picture, error) {
	where := sq.Eq{"gallery_id": galleryID}
	if onlyVisible {
		where["is_visible"] = true
	}
	return r.pictures(ctx, where)
}

func (r *GalleryRepository) pictures(ctx context.Context, where sq.Sqlizer) ([]model.Picture, error) {
	query, args, err := psql.Select(pictureColumns...).
		From("gallery_pictures").
		Where(where).
		OrderBy("uploaded_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pictures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Picture
	for rows.Next() {
		var (
			p     model.Picture
			thumb sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.GalleryID, &p.Path, &thumb, &p.Description, &p.IsVisible, &p.IsCover, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning picture: %w", err)
		}
		p.ThumbPath = thumb.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateGallery inserts g and sets its ID.
func (r *GalleryRepository) CreateGallery(ctx context.Context, g *model.Gallery) error {
	now := dbTime(time.Now())
	query, args, err := psql.Insert("galleries").
		Columns("title", "description", "is_published", "created_at").
		Values(g.Title, g.Description, g.IsPublished, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting gallery: %w", err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading gallery id: %w", err)
	}
	g.CreatedAt = now
	return nil
}

// InsertPicture stores metadata of an already uploaded picture.
func (r *GalleryRepository) InsertPicture(ctx context.Context, p *model.Picture) error {
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now()
	}
	p.UploadedAt = dbTime(p.UploadedAt)

	query, args, err := psql.Insert("gallery_pictures").
		Columns("gallery_id", "path", "thumb_path", "description", "is_visible", "is_cover", "uploaded_at").
		Values(p.GalleryID, p.Path, util.NullStringFromValue(p.ThumbPath), p.Description, p.IsVisible, p.IsCover, p.UploadedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting picture: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading picture id: %w", err)
	}
	return nil
}

// TogglePictureVisibility flips the visibility of a picture and returns the new state.
func (r *GalleryRepository) TogglePictureVisibility(ctx context.Context, pictureID int64) (bool, error) {
	var visible bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := psql.Select("is_visible").From("gallery_pictures").Where(sq.Eq{"id": pictureID}).ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&visible); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("loading picture %d: %w", pictureID, err)
		}

		visible = !visible
		query, args, err = psql.Update("gallery_pictures").Set("is_visible", visible).Where(sq.Eq{"id": pictureID}).ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("updating picture %d: %w", pictureID, err)
		}
		return nil
	})
	return visible, err
}

// SetCover makes pictureID the only cover of its gallery.
func (r *GalleryRepository) SetCover(ctx context.Context, galleryID, pictureID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := psql.Update("gallery_pictures").
			Set("is_cover", sq.Expr("CASE WHEN id = ? THEN 1 ELSE 0 END", pictureID)).
			Where(sq.Eq{"gallery_id": galleryID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("setting cover of gallery %d: %w", galleryID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		// the picture must belong to the gallery
		query, args, err = psql.Select("COUNT(*)").From("gallery_pictures").
			Where(sq.Eq{"id": pictureID, "gallery_id": galleryID}).ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		var n int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return fmt.Errorf("checking picture %d: %w", pictureID, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// withTx runs fn in a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
