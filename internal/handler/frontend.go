// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the application.
package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/menu"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/render"
	"github.com/olegiv/sitekit/internal/route"
	"github.com/olegiv/sitekit/internal/seo"
	"github.com/olegiv/sitekit/internal/store"
)

// DefaultSiteName is used when the configuration has no site name.
const DefaultSiteName = "Sitekit"

// ArticleSource loads published articles.
type ArticleSource interface {
	GetBySlug(ctx context.Context, slug string, onlyPublished bool) (model.Article, error)
	FindIndex(ctx context.Context) (model.Article, error)
}

// GallerySource loads galleries for the gallery pages.
type GallerySource interface {
	ListGalleries(ctx context.Context, onlyPublished bool) ([]model.Gallery, error)
	GetGallery(ctx context.Context, id int64) (model.Gallery, error)
	CoverPictures(ctx context.Context, galleryIDs []int64) (map[int64]model.Picture, error)
	PicturesByGallery(ctx context.Context, galleryID int64, onlyVisible bool) ([]model.Picture, error)
}

// ContactStore persists contact messages.
type ContactStore interface {
	Create(ctx context.Context, m *model.ContactMessage) error
}

// Navigator resolves the site menu for the current route. menu.Service implements it.
type Navigator interface {
	Navigation(ctx context.Context, menuKey string, current model.Route) ([]menu.Node, error)
}

// ContentRenderer turns an article into page HTML. content.Pipeline implements it.
type ContentRenderer interface {
	Render(ctx context.Context, a *model.Article) (template.HTML, error)
}

// Settings reads site configuration values.
type Settings interface {
	GetOr(ctx context.Context, key, fallback string) string
}

// AssetRenderer renders reusable article blocks by title. content.Assets implements it.
type AssetRenderer interface {
	Render(ctx context.Context, title string) (template.HTML, error)
}

// LinkBuilder builds URLs for named routes.
type LinkBuilder interface {
	BuildLink(name, action string, params map[string]string) (string, error)
}

// FrontendDeps are the collaborators of the public site handler.
type FrontendDeps struct {
	Articles    ArticleSource
	Galleries   GallerySource
	Contacts    ContactStore
	Navigation  Navigator
	Content     ContentRenderer
	Assets      AssetRenderer
	Settings    Settings
	Links       LinkBuilder
	Calendar    macro.Renderer
	ContactForm macro.Renderer
	Renderer    *render.Renderer
	Sessions    *scs.SessionManager
	MenuKey     string
	SiteURL     string // absolute base for canonical and og:image URLs
	NoIndex     bool
	Logger      *slog.Logger
}

// FrontendHandler serves the public pages.
type FrontendHandler struct {
	FrontendDeps
}

// NewFrontendHandler creates a frontend handler.
func NewFrontendHandler(deps FrontendDeps) *FrontendHandler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MenuKey == "" {
		deps.MenuKey = model.MenuMainHorizontal
	}
	return &FrontendHandler{FrontendDeps: deps}
}

// ArticleView is the template data of an article page.
type ArticleView struct {
	Slug      string
	Title     string
	ShowTitle bool
	Body      template.HTML
}

// Home handles GET /.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	a, err := h.Articles.FindIndex(r.Context())
	if err != nil {
		h.articleError(w, r, "index", err)
		return
	}
	h.renderArticle(w, r, a, seo.SchemaWebSite)
}

// Article handles GET /{slug}.
func (h *FrontendHandler) Article(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	a, err := h.Articles.GetBySlug(r.Context(), slug, true)
	if err != nil {
		h.articleError(w, r, slug, err)
		return
	}
	h.renderArticle(w, r, a, seo.SchemaArticle)
}

func (h *FrontendHandler) articleError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	h.Logger.Error("failed to load article", "slug", slug, "error", err)
	h.renderError(w, r, http.StatusInternalServerError, "The page could not be loaded.")
}

func (h *FrontendHandler) renderArticle(w http.ResponseWriter, r *http.Request, a model.Article, schemaType string) {
	body, err := h.Content.Render(r.Context(), &a)
	if err != nil {
		h.Logger.Error("failed to render article", "article_id", a.ID, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The page could not be rendered.")
		return
	}
	data := h.pageData(r, a.Title)
	data.Meta = seo.BuildMeta(&seo.Page{
		Title:   a.Title,
		Path:    r.URL.Path,
		Body:    body,
		OGImage: a.OGImage,
	}, h.seoDefaults(r.Context(), data.SiteName))

	page := seo.SchemaPage{Type: schemaType, PublishedAt: a.CreatedAt}
	if a.UpdatedAt != nil {
		page.ModifiedAt = *a.UpdatedAt
	}
	if schemaType == seo.SchemaArticle {
		page.Breadcrumbs = h.breadcrumbs(seo.Breadcrumb{
			Name: a.Title,
			URL:  h.link(model.RouteArticle, model.ActionDefault, map[string]string{"slug": a.Slug}),
		})
	}
	h.setSchema(r, &data, page)

	data.Data = ArticleView{Slug: a.Slug, Title: a.Title, ShowTitle: a.ShowTitle, Body: body}
	h.render(w, r, http.StatusOK, "article", data)
}

// GalleryItem is one entry of the gallery list.
type GalleryItem struct {
	Title       string
	Description string
	Link        string
	Cover       string
}

// GalleryView is the template data of a single gallery page.
type GalleryView struct {
	Gallery  model.Gallery
	Pictures []model.Picture
	BackLink string
}

// GalleryIndex handles GET /gallery.
func (h *FrontendHandler) GalleryIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	galleries, err := h.Galleries.ListGalleries(ctx, true)
	if err != nil {
		h.Logger.Error("failed to list galleries", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The galleries could not be loaded.")
		return
	}

	ids := make([]int64, 0, len(galleries))
	for _, g := range galleries {
		ids = append(ids, g.ID)
	}
	covers, err := h.Galleries.CoverPictures(ctx, ids)
	if err != nil {
		h.Logger.Warn("failed to load gallery covers", "error", err)
		covers = nil
	}

	items := make([]GalleryItem, 0, len(galleries))
	for _, g := range galleries {
		item := GalleryItem{
			Title:       g.Title,
			Description: g.Description,
			Link:        h.link(model.RouteGallery, model.ActionView, map[string]string{"id": strconv.FormatInt(g.ID, 10)}),
		}
		if p, ok := covers[g.ID]; ok {
			item.Cover = p.Thumb()
		}
		items = append(items, item)
	}

	data := h.pageData(r, "Gallery")
	h.setSchema(r, &data, seo.SchemaPage{Breadcrumbs: h.breadcrumbs(seo.Breadcrumb{Name: "Gallery", URL: h.link(model.RouteGallery, model.ActionDefault, nil)})})
	data.Data = items
	h.render(w, r, http.StatusOK, "gallery_list", data)
}

// GalleryShow handles GET /gallery/{id}. Unpublished galleries are not found.
func (h *FrontendHandler) GalleryShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	ctx := r.Context()
	g, err := h.Galleries.GetGallery(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.Logger.Error("failed to load gallery", "gallery_id", id, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The gallery could not be loaded.")
		return
	}
	if !g.IsPublished {
		h.NotFound(w, r)
		return
	}

	pictures, err := h.Galleries.PicturesByGallery(ctx, id, true)
	if err != nil {
		h.Logger.Error("failed to load pictures", "gallery_id", id, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The gallery could not be loaded.")
		return
	}

	data := h.pageData(r, g.Title)
	h.setSchema(r, &data, seo.SchemaPage{Breadcrumbs: h.breadcrumbs(
		seo.Breadcrumb{Name: "Gallery", URL: h.link(model.RouteGallery, model.ActionDefault, nil)},
		seo.Breadcrumb{Name: g.Title, URL: r.URL.Path},
	)})
	data.Data = GalleryView{
		Gallery:  g,
		Pictures: pictures,
		BackLink: h.link(model.RouteGallery, model.ActionDefault, nil),
	}
	h.render(w, r, http.StatusOK, "gallery_view", data)
}

// CalendarMonth handles GET /calendar. The month is taken from the year,
// month and mode query parameters.
func (h *FrontendHandler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var pairs []string
	for _, key := range []string{"year", "month", "mode"} {
		if v := q.Get(key); v != "" {
			pairs = append(pairs, key, v)
		}
	}

	out, err := h.Calendar.Render(r.Context(), macro.NewParams(pairs...))
	if err != nil {
		h.Logger.Warn("failed to render calendar", "query", r.URL.RawQuery, "error", err)
		h.renderError(w, r, http.StatusBadRequest, "The calendar could not be shown for this month.")
		return
	}

	data := h.pageData(r, "Calendar")
	h.setSchema(r, &data, seo.SchemaPage{Breadcrumbs: h.breadcrumbs(seo.Breadcrumb{Name: "Calendar", URL: h.link(model.RouteCalendar, model.ActionDefault, nil)})})
	data.Data = template.HTML(out)
	h.render(w, r, http.StatusOK, "calendar", data)
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Page not found")
	h.render(w, r, http.StatusNotFound, "not_found", data)
}

func (h *FrontendHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.pageData(r, "Error")
	data.Data = message
	h.render(w, r, status, "error", data)
}

// pageData fills the site-wide fields of a page.
func (h *FrontendHandler) pageData(r *http.Request, title string) render.TemplateData {
	ctx := r.Context()
	data := render.TemplateData{
		Title:    title,
		SiteName: DefaultSiteName,
		Nav:      h.navigation(r),
	}
	if h.Settings != nil {
		data.SiteName = h.Settings.GetOr(ctx, model.ConfigKeySiteName, DefaultSiteName)
	}
	data.Meta = seo.BuildMeta(nil, h.seoDefaults(ctx, data.SiteName))
	if h.Assets != nil {
		data.Asset = func(title string) template.HTML {
			out, err := h.Assets.Render(ctx, title)
			if err != nil {
				h.Logger.Warn("failed to render article asset", "title", title, "error", err)
				return ""
			}
			return out
		}
	}
	return data
}

// setSchema adds the JSON-LD of a page. Meta and the page URL come from data
// and the request.
func (h *FrontendHandler) setSchema(r *http.Request, data *render.TemplateData, page seo.SchemaPage) {
	page.Meta = data.Meta
	page.Path = r.URL.Path
	data.Schema = seo.BuildSchema(page, h.seoDefaults(r.Context(), data.SiteName))
}

// breadcrumbs prefixes trail with the home page.
func (h *FrontendHandler) breadcrumbs(trail ...seo.Breadcrumb) []seo.Breadcrumb {
	home := seo.Breadcrumb{Name: "Home", URL: h.link(model.RouteHome, model.ActionDefault, nil)}
	return append([]seo.Breadcrumb{home}, trail...)
}

func (h *FrontendHandler) seoDefaults(ctx context.Context, siteName string) seo.Defaults {
	d := seo.Defaults{SiteName: siteName, SiteURL: h.SiteURL, NoIndex: h.NoIndex}
	if h.Settings != nil {
		d.Title = h.Settings.GetOr(ctx, model.ConfigKeySEODefaultTitle, "")
		d.TitleOG = h.Settings.GetOr(ctx, model.ConfigKeySEODefaultTitleOG, "")
		d.Description = h.Settings.GetOr(ctx, model.ConfigKeySEODefaultDescription, "")
		d.DescriptionOG = h.Settings.GetOr(ctx, model.ConfigKeySEODefaultDescriptionOG, "")
		d.OGImage = h.Settings.GetOr(ctx, model.ConfigKeySEODefaultOGImage, "")
	}
	return d
}

// navigation returns the resolved site menu. Failures degrade to no menu.
func (h *FrontendHandler) navigation(r *http.Request) []menu.Node {
	if h.Navigation == nil {
		return nil
	}
	nodes, err := h.Navigation.Navigation(r.Context(), h.MenuKey, route.Current(r.Context()))
	if err != nil {
		h.Logger.Warn("failed to load navigation", "menu_key", h.MenuKey, "error", err)
		return nil
	}
	return nodes
}

func (h *FrontendHandler) link(name, action string, params map[string]string) string {
	if h.Links == nil {
		return ""
	}
	link, err := h.Links.BuildLink(name, action, params)
	if err != nil {
		h.Logger.Warn("failed to build link", "route", name, "action", action, "error", err)
		return ""
	}
	return link
}

func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := h.Renderer.Render(w, r, status, name, data); err != nil {
		h.Logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
	}
}
