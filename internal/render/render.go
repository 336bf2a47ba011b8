// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the site page templates.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/sitekit/internal/menu"
	"github.com/olegiv/sitekit/internal/seo"
	"github.com/olegiv/sitekit/internal/session"
)

const baseLayout = "layouts/base.html"

// blankLines matches runs of whitespace-only lines.
var blankLines = regexp.MustCompile(`(\r?\n[ \t]*){2,}`)

// Renderer holds one parsed template set per page.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	siteName       string
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	SiteName       string
	Now            func() time.Time
}

// New parses every page under pages/ together with the base layout and partials.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		siteName:       cfg.SiteName,
		now:            cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("listing partials: %w", err)
	}
	pages, err := templateFiles(templatesFS, "pages")
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{baseLayout}, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

// templateFiles returns the .html files of dir. A missing dir yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "..."
		},
	}
}

// TemplateData is passed to every page.
type TemplateData struct {
	Title       string
	SiteName    string
	Meta        seo.Meta
	Schema      template.JS // JSON-LD entities, see seo.BuildSchema
	Asset       AssetFunc   // nil when no article blocks are configured
	Nav         []menu.Node
	Data        any
	Flash       session.Flash
	HasFlash    bool
	CurrentYear int
}

// AssetFunc returns the rendered article block with the given title, or ""
// when there is none. Templates call it as {{call .Asset "Footer"}}.
type AssetFunc func(title string) template.HTML

// Has reports whether a page template is known.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render writes page name with the given status. The output is buffered so a
// failing template never produces a partial response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	if data.SiteName == "" {
		data.SiteName = r.siteName
	}
	if r.sessionManager != nil && !data.HasFlash {
		data.Flash, data.HasFlash = session.PopFlash(req.Context(), r.sessionManager)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(compact(buf.Bytes()))
	return err
}

// compact collapses blank lines left behind by template actions.
func compact(b []byte) []byte {
	return blankLines.ReplaceAll(b, []byte("\n"))
}
