// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static/dist
var Static embed.FS

// TemplatesFS returns the templates rooted at templates/.
func TemplatesFS() fs.FS {
	return sub(Templates, "templates")
}

// StaticFS returns the public assets rooted at static/dist/.
func StaticFS() fs.FS {
	return sub(Static, "static/dist")
}

func sub(fsys embed.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err) // dir is a constant valid path
	}
	return s
}
