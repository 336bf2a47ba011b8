// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package snippet

import (
	"context"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
)

// DefaultContactIntro is shown above the form when no configuration value exists.
const DefaultContactIntro = "Contact us and we will get back to you."

// HoneypotField is the hidden input that must stay empty.
const HoneypotField = "website"

// ContactForm renders the contact form fragment.
type ContactForm struct {
	settings Settings
	links    LinkBuilder
}

// NewContactForm creates a contact form renderer.
func NewContactForm(settings Settings, links LinkBuilder) *ContactForm {
	return &ContactForm{settings: settings, links: links}
}

type contactView struct {
	Action   string
	Intro    string
	Honeypot string
}

// Render implements macro.Renderer.
func (f *ContactForm) Render(ctx context.Context, _ macro.Params) (string, error) {
	view := contactView{Action: "/contact", Intro: DefaultContactIntro, Honeypot: HoneypotField}
	if f.settings != nil {
		view.Intro = plainText(f.settings.GetOr(ctx, model.ConfigKeyContactIntro, DefaultContactIntro))
	}
	if f.links != nil {
		if link, err := f.links.BuildLink(model.RouteContact, model.ActionDefault, nil); err == nil {
			view.Action = link
		}
	}
	return execute("contact_form.html", view)
}
