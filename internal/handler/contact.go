// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/session"
	"github.com/olegiv/sitekit/internal/snippet"
	"github.com/olegiv/sitekit/internal/util"
)

// Contact form limits, in characters.
const (
	maxContactName    = 100
	maxContactEmail   = 254
	maxContactPhone   = 32
	maxContactMessage = 5000
)

// MessageContactSent is flashed after a successful submission.
const MessageContactSent = "Thank you, your message has been sent."

// ContactView is the template data of the contact page.
type ContactView struct {
	Form   template.HTML
	Errors []string
}

// contactInput holds the submitted contact form values.
type contactInput struct {
	Name     string
	Email    string
	Phone    string
	Message  string
	Honeypot string
}

func parseContactInput(r *http.Request) contactInput {
	return contactInput{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Message:  strings.TrimSpace(r.PostFormValue("message")),
		Honeypot: r.PostFormValue(snippet.HoneypotField),
	}
}

// validate returns the user-facing validation errors in field order.
func (in contactInput) validate() []string {
	var errs []string
	switch {
	case in.Name == "":
		errs = append(errs, "Name is required")
	case utf8.RuneCountInString(in.Name) > maxContactName:
		errs = append(errs, "Name is too long")
	}
	switch {
	case in.Email == "":
		errs = append(errs, "Email is required")
	case len(in.Email) > maxContactEmail || !isValidEmail(in.Email):
		errs = append(errs, "Please enter a valid email address")
	}
	if utf8.RuneCountInString(in.Phone) > maxContactPhone {
		errs = append(errs, "Phone is too long")
	}
	switch {
	case in.Message == "":
		errs = append(errs, "Message is required")
	case utf8.RuneCountInString(in.Message) > maxContactMessage:
		errs = append(errs, "Message is too long")
	}
	return errs
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Contact handles GET /contact.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, nil)
}

// SubmitContact handles POST /contact.
func (h *FrontendHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		h.Logger.Warn("failed to parse contact form", "error", err)
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	in := parseContactInput(r)
	redirect := h.link(model.RouteContact, model.ActionDefault, nil)
	if redirect == "" {
		redirect = "/contact"
	}

	// Bots fill the hidden field; they get the success response without a stored message.
	if in.Honeypot != "" {
		h.Logger.Info("contact honeypot triggered", "ip", util.ClientIP(r))
		h.flashAndRedirect(w, r, redirect, session.Flash{Kind: session.FlashSuccess, Message: MessageContactSent})
		return
	}

	if errs := in.validate(); len(errs) > 0 {
		h.renderContact(w, r, http.StatusUnprocessableEntity, errs)
		return
	}

	msg := &model.ContactMessage{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
		RemoteIP: util.ClientIP(r),
	}
	if err := h.Contacts.Create(r.Context(), msg); err != nil {
		h.Logger.Error("failed to store contact message", "error", err)
		h.renderContact(w, r, http.StatusInternalServerError, []string{"Your message could not be sent, please try again later."})
		return
	}

	h.Logger.Info("contact message received", "message_id", msg.ID)
	h.flashAndRedirect(w, r, redirect, session.Flash{Kind: session.FlashSuccess, Message: MessageContactSent})
}

func (h *FrontendHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, errs []string) {
	form, err := h.ContactForm.Render(r.Context(), macro.Params{})
	if err != nil {
		h.Logger.Error("failed to render contact form", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "The contact form is unavailable.")
		return
	}
	data := h.pageData(r, "Contact")
	data.Data = ContactView{Form: template.HTML(form), Errors: errs}
	h.render(w, r, status, "contact", data)
}

func (h *FrontendHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, url string, f session.Flash) {
	if h.Sessions != nil {
		session.SetFlash(r.Context(), h.Sessions, f)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
