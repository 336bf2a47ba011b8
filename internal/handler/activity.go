// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/olegiv/sitekit/internal/middleware"
	"github.com/olegiv/sitekit/internal/model"
)

// Listing limits of the activity endpoints.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
)

// EventLister lists persisted log events. store.EventLogRepository implements it.
type EventLister interface {
	Recent(ctx context.Context, limit uint64) ([]model.Event, error)
}

// ContactLister lists contact form submissions. store.ContactRepository implements it.
type ContactLister interface {
	Recent(ctx context.Context, limit uint64) ([]model.ContactMessage, error)
}

// ActivityHandler serves the token-protected activity endpoints.
type ActivityHandler struct {
	events   EventLister
	contacts ContactLister
	logger   *slog.Logger
}

// NewActivityHandler creates an activity handler.
func NewActivityHandler(events EventLister, contacts ContactLister, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityHandler{events: events, contacts: contacts, logger: logger}
}

// Events handles GET /-/events?limit=N.
func (h *ActivityHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit, ok := activityLimit(w, r)
	if !ok {
		return
	}
	events, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ContactMessages handles GET /-/contact-messages?limit=N.
func (h *ActivityHandler) ContactMessages(w http.ResponseWriter, r *http.Request) {
	limit, ok := activityLimit(w, r)
	if !ok {
		return
	}
	messages, err := h.contacts.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list contact messages", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "failed to list contact messages")
		return
	}
	if messages == nil {
		messages = []model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// activityLimit reads the limit query parameter, capped at MaxActivityLimit.
func activityLimit(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultActivityLimit, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		middleware.WriteJSONError(w, http.StatusBadRequest, "limit must be a positive number")
		return 0, false
	}
	return min(n, MaxActivityLimit), true
}
