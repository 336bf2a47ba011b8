// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application logger and a slog handler that
// persists warnings and errors to the event log.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/sitekit/internal/model"
)

// EventWriter stores events. store.EventLogRepository implements it.
type EventWriter interface {
	Insert(ctx context.Context, e model.Event) error
}

// writeTimeout bounds a single event log insert.
const writeTimeout = 2 * time.Second

// NewLogger returns a text logger for development and a JSON logger otherwise.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string, development bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if development {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EventLogHandler wraps another handler and also writes records at or above
// its level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level
	attrs  []slog.Attr
}

// NewEventLogHandler forwards WARN and above to events.
func NewEventLogHandler(inner slog.Handler, events EventWriter) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, events, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level && h.events != nil {
		h.write(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

// write persists r. The request context is not used so that events survive
// cancelled requests.
func (h *EventLogHandler) write(r slog.Record) {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = h.events.Insert(ctx, model.Event{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category returns an explicit "category" attribute or infers one from the message.
func category(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "macro") || strings.Contains(msg, "renderer"):
		return model.EventCategoryMacro
	case strings.Contains(msg, "menu"):
		return model.EventCategoryMenu
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}

// metadata encodes attributes other than category as a flat JSON object.
func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		m[a.Key] = a.Value.Resolve().String()
	}
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
