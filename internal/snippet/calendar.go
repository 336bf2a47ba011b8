// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package snippet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
)

// Calendar modes
const (
	ModeBinary = "binary" // days are either free or blocked
	ModeEvents = "events" // days list their events
)

const dateLayout = "2006-01-02"

// Calendar renders a month grid starting on Monday.
//
// Params: year, month (default: current month) and mode.
type Calendar struct {
	source CalendarSource
	links  LinkBuilder
	now    func() time.Time
}

// NewCalendar creates a calendar renderer.
func NewCalendar(source CalendarSource, links LinkBuilder, now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{source: source, links: links, now: now}
}

// Day is one cell of the month grid.
type Day struct {
	Day     int
	Date    string
	Today   bool
	Blocked bool
	Events  []model.CalendarEvent
}

// Month is a rendered month. Padding cells are nil.
type Month struct {
	Year      int
	Month     int
	MonthName string
	Mode      string
	Weeks     [][]*Day
	PrevLink  string
	NextLink  string
}

// Render implements macro.Renderer.
func (c *Calendar) Render(ctx context.Context, p macro.Params) (string, error) {
	now := c.now()
	m, err := c.Month(ctx, p.Int("year", now.Year()), p.Int("month", int(now.Month())), p.Get("mode"))
	if err != nil {
		return "", err
	}
	return execute("calendar.html", m)
}

// Month builds the grid of one month. Out-of-range months roll over into the
// neighbouring year.
func (c *Calendar) Month(ctx context.Context, year, month int, mode string) (Month, error) {
	switch mode {
	case "":
		mode = ModeBinary
	case ModeBinary, ModeEvents:
	default:
		return Month{}, fmt.Errorf("%w: mode %q", ErrInvalidParam, mode)
	}

	now := c.now()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	to := last.Add(24*time.Hour - time.Nanosecond)

	blocked := map[string]bool{}
	events := map[string][]model.CalendarEvent{}
	if c.source != nil {
		switch mode {
		case ModeBinary:
			days, err := c.source.BinaryDays(ctx, first, to)
			if err != nil {
				return Month{}, fmt.Errorf("loading blocked days: %w", err)
			}
			for _, d := range days {
				blocked[d.Format(dateLayout)] = true
			}
		case ModeEvents:
			list, err := c.source.Events(ctx, first, to)
			if err != nil {
				return Month{}, fmt.Errorf("loading events: %w", err)
			}
			for _, ev := range list {
				ev.Title = plainText(ev.Title)
				key := ev.StartsAt.In(now.Location()).Format(dateLayout)
				events[key] = append(events[key], ev)
			}
		}
	}

	cells := make([]*Day, 0, 42)
	for i := 0; i < (int(first.Weekday())+6)%7; i++ {
		cells = append(cells, nil)
	}
	today := now.Format(dateLayout)
	for d := 1; d <= last.Day(); d++ {
		date := first.AddDate(0, 0, d-1).Format(dateLayout)
		cells = append(cells, &Day{
			Day:     d,
			Date:    date,
			Today:   date == today,
			Blocked: blocked[date],
			Events:  events[date],
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	m := Month{
		Year:      first.Year(),
		Month:     int(first.Month()),
		MonthName: first.Month().String(),
		Mode:      mode,
	}
	for i := 0; i < len(cells); i += 7 {
		m.Weeks = append(m.Weeks, cells[i:i+7])
	}
	m.PrevLink = c.monthLink(first.AddDate(0, -1, 0), mode)
	m.NextLink = c.monthLink(first.AddDate(0, 1, 0), mode)
	return m, nil
}

func (c *Calendar) monthLink(t time.Time, mode string) string {
	if c.links == nil {
		return ""
	}
	params := map[string]string{
		"year":  strconv.Itoa(t.Year()),
		"month": strconv.Itoa(int(t.Month())),
	}
	if mode != ModeBinary {
		params["mode"] = mode
	}
	link, err := c.links.BuildLink(model.RouteCalendar, model.ActionDefault, params)
	if err != nil {
		return ""
	}
	return link
}
