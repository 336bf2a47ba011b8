// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package snippet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/macro"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/route"
)

type fakeGalleries struct {
	galleries map[int64]model.Gallery
	pictures  map[int64][]model.Picture
	err       error
}

func (f *fakeGalleries) GetGallery(_ context.Context, id int64) (model.Gallery, error) {
	if f.err != nil {
		return model.Gallery{}, f.err
	}
	g, ok := f.galleries[id]
	if !ok {
		return model.Gallery{}, errors.New("not found")
	}
	return g, nil
}

func (f *fakeGalleries) PicturesByGallery(_ context.Context, id int64, onlyVisible bool) ([]model.Picture, error) {
	var out []model.Picture
	for _, p := range f.pictures[id] {
		if onlyVisible && !p.IsVisible {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeCalendar struct {
	blocked []time.Time
	events  []model.CalendarEvent
	from    time.Time
	to      time.Time
}

func (f *fakeCalendar) BinaryDays(_ context.Context, from, to time.Time) ([]time.Time, error) {
	f.from, f.to = from, to
	return f.blocked, nil
}

func (f *fakeCalendar) Events(_ context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	f.from, f.to = from, to
	return f.events, nil
}

type fakeSettings map[string]string

func (f fakeSettings) GetOr(_ context.Context, key, fallback string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return fallback
}

func testGalleries() *fakeGalleries {
	pics := make([]model.Picture, 0, 8)
	for i := int64(1); i <= 8; i++ {
		pics = append(pics, model.Picture{
			ID:          i,
			GalleryID:   6,
			Path:        "/uploads/6/" + string(rune('a'+i-1)) + ".jpg",
			Description: "Photo",
			IsVisible:   i != 2,
		})
	}
	return &fakeGalleries{
		galleries: map[int64]model.Gallery{
			6: {ID: 6, Title: "Summer <b>camp</b>", IsPublished: true},
			7: {ID: 7, Title: "Draft", IsPublished: false},
		},
		pictures: map[int64][]model.Picture{6: pics},
	}
}

func parse(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func newGallery(layout string) *Gallery {
	return &Gallery{source: testGalleries(), links: route.NewBuilder(), layout: layout}
}

func TestGallery_Preview(t *testing.T) {
	out, err := newGallery(LayoutPreview).Render(context.Background(), macro.NewParams("id", "6", "count", "3"))
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, 3, doc.Find(".gallery-preview__photo").Length())
	assert.Equal(t, "6", doc.Find(".gallery-preview").AttrOr("data-gallery", ""))
	assert.Equal(t, "/gallery/6", doc.Find(".gallery-preview__title a").AttrOr("href", ""))
	assert.Equal(t, "Summer camp", doc.Find(".gallery-preview__title").Text())

	// the hidden picture is skipped
	srcs := doc.Find("img").Map(func(_ int, s *goquery.Selection) string { return s.AttrOr("src", "") })
	assert.Equal(t, []string{"/uploads/6/a.jpg", "/uploads/6/c.jpg", "/uploads/6/d.jpg"}, srcs)
}

func TestGallery_DefaultCount(t *testing.T) {
	out, err := newGallery(LayoutPreview).Render(context.Background(), macro.NewParams("id", "6"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPictureCount, parse(t, out).Find("img").Length())

	out, err = newGallery(LayoutPreview).Render(context.Background(), macro.NewParams("id", "6", "count", "-1"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPictureCount, parse(t, out).Find("img").Length())
}

func TestGallery_Trapezoid(t *testing.T) {
	params := macro.NewParams("id", "6", "height", "320px", "top", "<script>x</script>Hello", "second", "A & B", "toLeft", "1")
	out, err := newGallery(LayoutTrapezoid).Render(context.Background(), params)
	require.NoError(t, err)

	doc := parse(t, out)
	root := doc.Find(".gallery-trapezoid")
	assert.True(t, root.HasClass("gallery-trapezoid--left"))
	assert.Contains(t, root.AttrOr("style", ""), "320px")
	assert.Equal(t, "Hello", doc.Find(".gallery-trapezoid__top").Text())
	assert.Equal(t, "A & B", doc.Find(".gallery-trapezoid__second").Text())
	assert.Zero(t, doc.Find("script").Length())
	assert.Equal(t, 5, doc.Find(".gallery-trapezoid__photo").Length())
}

func TestGallery_InvalidParams(t *testing.T) {
	g := newGallery(LayoutPreview)
	ctx := context.Background()

	for _, p := range []macro.Params{
		macro.NewParams(),
		macro.NewParams("id", "abc"),
		macro.NewParams("id", "0"),
		macro.NewParams("id", "6", "height", "100px; color: red"),
	} {
		_, err := g.Render(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidParam, "%v", p.Map())
	}

	_, err := g.Render(ctx, macro.NewParams("id", "7"))
	assert.Error(t, err, "unpublished gallery")
	_, err = g.Render(ctx, macro.NewParams("id", "99"))
	assert.Error(t, err, "missing gallery")
}

func TestContactForm(t *testing.T) {
	f := &ContactForm{settings: fakeSettings{model.ConfigKeyContactIntro: "Write <i>us</i>"}, links: route.NewBuilder()}
	out, err := f.Render(context.Background(), macro.Params{})
	require.NoError(t, err)

	doc := parse(t, out)
	form := doc.Find("form.contact-form")
	assert.Equal(t, "/contact", form.AttrOr("action", ""))
	assert.Equal(t, "post", form.AttrOr("method", ""))
	assert.Equal(t, "Write us", doc.Find(".contact-form__intro").Text())
	for _, name := range []string{"name", "email", "phone", "message", HoneypotField} {
		assert.Equal(t, 1, doc.Find("[name="+name+"]").Length(), name)
	}

	out, err = (&ContactForm{}).Render(context.Background(), macro.Params{})
	require.NoError(t, err)
	assert.Equal(t, DefaultContactIntro, parse(t, out).Find(".contact-form__intro").Text())
}

func TestCalendar_BinaryMonth(t *testing.T) {
	now := func() time.Time { return time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC) }
	src := &fakeCalendar{blocked: []time.Time{
		time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC),
	}}
	c := NewCalendar(src, route.NewBuilder(), now)

	m, err := c.Month(context.Background(), 2026, 2, "")
	require.NoError(t, err)

	assert.Equal(t, ModeBinary, m.Mode)
	assert.Equal(t, "February", m.MonthName)
	require.Len(t, m.Weeks, 5)
	// 1 February 2026 is a Sunday
	for i := 0; i < 6; i++ {
		assert.Nil(t, m.Weeks[0][i])
	}
	require.NotNil(t, m.Weeks[0][6])
	assert.Equal(t, 1, m.Weeks[0][6].Day)
	assert.Nil(t, m.Weeks[4][6])

	assert.True(t, m.Weeks[2][5].Blocked)
	assert.Equal(t, "2026-02-14", m.Weeks[2][5].Date)
	assert.True(t, m.Weeks[2][1].Today)

	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), src.from)
	assert.Equal(t, 28, src.to.Day())

	assert.Equal(t, "/calendar?month=1&year=2026", m.PrevLink)
	assert.Equal(t, "/calendar?month=3&year=2026", m.NextLink)
}

func TestCalendar_RollsOverYear(t *testing.T) {
	c := NewCalendar(nil, nil, nil)
	m, err := c.Month(context.Background(), 2025, 13, ModeBinary)
	require.NoError(t, err)
	assert.Equal(t, 2026, m.Year)
	assert.Equal(t, 1, m.Month)
	assert.Empty(t, m.PrevLink)
}

func TestCalendar_RenderEvents(t *testing.T) {
	now := func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) }
	src := &fakeCalendar{events: []model.CalendarEvent{
		{ID: 1, Title: "Open <b>day</b>", Color: "#aa0000", StartsAt: time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)},
	}}
	c := NewCalendar(src, route.NewBuilder(), now)

	out, err := c.Render(context.Background(), macro.NewParams("mode", ModeEvents))
	require.NoError(t, err)

	doc := parse(t, out)
	assert.True(t, doc.Find(".calendar").HasClass("calendar--events"))
	ev := doc.Find(`td[data-date="2026-03-05"] .calendar__event`)
	assert.Equal(t, "Open day", ev.Text())
	assert.Equal(t, 1, doc.Find(".calendar__day--today").Length())
	assert.Equal(t, "/calendar?mode=events&month=4&year=2026", doc.Find(".calendar__next").AttrOr("href", ""))

	_, err = c.Render(context.Background(), macro.NewParams("mode", "weekly"))
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestRegister_ExpandsThroughMacro(t *testing.T) {
	reg := macro.NewRegistry()
	require.NoError(t, Register(reg, Deps{
		Galleries: testGalleries(),
		Calendar:  &fakeCalendar{},
		Settings:  fakeSettings{},
		Links:     route.NewBuilder(),
	}))
	assert.Len(t, reg.Keys(), 4)

	e := macro.New(macro.DefaultAllowlist(), reg)
	out := e.Expand(context.Background(), "<p>x</p>[[@gallery::preview|id=6|count=2]][[@form::contact]][[@gallery::preview|id=99]]")

	doc := parse(t, out)
	assert.Equal(t, 2, doc.Find(".gallery-preview img").Length())
	assert.Equal(t, 1, doc.Find("form.contact-form").Length())
	assert.Contains(t, out, "[[@gallery::preview|id=99]]")

	assert.ErrorIs(t, Register(reg, Deps{}), macro.ErrDuplicateRenderer)
}
