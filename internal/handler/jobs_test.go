// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/scheduler"
	"github.com/olegiv/sitekit/internal/store"
)

func TestJobsList(t *testing.T) {
	site := newTestSite(t)

	assert.Equal(t, http.StatusUnauthorized, site.get(t, "/-/jobs").Code)

	rec := site.do(t, adminRequest(http.MethodGet, "/-/jobs"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []scheduler.JobInfo `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Jobs, 2)
	assert.Equal(t, scheduler.JobConfigPreload, body.Jobs[0].Name)
	assert.Equal(t, scheduler.JobEventLogRetention, body.Jobs[1].Name)
}

func TestJobRun_Retention(t *testing.T) {
	site := newTestSite(t)
	events := store.NewEventLogRepository(site.db)
	ctx := context.Background()
	require.NoError(t, events.Insert(ctx, model.Event{
		Level:     model.EventLevelError,
		Category:  model.EventCategorySystem,
		Message:   "ancient",
		CreatedAt: testNow.Add(-90 * 24 * time.Hour),
	}))

	rec := site.do(t, adminRequest(http.MethodPost, "/-/jobs/"+scheduler.JobEventLogRetention+"/run"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ran":"event_log_retention"}`, rec.Body.String())

	left, err := events.Recent(ctx, 10)
	require.NoError(t, err)
	for _, e := range left {
		assert.NotEqual(t, "ancient", e.Message)
	}
}

func TestJobRun_Unknown(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(t, adminRequest(http.MethodPost, "/-/jobs/nope/run"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"job not found"}`, rec.Body.String())
}

type failingJobs struct{}

func (failingJobs) Jobs() []scheduler.JobInfo { return nil }
func (failingJobs) Trigger(context.Context, string) error {
	return errors.New("database is locked")
}

func TestJobRun_Failure(t *testing.T) {
	h := NewJobsHandler(failingJobs{}, nil)

	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest(http.MethodPost, "/-/jobs/x/run", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"job failed"}`, rec.Body.String())
}
