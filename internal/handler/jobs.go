// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/sitekit/internal/middleware"
	"github.com/olegiv/sitekit/internal/scheduler"
)

// JobRunner lists and triggers scheduled jobs. scheduler.Scheduler implements it.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(ctx context.Context, name string) error
}

// JobsHandler serves the token-protected scheduler endpoints.
type JobsHandler struct {
	jobs   JobRunner
	logger *slog.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(jobs JobRunner, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{jobs: jobs, logger: logger}
}

// List handles GET /-/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.jobs.Jobs()})
}

// Run handles POST /-/jobs/{name}/run. The job runs synchronously.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.jobs.Trigger(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		middleware.WriteJSONError(w, http.StatusNotFound, "job not found")
	case err != nil:
		h.logger.Error("manual job run failed", "job", name, "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "job failed")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ran": name})
	}
}
