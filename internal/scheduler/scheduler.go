// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs of the site.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// ErrJobNotFound is returned for unknown job names.
var ErrJobNotFound = errors.New("scheduler: job not found")

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is a named unit of periodic work.
type Job struct {
	Name        string
	Description string
	Schedule    string // standard cron expression or descriptor such as "@daily"
	Run         func(ctx context.Context) error
}

type registeredJob struct {
	job     Job
	entryID cron.EntryID
	mu      sync.Mutex // serializes scheduled and manual runs
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
}

// Scheduler wraps a cron instance with named jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithTimeout bounds each job run.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLocation interprets schedules in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = newCron(s.logger, cron.WithLocation(loc))
		}
	}
}

// New creates a scheduler. Jobs recover from panics and a run is skipped
// while the previous one is still going.
func New(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:    newCron(logger),
		logger:  logger,
		timeout: DefaultJobTimeout,
		jobs:    make(map[string]*registeredJob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newCron(logger *slog.Logger, opts ...cron.Option) *cron.Cron {
	cl := cronLogger{logger: logger}
	opts = append([]cron.Option{
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	}, opts...)
	return cron.New(opts...)
}

// Add registers job. Names are unique.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("scheduler: job needs a name and a run function")
	}
	if _, err := parser.Parse(job.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("scheduler: job %s already registered", job.Name)
	}

	rj := &registeredJob{job: job}
	id, err := s.cron.AddFunc(job.Schedule, func() {
		if err := s.run(context.Background(), rj); err != nil {
			s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("adding job %s: %w", job.Name, err)
	}
	rj.entryID = id
	s.jobs[job.Name] = rj

	s.logger.Debug("registered scheduled job", "job", job.Name, "schedule", job.Schedule)
	return nil
}

func (s *Scheduler) run(ctx context.Context, rj *registeredJob) error {
	rj.mu.Lock()
	defer rj.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := rj.job.Run(ctx)
	s.logger.Debug("job finished", "job", rj.job.Name, "duration", time.Since(start), "error", err)
	return err
}

// Trigger runs a job immediately and waits for it.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.RLock()
	rj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.logger.Info("manually triggering job", "job", name)
	return s.run(ctx, rj)
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, rj := range s.jobs {
		entry := s.cron.Entry(rj.entryID)
		result = append(result, JobInfo{
			Name:        rj.job.Name,
			Description: rj.job.Description,
			Schedule:    rj.job.Schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running")
	}
}

// cronLogger forwards cron's logr style messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
