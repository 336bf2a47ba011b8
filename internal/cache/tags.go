// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TagTTL is how long a tag version lives. It must outlive every tagged entry.
const TagTTL = 30 * 24 * time.Hour

const tagKeyPrefix = "tag:"

// Tags implements tag-based invalidation by versioning.
//
// Every tag has a random version stored in the backend. Keys of tagged
// entries embed the current versions of their tags, so invalidating a tag
// only replaces its version: entries written under the old version are never
// read again and expire on their own.
//
// First versions are created under a lock, so one process never races with
// itself. Processes sharing a Redis backend may still both create one; the
// last write wins and the loser's entry is recomputed once.
type Tags struct {
	store Cacher
	mu    sync.Mutex
}

// NewTags creates a tag registry stored in store.
func NewTags(store Cacher) *Tags {
	return &Tags{store: store}
}

// Version returns the current version of tag, creating one if needed.
func (t *Tags) Version(ctx context.Context, tag string) (string, error) {
	v, err := t.store.Get(ctx, tagKeyPrefix+tag)
	if err == nil {
		return string(v), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if v, err := t.store.Get(ctx, tagKeyPrefix+tag); err == nil {
		return string(v), nil
	}
	return t.bump(ctx, tag)
}

// Key derives the storage key of base under the current versions of tags.
func (t *Tags) Key(ctx context.Context, base string, tags ...string) (string, error) {
	var b strings.Builder
	b.WriteString(base)
	for _, tag := range tags {
		v, err := t.Version(ctx, tag)
		if err != nil {
			return "", err
		}
		b.WriteByte('@')
		b.WriteString(v)
	}
	return b.String(), nil
}

// Invalidate gives every tag a new version.
func (t *Tags) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if _, err := t.bump(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tags) bump(ctx context.Context, tag string) (string, error) {
	v := uuid.NewString()
	if err := t.store.Set(ctx, tagKeyPrefix+tag, []byte(v), TagTTL); err != nil {
		return "", err
	}
	return v, nil
}
