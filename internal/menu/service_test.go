// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/sitekit/internal/cache"
	"github.com/olegiv/sitekit/internal/model"
	"github.com/olegiv/sitekit/internal/route"
)

type fakeSource struct {
	mu      sync.Mutex
	entries map[string][]model.MenuEntry
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (f *fakeSource) FindByKey(ctx context.Context, key string, _ bool) ([]model.MenuEntry, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[key], nil
}

func (f *fakeSource) FindKeys(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeSource) set(key string, entries []model.MenuEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = entries
}

func newTestService(t *testing.T, src *fakeSource) *Service {
	t.Helper()
	backend := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = backend.Close() })
	return NewService(src, NewResolver(route.NewBuilder()), WithCache(backend, time.Hour))
}

func TestService_CachesStructure(t *testing.T) {
	src := &fakeSource{entries: map[string][]model.MenuEntry{"main": sampleEntries()}}
	svc := newTestService(t, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		nodes, err := svc.Navigation(ctx, "main", model.Route{})
		require.NoError(t, err)
		assert.Len(t, nodes, 3)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestService_ActiveStateIsNotCached(t *testing.T) {
	src := &fakeSource{entries: map[string][]model.MenuEntry{"main": sampleEntries()}}
	svc := newTestService(t, src)
	ctx := context.Background()

	team, err := svc.Navigation(ctx, "main", articleRoute("team"))
	require.NoError(t, err)
	history, err := svc.Navigation(ctx, "main", articleRoute("history"))
	require.NoError(t, err)
	home, err := svc.Navigation(ctx, "main", model.Route{Name: model.RouteHome, Action: model.ActionDefault})
	require.NoError(t, err)

	assert.True(t, team[1].Children[1].IsActive)
	assert.False(t, team[1].Children[0].IsActive)

	assert.True(t, history[1].Children[0].IsActive)
	assert.False(t, history[1].Children[1].IsActive)

	assert.True(t, home[0].IsActive)
	assert.False(t, home[1].IsActive)

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestService_Invalidate(t *testing.T) {
	src := &fakeSource{entries: map[string][]model.MenuEntry{
		"main":   sampleEntries(),
		"footer": {{ID: 20, Label: "Contact", Position: 1, Target: &model.Target{Presenter: model.RouteContact}}},
	}}
	svc := newTestService(t, src)
	ctx := context.Background()

	_, _ = svc.Navigation(ctx, "main", model.Route{})
	_, _ = svc.Navigation(ctx, "footer", model.Route{})
	require.Equal(t, int32(2), src.calls.Load())

	src.set("main", sampleEntries()[:2])
	require.NoError(t, svc.Invalidate(ctx, "main"))

	nodes, err := svc.Navigation(ctx, "main", model.Route{})
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	_, _ = svc.Navigation(ctx, "footer", model.Route{})
	assert.Equal(t, int32(3), src.calls.Load(), "footer stays cached")

	require.NoError(t, svc.InvalidateAll(ctx))
	_, _ = svc.Navigation(ctx, "main", model.Route{})
	_, _ = svc.Navigation(ctx, "footer", model.Route{})
	assert.Equal(t, int32(5), src.calls.Load())
}

func TestService_ConcurrentMissesLoadOnce(t *testing.T) {
	src := &fakeSource{
		entries: map[string][]model.MenuEntry{"main": sampleEntries()},
		release: make(chan struct{}),
	}
	svc := newTestService(t, src)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make([][]Node, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nodes, err := svc.Navigation(ctx, "main", model.Route{})
			assert.NoError(t, err)
			results[i] = nodes
		}(i)
	}

	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, nodes := range results {
		assert.Len(t, nodes, 3)
	}
}

func TestService_CancelledLeaderDoesNotFailWaiters(t *testing.T) {
	src := &fakeSource{
		entries: map[string][]model.MenuEntry{"main": sampleEntries()},
		release: make(chan struct{}),
	}
	svc := newTestService(t, src)

	leaderCtx, cancel := context.WithCancel(context.Background())
	var leaderErr, waiterErr error
	var waiterNodes []Node
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, leaderErr = svc.Navigation(leaderCtx, "main", model.Route{})
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	go func() {
		defer wg.Done()
		waiterNodes, waiterErr = svc.Navigation(context.Background(), "main", model.Route{})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(src.release)
	wg.Wait()

	require.NoError(t, waiterErr)
	assert.Len(t, waiterNodes, 3)
	assert.NoError(t, leaderErr)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestService_SourceErrorIsReturned(t *testing.T) {
	boom := errors.New("db down")
	src := &fakeSource{entries: map[string][]model.MenuEntry{}, err: boom}
	svc := newTestService(t, src)

	_, err := svc.Navigation(context.Background(), "main", model.Route{})
	assert.ErrorIs(t, err, boom)

	// failures are not cached
	src.mu.Lock()
	src.err = nil
	src.entries["main"] = sampleEntries()
	src.mu.Unlock()
	nodes, err := svc.Navigation(context.Background(), "main", model.Route{})
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestService_WithoutCache(t *testing.T) {
	src := &fakeSource{entries: map[string][]model.MenuEntry{"main": sampleEntries()}}
	svc := NewService(src, NewResolver(route.NewBuilder()))
	ctx := context.Background()

	_, _ = svc.Navigation(ctx, "main", model.Route{})
	_, _ = svc.Navigation(ctx, "main", model.Route{})
	assert.Equal(t, int32(2), src.calls.Load())
	assert.NoError(t, svc.Invalidate(ctx, "main"))
	assert.NoError(t, svc.InvalidateAll(ctx))

	keys, err := svc.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, keys)
}

func TestService_BackendDown(t *testing.T) {
	src := &fakeSource{entries: map[string][]model.MenuEntry{"main": sampleEntries()}}
	backend := cache.NewSimpleMemoryCache(time.Hour)
	_ = backend.Close()
	svc := NewService(src, NewResolver(route.NewBuilder()), WithCache(backend, 0))

	nodes, err := svc.Navigation(context.Background(), "main", model.Route{})
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}
