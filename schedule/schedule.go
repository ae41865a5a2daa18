// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package schedule runs recurring background work with explicit cancellation.
//
// A Task fires its function once per interval. A tick that arrives while the
// previous cycle is still running is dropped rather than queued, so a slow
// upstream never builds up a backlog of refreshes. Stop is synchronous with
// respect to scheduling: once it returns no new cycle will start. A cycle that
// is already running is allowed to finish; its context is detached from the
// task's cancellation so a half-finished fetch is not torn down mid-write.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one recurring job started by Every
type Task struct {
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	busy     atomic.Bool
	runs     atomic.Int64
	dropped  atomic.Int64
	inflight sync.WaitGroup
}

// Every starts calling fn every interval until ctx is canceled or Stop is
// called. The first call happens one interval after Every returns.
// A non-positive interval yields a task that never runs.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if interval <= 0 {
		cancel()
		close(t.done)
		return t
	}

	go t.loop(ctx, fn)
	return t
}

func (t *Task) loop(ctx context.Context, fn func(context.Context)) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may have raced with this tick
			if ctx.Err() != nil {
				return
			}
			if !t.busy.CompareAndSwap(false, true) {
				t.dropped.Add(1)
				continue
			}
			t.runs.Add(1)
			t.inflight.Add(1)
			go func() {
				defer t.inflight.Done()
				defer t.busy.Store(false)
				fn(context.WithoutCancel(ctx))
			}()
		}
	}
}

// Stop prevents any further cycles. It returns once the scheduling loop has
// exited; a cycle already in flight keeps running. Safe to call repeatedly.
func (t *Task) Stop() {
	t.stopOnce.Do(t.cancel)
	<-t.done
}

// Wait stops the task and blocks until the in-flight cycle, if any, returns
func (t *Task) Wait() {
	t.Stop()
	t.inflight.Wait()
}

// Done is closed when the scheduling loop exits
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Busy reports whether a cycle is running right now
func (t *Task) Busy() bool {
	return t.busy.Load()
}

// Runs is the number of cycles started so far
func (t *Task) Runs() int64 {
	return t.runs.Load()
}

// Dropped is the number of ticks skipped because a cycle was still running
func (t *Task) Dropped() int64 {
	return t.dropped.Load()
}

// Group owns several tasks that start and stop together
type Group struct {
	mu    sync.Mutex
	tasks []*Task
}

// Every starts a task and adds it to the group
func (g *Group) Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Task {
	t := Every(ctx, interval, fn)
	g.mu.Lock()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()
	return t
}

// StopAll stops every task in the group. Like Task.Stop it does not wait for
// in-flight cycles.
func (g *Group) StopAll() {
	g.mu.Lock()
	tasks := g.tasks
	g.tasks = nil
	g.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
}

// WaitAll stops every task and waits for their in-flight cycles
func (g *Group) WaitAll() {
	g.mu.Lock()
	tasks := g.tasks
	g.tasks = nil
	g.mu.Unlock()

	for _, t := range tasks {
		t.Wait()
	}
}

// Len is the number of tasks the group currently owns
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}
