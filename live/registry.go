// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/paginate"
	"github.com/danielhkuo/ballotboard/tally"
)

// Options are shared by every board a registry opens
type Options struct {
	Aggregator *tally.Aggregator
	Intervals  Intervals
	PageSize   int
	Logger     *slog.Logger
	Metrics    *metrics.Collector
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Aggregator == nil {
		o.Aggregator = &tally.Aggregator{}
	}
	if o.Intervals == (Intervals{}) {
		o.Intervals = DefaultIntervals()
	}
	if o.PageSize <= 0 {
		o.PageSize = paginate.DefaultPageSize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Registry owns the running boards, one per election. Board timers run on the
// registry's own context, not on the request that opened them.
type Registry struct {
	src  fetcher.Source
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	boards map[string]*Board
}

func NewRegistry(src fetcher.Source, opts Options) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		src:    src,
		opts:   opts.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
		boards: make(map[string]*Board),
	}
}

// Open returns the running board for electionID, creating it if needed.
// A new board is loaded once with ctx before its timers start; if that first
// load fails nothing is registered. created reports whether a new board was made.
func (r *Registry) Open(ctx context.Context, electionID string) (board *Board, created bool, err error) {
	if b, ok := r.Get(electionID); ok {
		return b, false, nil
	}

	b := NewBoard(electionID, r.src, r.opts)
	if err := b.Refresh(ctx); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	if existing, ok := r.boards[electionID]; ok {
		// Another request won the race
		r.mu.Unlock()
		return existing, false, nil
	}
	r.boards[electionID] = b
	// Started under the lock so a concurrent Close cannot stop it first
	b.Start(r.ctx)
	r.mu.Unlock()

	r.opts.Metrics.LiveBoardOpened()
	return b, true, nil
}

func (r *Registry) Get(electionID string) (*Board, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[electionID]
	return b, ok
}

// Close stops and forgets the board for electionID
func (r *Registry) Close(electionID string) bool {
	r.mu.Lock()
	b, ok := r.boards[electionID]
	delete(r.boards, electionID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	b.Stop()
	r.opts.Metrics.LiveBoardClosed()
	return true
}

// CloseAll stops every board. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	boards := r.boards
	r.boards = make(map[string]*Board)
	r.mu.Unlock()

	for _, b := range boards {
		b.Stop()
		r.opts.Metrics.LiveBoardClosed()
	}
	r.cancel()
	slog.Info("live boards closed", "count", len(boards))
}

// Len is the number of open boards
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
