// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/paginate"
	"github.com/danielhkuo/ballotboard/schedule"
	"github.com/danielhkuo/ballotboard/tally"
)

var (
	ErrNoResults     = errors.New("live board has no results yet")
	ErrCursorInvalid = errors.New("cursor out of range")
)

// Intervals configures the timers of a board
type Intervals struct {
	Countdown        time.Duration
	Refresh          time.Duration
	PositionCarousel time.Duration
	BulletinCarousel time.Duration
}

// DefaultIntervals matches the pacing of the public counting screens
func DefaultIntervals() Intervals {
	return Intervals{
		Countdown:        time.Second,
		Refresh:          time.Second,
		PositionCarousel: 10 * time.Second,
		BulletinCarousel: 5 * time.Second,
	}
}

// Board is one live counting view of an election. It owns its own cursors;
// a refresh replaces the data underneath them but never resets them.
type Board struct {
	electionID string
	src        fetcher.Source
	agg        *tally.Aggregator
	intervals  Intervals
	pageSize   int
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.RWMutex
	election    *models.Election
	results     *models.AggregatedResults
	bulletin    paginate.Bulletin
	position    paginate.Cursor
	codesPage   int
	carousel    paginate.Cursor
	refreshedAt time.Time
	lastErr     error
	tasks       *schedule.Group

	updates Signal[models.AggregatedResults]
}

// NewBoard creates a stopped board. Call Refresh to load data and Start to
// run the timers.
func NewBoard(electionID string, src fetcher.Source, opts Options) *Board {
	opts = opts.withDefaults()
	return &Board{
		electionID: electionID,
		src:        src,
		agg:        opts.Aggregator,
		intervals:  opts.Intervals,
		pageSize:   opts.PageSize,
		logger:     opts.Logger.With("election_id", electionID),
		now:        opts.Now,
	}
}

func (b *Board) ElectionID() string { return b.electionID }

// Updates publishes every successfully refreshed aggregate
func (b *Board) Updates() *Signal[models.AggregatedResults] { return &b.updates }

// Start runs the countdown, refresh and carousel timers. Starting a running
// board does nothing.
func (b *Board) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tasks != nil {
		return
	}

	g := &schedule.Group{}
	g.Every(ctx, b.intervals.Countdown, func(context.Context) { b.tickCountdown() })
	g.Every(ctx, b.intervals.Refresh, func(ctx context.Context) { _ = b.Refresh(ctx) })
	g.Every(ctx, b.intervals.PositionCarousel, func(context.Context) { b.advancePosition() })
	g.Every(ctx, b.intervals.BulletinCarousel, func(context.Context) { b.advanceBulletin() })
	b.tasks = g

	b.logger.Info("live board started")
}

// Stop cancels every timer. No tick starts after Stop returns.
func (b *Board) Stop() {
	b.mu.Lock()
	g := b.tasks
	b.tasks = nil
	b.mu.Unlock()

	if g == nil {
		return
	}
	g.StopAll()
	b.logger.Info("live board stopped")
}

// Running reports whether the timers are active
func (b *Board) Running() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tasks != nil
}

// Refresh fetches a fresh snapshot and recomputes the aggregate. Cursors keep
// their values and are only pulled back if the new data is smaller. On failure
// the previous data stays visible and the error is kept for the view.
func (b *Board) Refresh(ctx context.Context) error {
	data, err := fetcher.FetchBulletin(ctx, b.src, b.electionID)
	if err != nil {
		b.mu.Lock()
		b.lastErr = err
		b.mu.Unlock()
		b.logger.Warn("live refresh failed", "error", err)
		return err
	}

	results := b.agg.Aggregate(data.Election)

	b.mu.Lock()
	b.election = &data.Election
	b.results = &results
	b.bulletin = paginate.Bulletin{
		VoterCodes: data.VoterCodes,
		Positions:  data.Positions,
		Results:    results,
		PageSize:   b.pageSize,
	}
	b.position.Clamp(len(results.Positions))
	b.codesPage = clampPage(b.codesPage, b.codesPagesLocked())
	b.carousel.Clamp(b.bulletin.Layout().Total())
	b.refreshedAt = b.now()
	b.lastErr = nil
	b.mu.Unlock()

	b.updates.Publish(results)
	return nil
}

// SetPosition moves the position carousel to i
func (b *Board) SetPosition(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.results == nil {
		return ErrNoResults
	}
	if i < 0 || i >= len(b.results.Positions) {
		return fmt.Errorf("%w: position %d of %d", ErrCursorInvalid, i, len(b.results.Positions))
	}
	b.position.Index = i
	return nil
}

// SetCodesPage moves the voter code listing to page i
func (b *Board) SetCodesPage(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.results == nil {
		return ErrNoResults
	}
	pages := b.codesPagesLocked()
	if i < 0 || (pages > 0 && i >= pages) || (pages == 0 && i != 0) {
		return fmt.Errorf("%w: page %d of %d", ErrCursorInvalid, i, pages)
	}
	b.codesPage = i
	return nil
}

// View is a consistent copy of the board's state
func (b *Board) View() models.LiveViewResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()

	view := models.LiveViewResponse{
		ElectionID:    b.electionID,
		Running:       b.tasks != nil,
		PositionIndex: b.position.Index,
		CodesPage:     b.codesPage,
		CodesPages:    b.codesPagesLocked(),
		BulletinIndex: b.carousel.Index,
	}

	if b.results != nil {
		results := *b.results
		view.Results = &results
		if p, _, ok := paginate.PageOfPositions(results.Positions, b.position.Index); ok {
			view.CurrentPosition = &p
		}
		item := b.bulletin.Item(b.carousel.Index)
		view.Bulletin = &item
	}

	if !b.refreshedAt.IsZero() {
		at := b.refreshedAt
		view.RefreshedAt = &at
		view.RefreshedAgo = humanize.RelTime(at, b.now(), "ago", "from now")
	}

	if b.lastErr != nil {
		view.Error = b.lastErr.Error()
		var fe *fetcher.FetchError
		view.Retryable = errors.As(b.lastErr, &fe) && fe.Retryable()
	}

	return view
}

func (b *Board) tickCountdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.election == nil || b.results == nil {
		return
	}
	// Replace rather than mutate so views already handed out stay unchanged
	results := *b.results
	results.TimeRemaining = b.agg.Countdown(*b.election)
	b.results = &results
}

func (b *Board) advancePosition() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.results == nil {
		return
	}
	b.position.Advance(len(b.results.Positions))
}

func (b *Board) advanceBulletin() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.carousel.Advance(b.bulletin.Layout().Total())
}

func (b *Board) codesPagesLocked() int {
	return paginate.PageCount(len(b.bulletin.VoterCodes), b.pageSize)
}

func clampPage(i, pages int) int {
	if pages <= 0 || i < 0 {
		return 0
	}
	return min(i, pages-1)
}
