// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/models"
)

// Operation names used in errors, cache keys and metrics
const (
	OpDetails           = "details"
	OpVotesPerCandidate = "votes_per_candidate"
	OpVoterCodes        = "voter_codes"
)

const maxBodyBytes = 16 << 20

// Source supplies raw election data. *Client is the HTTP implementation.
type Source interface {
	ElectionDetails(ctx context.Context, electionID string) (models.Election, error)
	VotesPerCandidate(ctx context.Context, electionID string) ([]models.PositionVoters, error)
	VoterCodes(ctx context.Context, electionID string) ([]models.VoterCode, error)
}

var _ Source = (*Client)(nil)

type Config struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64 // <= 0 disables pacing
	Burst             int
	CacheTTL          time.Duration // <= 0 disables caching
	Timeout           time.Duration
	HTTPClient        *http.Client
	Metrics           *metrics.Collector
}

// Client reads election snapshots from the upstream election API
type Client struct {
	base    string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	metrics *metrics.Collector
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		metrics: cfg.Metrics,
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// ElectionDetails handles GET /elections/{id}/details
func (c *Client) ElectionDetails(ctx context.Context, electionID string) (models.Election, error) {
	return fetch(ctx, c, OpDetails, electionID, "details", parseDetails)
}

// VotesPerCandidate handles GET /elections/{id}/votes-per-candidate
func (c *Client) VotesPerCandidate(ctx context.Context, electionID string) ([]models.PositionVoters, error) {
	return fetch(ctx, c, OpVotesPerCandidate, electionID, "votes-per-candidate", parseVotesPerCandidate)
}

// VoterCodes handles GET /elections/{id}/voter-codes
func (c *Client) VoterCodes(ctx context.Context, electionID string) ([]models.VoterCode, error) {
	return fetch(ctx, c, OpVoterCodes, electionID, "voter-codes", parseVoterCodes)
}

// Invalidate drops every cached response for an election
func (c *Client) Invalidate(electionID string) {
	if c.cache == nil {
		return
	}
	for _, op := range []string{OpDetails, OpVotesPerCandidate, OpVoterCodes} {
		c.cache.Delete(cacheKey(op, electionID))
	}
}

func fetch[T any](ctx context.Context, c *Client, op, electionID, resource string, parse func([]byte) (T, error)) (T, error) {
	var zero T
	started := time.Now()
	key := cacheKey(op, electionID)

	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			c.metrics.ObserveFetch(op, "cached", 0)
			return v.(T), nil
		}
	}

	body, err := c.get(ctx, op, electionID, resource)
	if err != nil {
		c.metrics.ObserveFetch(op, "error", time.Since(started))
		return zero, err
	}

	v, err := parse(body)
	if err != nil {
		c.metrics.ObserveFetch(op, "error", time.Since(started))
		return zero, &FetchError{Op: op, ElectionID: electionID, StatusCode: http.StatusOK, Err: err}
	}

	c.metrics.ObserveFetch(op, "ok", time.Since(started))
	if c.cache != nil {
		c.cache.SetDefault(key, v)
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, op, electionID, resource string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Op: op, ElectionID: electionID, Err: fmt.Errorf("rate limit: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/elections/%s/%s", c.base, url.PathEscape(electionID), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Op: op, ElectionID: electionID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("upstream request failed", "op", op, "election_id", electionID, "error", err)
		return nil, &FetchError{Op: op, ElectionID: electionID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Op: op, ElectionID: electionID, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("upstream returned error status", "op", op, "election_id", electionID, "status", resp.StatusCode)
		return nil, &FetchError{
			Op:         op,
			ElectionID: electionID,
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(body)),
		}
	}

	return body, nil
}

func cacheKey(op, electionID string) string {
	return op + ":" + electionID
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response"
	}
	return s
}
