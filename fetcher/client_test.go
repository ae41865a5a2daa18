// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotboard/metrics"
)

const detailsJSON = `{"election": {"id": "e1", "title": "Student Council", "status": "completed",
	"voter_count": 3, "vote_count": 3,
	"positions": [{"id": "p1", "name": "President", "max_choices": 1, "candidates": [
		{"id": "a", "first_name": "Juan", "last_name": "Cruz", "vote_count": 1},
		{"id": "b", "first_name": "Pedro", "last_name": "Santos", "vote_count": 2}
	]}]}}`

type fakeUpstream struct {
	*httptest.Server
	hits       atomic.Int64
	lastAuth   atomic.Value
	failStatus atomic.Int64
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /elections/{id}/{resource}", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))

		if status := int(f.failStatus.Load()); status != 0 {
			http.Error(w, `{"error":"upstream unavailable"}`, status)
			return
		}
		if r.PathValue("id") != "e1" {
			http.Error(w, `{"error":"election not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("resource") {
		case "details":
			w.Write([]byte(detailsJSON))
		case "votes-per-candidate":
			w.Write([]byte(`{"positions": [{"id": "p1", "name": "President", "candidates": [
				{"id": "a", "vote_count": 1, "voters": [{"verificationCode": "C1"}]},
				{"id": "b", "vote_count": 2, "voters": [{"verificationCode": "C2"}, {"verificationCode": "C3"}]}
			]}]}`))
		case "voter-codes":
			w.Write([]byte(`[{"verificationCode": "C1"}, {"verificationCode": "C2"}, {"verificationCode": "C3"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func TestClientElectionDetails(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL + "/", Token: "secret"})

	e, err := c.ElectionDetails(context.Background(), "e1")
	require.NoError(t, err)

	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Student Council", e.Title)
	require.Len(t, e.Positions, 1)
	assert.Len(t, e.Positions[0].Candidates, 2)
	assert.Equal(t, "Bearer secret", up.lastAuth.Load())
}

func TestClientNotFoundIsNotRetryable(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL})

	_, err := c.ElectionDetails(context.Background(), "missing")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, OpDetails, fe.Op)
	assert.Equal(t, "missing", fe.ElectionID)
	assert.True(t, fe.NotFound())
	assert.False(t, fe.Retryable())
	assert.Contains(t, fe.Error(), "404")
}

func TestClientServerErrorIsRetryable(t *testing.T) {
	up := newFakeUpstream(t)
	up.failStatus.Store(http.StatusBadGateway)
	c := New(Config{BaseURL: up.URL})

	_, err := c.VoterCodes(context.Background(), "e1")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.True(t, fe.Retryable())
	assert.False(t, fe.NotFound())
}

func TestClientUnreachableIsRetryable(t *testing.T) {
	up := newFakeUpstream(t)
	url := up.URL
	up.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.ElectionDetails(context.Background(), "e1")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.True(t, fe.Retryable())
}

func TestClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"election": `))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	_, err := c.ElectionDetails(context.Background(), "e1")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusOK, fe.StatusCode)
}

func TestClientCachesAndInvalidates(t *testing.T) {
	up := newFakeUpstream(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	c := New(Config{BaseURL: up.URL, CacheTTL: time.Minute, Metrics: m})
	ctx := context.Background()

	_, err := c.VotesPerCandidate(ctx, "e1")
	require.NoError(t, err)
	_, err = c.VotesPerCandidate(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), up.hits.Load())

	c.Invalidate("e1")
	_, err = c.VotesPerCandidate(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), up.hits.Load())

	expected := `
# HELP ballotboard_upstream_fetch_total Requests made to the upstream election API.
# TYPE ballotboard_upstream_fetch_total counter
ballotboard_upstream_fetch_total{op="votes_per_candidate",result="cached"} 1
ballotboard_upstream_fetch_total{op="votes_per_candidate",result="ok"} 2
`
	assert.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "ballotboard_upstream_fetch_total"))
}

func TestClientWithoutCacheAlwaysFetches(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL})

	for range 3 {
		_, err := c.VoterCodes(context.Background(), "e1")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), up.hits.Load())
	c.Invalidate("e1")
}

func TestClientHonorsCanceledContext(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL, RequestsPerSecond: 0.001, Burst: 1})

	ctx := context.Background()
	_, err := c.VoterCodes(ctx, "e1")
	require.NoError(t, err)

	// The limiter has no tokens left; a canceled context must not block
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.VoterCodes(canceled, "e1")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, int64(1), up.hits.Load())
}

func TestFetchBulletin(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL})

	data, err := FetchBulletin(context.Background(), c, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", data.Election.ID)
	require.Len(t, data.Positions, 1)
	assert.Len(t, data.Positions[0].Candidates[1].Voters, 2)
	assert.Len(t, data.VoterCodes, 3)
}

func TestFetchBulletinFailsAsAWhole(t *testing.T) {
	up := newFakeUpstream(t)
	c := New(Config{BaseURL: up.URL})

	data, err := FetchBulletin(context.Background(), c, "missing")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.NotFound())
	assert.Empty(t, data.Election.ID)
	assert.Nil(t, data.VoterCodes)
}
