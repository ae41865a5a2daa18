// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballotboard/auth"
	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/live"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/tally"
	"github.com/danielhkuo/ballotboard/testutil"
)

// testNow is noon on the last day of the sample election
var testNow = time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db  *sql.DB
	cfg cliparse.Config
	up  *testutil.Upstream
	src *fetcher.Client
	agg *tally.Aggregator
	svc Services
}

// newTestEnv wires handlers to a fake upstream serving election "e1" with
// 120 voter codes and an in-memory database
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	up := testutil.NewUpstream(t)
	up.SetElection(testutil.SampleElection("e1"))
	up.SetVoters("e1", testutil.SampleVoters())
	up.SetVoterCodes("e1", testutil.SampleCodes(120))

	cfg := testutil.GetTestConfig(up.URL)
	cfg.PageSize = 50

	src := fetcher.New(fetcher.Config{BaseURL: up.URL})
	agg := &tally.Aggregator{Now: func() time.Time { return testNow }, Location: time.UTC}

	registry := live.NewRegistry(src, live.Options{
		Aggregator: agg,
		PageSize:   cfg.PageSize,
		// Long enough that no timer fires during a test
		Intervals: live.Intervals{
			Countdown:        time.Hour,
			Refresh:          time.Hour,
			PositionCarousel: time.Hour,
			BulletinCarousel: time.Hour,
		},
	})
	t.Cleanup(registry.CloseAll)

	return &testEnv{
		db:  testutil.SetupTestDB(t),
		cfg: cfg,
		up:  up,
		src: src,
		agg: agg,
		svc: Services{Source: src, Aggregator: agg, Live: registry},
	}
}

// do runs h against a request whose path values are set from pathValues
func do(h http.HandlerFunc, req *http.Request, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func adminHeaders(electionID string) map[string]string {
	return map[string]string{auth.AdminKeyHeader: testutil.AdminKey(electionID)}
}

// auditEntries reads the whole audit log, newest first
func auditEntries(t *testing.T, db *sql.DB) []models.AuditEntry {
	t.Helper()
	entries, err := (&auditLog{db: db}).list(t.Context(), 1000)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	return entries
}
