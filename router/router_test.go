// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/handlers"
	"github.com/danielhkuo/ballotboard/live"
	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/tally"
	"github.com/danielhkuo/ballotboard/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.Upstream) {
	t.Helper()

	up := testutil.NewUpstream(t)
	up.SetElection(testutil.SampleElection("e1"))
	up.SetVoters("e1", testutil.SampleVoters())
	up.SetVoterCodes("e1", testutil.SampleCodes(10))

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(up.URL)

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	src := fetcher.New(fetcher.Config{BaseURL: up.URL, Metrics: m})
	agg := &tally.Aggregator{Location: time.UTC, Metrics: m}
	registry := live.NewRegistry(src, live.Options{
		Aggregator: agg,
		Metrics:    m,
		Intervals: live.Intervals{
			Countdown:        time.Hour,
			Refresh:          time.Hour,
			PositionCarousel: time.Hour,
			BulletinCarousel: time.Hour,
		},
	})
	t.Cleanup(registry.CloseAll)

	svc := handlers.Services{Source: src, Aggregator: agg, Live: registry, Metrics: m}
	return NewRouter(db, cfg, svc, reg), up
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "ballotboard API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	// Only the exact root answers; unknown paths are 404
	req = httptest.NewRequest("GET", "/nope", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Status codes other than 404/405 prove the handler ran
	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/elections/e1/results", http.StatusOK},
		{"GET", "/elections/e1/results/positions/1", http.StatusOK},
		{"GET", "/elections/e1/results/export.csv", http.StatusOK},
		{"GET", "/elections/e1/report", http.StatusOK},
		{"GET", "/elections/e1/voter-codes?page=0&size=5", http.StatusOK},
		{"GET", "/elections/e1/bulletin?index=1", http.StatusOK},
		{"POST", "/elections/e1/snapshots", http.StatusUnauthorized},
		{"GET", "/elections/e1/live", http.StatusNotFound},
		{"PUT", "/elections/e1/live/cursor", http.StatusNotFound},
		{"DELETE", "/elections/e1/live", http.StatusNotFound},
		{"POST", "/elections/e1/live", http.StatusCreated},
		{"GET", "/audit-logs", http.StatusOK},
		{"GET", "/audit-logs/export.csv", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d: %s", tc.expectedStatus, tc.method, tc.path, w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Test that unsupported methods on defined routes return 405
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},                // Only GET is defined
		{"DELETE", "/elections/e1/results"}, // Only GET is defined
		{"GET", "/elections/e1/live/cursor"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, _ := newTestRouter(t)

	t.Run("election ID extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/e1/results/positions/2", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.PositionPageResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Page != 2 || resp.Position.ID != "sec" {
			t.Errorf("Expected page 2 (sec), got %d (%s)", resp.Page, resp.Position.ID)
		}
	})

	t.Run("unknown election", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/other/results", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Generate some traffic first
	for range 2 {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/elections/e1/results", nil))
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{
		`ballotboard_http_requests_total{code="200",route="GET /elections/{id}/results"} 2`,
		`ballotboard_upstream_fetch_total{op="details",result="ok"} 2`,
		`ballotboard_aggregations_total 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics to contain %q", want)
		}
	}
}

func TestUpstreamOutageThroughRouter(t *testing.T) {
	mux, up := newTestRouter(t)
	up.Fail(http.StatusServiceUnavailable)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/elections/e1/report", nil))
	testutil.AssertStatus(t, w, http.StatusBadGateway)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Retryable || resp.Message == "" {
		t.Errorf("Expected retryable error with message, got %+v", resp)
	}
}
