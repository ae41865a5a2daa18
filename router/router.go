// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/handlers"
	"github.com/danielhkuo/ballotboard/middleware"
)

// NewRouter registers every endpoint. gatherer backs GET /metrics; nil
// disables that route.
func NewRouter(db *sql.DB, cfg cliparse.Config, svc handlers.Services, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)
	snapshotHandler := handlers.NewSnapshotHandler(db, cfg, svc)
	liveHandler := handlers.NewLiveHandler(db, cfg, svc)
	auditHandler := handlers.NewAuditHandler(db, cfg)

	// Requests are counted under their pattern, not the raw path
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(svc.Metrics, pattern, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Results (public, computed from upstream on every request)
	handle("GET /elections/{id}/results", resultsHandler.GetResults)
	handle("GET /elections/{id}/results/positions/{page}", resultsHandler.GetPositionPage)
	handle("GET /elections/{id}/results/export.csv", resultsHandler.ExportCSV)
	handle("GET /elections/{id}/report", resultsHandler.GetReport)
	handle("GET /elections/{id}/voter-codes", resultsHandler.GetVoterCodes)
	handle("GET /elections/{id}/bulletin", resultsHandler.GetBulletin)

	// Snapshots (creating one requires X-Admin-Key)
	handle("POST /elections/{id}/snapshots", snapshotHandler.CreateSnapshot)
	handle("GET /elections/{id}/snapshots/latest", snapshotHandler.GetLatestSnapshot)

	// Live counting boards
	handle("POST /elections/{id}/live", liveHandler.OpenBoard)
	handle("GET /elections/{id}/live", liveHandler.GetBoard)
	handle("PUT /elections/{id}/live/cursor", liveHandler.SetCursor)
	handle("DELETE /elections/{id}/live", liveHandler.CloseBoard)

	// Audit log
	handle("GET /audit-logs", auditHandler.ListAuditLogs)
	handle("GET /audit-logs/export.csv", auditHandler.ExportCSV)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotboard API v1"))
	})

	return mux
}
