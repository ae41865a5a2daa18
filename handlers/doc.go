// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotboard API.

# Handler Types

Each handler is a struct built from the database, the config and the shared
Services (upstream source, aggregator, live registry, metrics):

  - ResultsHandler: ranked results, position pages, reports, exports,
    voter codes and bulletin slides
  - SnapshotHandler: frozen final results
  - LiveHandler: live counting boards
  - AuditHandler: audit log listing and export

	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)

# Results

Results are computed on every request from the upstream election API:

	GET /elections/{id}/results                   → GetResults
	GET /elections/{id}/results/positions/{page}  → GetPositionPage (clamped)
	GET /elections/{id}/report                    → GetReport
	GET /elections/{id}/results/export.csv        → ExportCSV
	GET /elections/{id}/voter-codes?page=&size=   → GetVoterCodes
	GET /elections/{id}/bulletin?index=           → GetBulletin (wraps)

# Snapshots

	POST /elections/{id}/snapshots       → CreateSnapshot (X-Admin-Key)
	GET  /elections/{id}/snapshots/latest → GetLatestSnapshot

CreateSnapshot drops any cached upstream response before aggregating.

# Live Boards

	POST   /elections/{id}/live        → OpenBoard (201 new, 200 reused)
	GET    /elections/{id}/live        → GetBoard
	PUT    /elections/{id}/live/cursor → SetCursor
	DELETE /elections/{id}/live        → CloseBoard

# Errors

Upstream failures map to 502 with a retryable flag, or 404 when the upstream
does not know the election. Bad input is 400 and a wrong admin key is 401.

# Audit

Exports, snapshots and live board open/close are written to audit_log with
a salted hash of the client address. Audit failures are logged and never
fail the request.
*/
package handlers
