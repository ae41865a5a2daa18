// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballotboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, svc, registry)

Every API route is wrapped with request logging and with request metrics
labelled by the route pattern.

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Results (public):

	GET /elections/{id}/results                  - Ranked results
	GET /elections/{id}/results/positions/{page} - One position per page
	GET /elections/{id}/results/export.csv       - Results CSV
	GET /elections/{id}/report                   - Report grouped by position
	GET /elections/{id}/voter-codes              - Paged voter codes
	GET /elections/{id}/bulletin                 - One bulletin carousel slide

Snapshots:

	POST /elections/{id}/snapshots        - Freeze results (requires X-Admin-Key)
	GET  /elections/{id}/snapshots/latest - Most recent frozen results

Live boards:

	POST   /elections/{id}/live        - Open or reuse
	GET    /elections/{id}/live        - Current view
	PUT    /elections/{id}/live/cursor - Move position/codes cursors
	DELETE /elections/{id}/live        - Stop

Audit:

	GET /audit-logs            - Newest entries first
	GET /audit-logs/export.csv - Full audit CSV

# Handler Initialization

The router creates handler instances with dependency injection:

	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)
	snapshotHandler := handlers.NewSnapshotHandler(db, cfg, svc)
	liveHandler := handlers.NewLiveHandler(db, cfg, svc)
	auditHandler := handlers.NewAuditHandler(db, cfg)
*/
package router
