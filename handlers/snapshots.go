// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotboard/auth"
	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/tally"
)

// SnapshotHandler freezes aggregated results into result_snapshot
type SnapshotHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	src   fetcher.Source
	agg   *tally.Aggregator
	audit *auditLog
}

func NewSnapshotHandler(db *sql.DB, cfg cliparse.Config, svc Services) *SnapshotHandler {
	agg := svc.Aggregator
	if agg == nil {
		agg = &tally.Aggregator{Metrics: svc.Metrics}
	}
	return &SnapshotHandler{
		db:    db,
		cfg:   cfg,
		src:   svc.Source,
		agg:   agg,
		audit: &auditLog{db: db, cfg: cfg},
	}
}

// CreateSnapshot handles POST /elections/{id}/snapshots
// Requires X-Admin-Key. Always aggregates from fresh upstream data.
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	if err := auth.RequestAdminKey(r, electionID, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if inv, ok := h.src.(invalidator); ok {
		inv.Invalidate(electionID)
	}

	e, err := h.src.ElectionDetails(r.Context(), electionID)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	results := h.agg.Aggregate(e)

	payload, err := json.Marshal(results)
	if err != nil {
		slog.Error("failed to encode snapshot", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	snapshotID := auth.NewID()
	computedAt := results.ComputedAt.UTC()

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO result_snapshot (id, election_id, status, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, snapshotID, electionID, results.Status, computedAt, string(payload))
	if err != nil {
		slog.Error("failed to insert snapshot", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	h.audit.record(r, models.ActionCreateSnapshot, "election", electionID)
	slog.Info("snapshot created", "election_id", electionID, "snapshot_id", snapshotID, "status", results.Status)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSnapshotResponse{
		SnapshotID: snapshotID,
		ComputedAt: computedAt,
	})
}

// GetLatestSnapshot handles GET /elections/{id}/snapshots/latest
func (h *SnapshotHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	var snapshot models.ResultSnapshot
	var payload string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, election_id, status, computed_at, payload
		FROM result_snapshot
		WHERE election_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`, electionID).Scan(
		&snapshot.ID, &snapshot.ElectionID, &snapshot.Status,
		&snapshot.ComputedAt, &payload,
	)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No snapshot for this election")
		return
	}
	if err != nil {
		slog.Error("failed to query snapshot", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := json.Unmarshal([]byte(payload), &snapshot.Results); err != nil {
		slog.Error("failed to parse snapshot payload", "snapshot_id", snapshot.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to parse results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snapshot)
}
