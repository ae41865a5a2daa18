// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/paginate"
	"github.com/danielhkuo/ballotboard/report"
	"github.com/danielhkuo/ballotboard/tally"
)

// maxPageSize caps the size query parameter of paged endpoints
const maxPageSize = 1000

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	src   fetcher.Source
	agg   *tally.Aggregator
	audit *auditLog
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, svc Services) *ResultsHandler {
	agg := svc.Aggregator
	if agg == nil {
		agg = &tally.Aggregator{Metrics: svc.Metrics}
	}
	return &ResultsHandler{
		db:    db,
		cfg:   cfg,
		src:   svc.Source,
		agg:   agg,
		audit: &auditLog{db: db, cfg: cfg},
	}
}

// aggregate fetches election details and ranks them. On failure the error
// response has already been written.
func (h *ResultsHandler) aggregate(w http.ResponseWriter, r *http.Request) (models.AggregatedResults, bool) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return models.AggregatedResults{}, false
	}

	e, err := h.src.ElectionDetails(r.Context(), electionID)
	if err != nil {
		writeFetchError(w, err)
		return models.AggregatedResults{}, false
	}

	return h.agg.Aggregate(e), true
}

// GetResults handles GET /elections/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetPositionPage handles GET /elections/{id}/results/positions/{page}
// Out-of-range pages are clamped to the nearest position.
func (h *ResultsHandler) GetPositionPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	results, ok := h.aggregate(w, r)
	if !ok {
		return
	}

	position, index, found := paginate.PageOfPositions(results.Positions, page)
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election has no positions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PositionPageResponse{
		Page:     index,
		Pages:    len(results.Positions),
		Position: position,
	})
}

// GetReport handles GET /elections/{id}/report
func (h *ResultsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	results, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report.Assemble(results))
}

// ExportCSV handles GET /elections/{id}/results/export.csv
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	results, ok := h.aggregate(w, r)
	if !ok {
		return
	}

	// Render fully before writing headers so a failure can still be a 500
	var buf bytes.Buffer
	if err := report.WriteResultsCSV(&buf, results); err != nil {
		slog.Error("failed to render results csv", "election_id", results.ElectionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export results")
		return
	}

	h.audit.record(r, models.ActionExportResults, "election", results.ElectionID)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="election-%s-results.csv"`, results.ElectionID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetVoterCodes handles GET /elections/{id}/voter-codes?page=&size=
func (h *ResultsHandler) GetVoterCodes(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	page, err := queryInt(r, "page", 0)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := queryInt(r, "size", h.cfg.PageSize)
	if err != nil || size == 0 || size > maxPageSize {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("size must be between 1 and %d", maxPageSize))
		return
	}

	codes, err := h.src.VoterCodes(r.Context(), electionID)
	if err != nil {
		writeFetchError(w, err)
		return
	}

	chunk, index, pages := paginate.Page(codes, size, page)

	middleware.JSONResponse(w, http.StatusOK, models.VoterCodesPageResponse{
		Page:       index,
		Pages:      pages,
		PageSize:   size,
		Total:      len(codes),
		VoterCodes: chunk,
	})
}

// GetBulletin handles GET /elections/{id}/bulletin?index=
// The index wraps around the carousel, so any non-negative value resolves.
func (h *ResultsHandler) GetBulletin(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	index, err := queryInt(r, "index", 0)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := fetcher.FetchBulletin(r.Context(), h.src, electionID)
	if err != nil {
		writeFetchError(w, err)
		return
	}

	bulletin := paginate.Bulletin{
		VoterCodes: data.VoterCodes,
		Positions:  data.Positions,
		Results:    h.agg.Aggregate(data.Election),
		PageSize:   h.cfg.PageSize,
	}

	middleware.JSONResponse(w, http.StatusOK, bulletin.Item(index))
}
