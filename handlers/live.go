// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/live"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/models"
)

// LiveHandler exposes the live counting boards
type LiveHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	live  *live.Registry
	audit *auditLog
}

func NewLiveHandler(db *sql.DB, cfg cliparse.Config, svc Services) *LiveHandler {
	return &LiveHandler{
		db:    db,
		cfg:   cfg,
		live:  svc.Live,
		audit: &auditLog{db: db, cfg: cfg},
	}
}

// OpenBoard handles POST /elections/{id}/live
// Returns 201 when a board was started, 200 when it was already running.
func (h *LiveHandler) OpenBoard(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	board, created, err := h.live.Open(r.Context(), electionID)
	if err != nil {
		writeFetchError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.audit.record(r, models.ActionOpenLive, "election", electionID)
	}
	middleware.JSONResponse(w, status, board.View())
}

// GetBoard handles GET /elections/{id}/live
func (h *LiveHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.live.Get(r.PathValue("id"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "No live board for this election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, board.View())
}

// SetCursor handles PUT /elections/{id}/live/cursor
func (h *LiveHandler) SetCursor(w http.ResponseWriter, r *http.Request) {
	board, ok := h.live.Get(r.PathValue("id"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "No live board for this election")
		return
	}

	var req models.CursorRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Cursor values must be non-negative")
		return
	}
	if req.PositionIndex == nil && req.CodesPage == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position_index or codes_page is required")
		return
	}

	if req.PositionIndex != nil {
		if err := board.SetPosition(*req.PositionIndex); err != nil {
			writeCursorError(w, err)
			return
		}
	}
	if req.CodesPage != nil {
		if err := board.SetCodesPage(*req.CodesPage); err != nil {
			writeCursorError(w, err)
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, board.View())
}

// CloseBoard handles DELETE /elections/{id}/live
func (h *LiveHandler) CloseBoard(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !h.live.Close(electionID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No live board for this election")
		return
	}
	h.audit.record(r, models.ActionCloseLive, "election", electionID)
	w.WriteHeader(http.StatusNoContent)
}

func writeCursorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, live.ErrNoResults):
		middleware.ErrorResponse(w, http.StatusConflict, "Board has no results yet")
	case errors.Is(err, live.ErrCursorInvalid):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to move cursor")
	}
}
