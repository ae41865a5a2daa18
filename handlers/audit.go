// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotboard/auth"
	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/report"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
	// exportAuditLimit bounds the CSV export
	exportAuditLimit = 100000
)

// auditLog writes and reads the audit_log table
type auditLog struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func (a *auditLog) timestamp() time.Time {
	if a.now != nil {
		return a.now().UTC()
	}
	return time.Now().UTC()
}

// record stores one audit entry for the caller of r. The caller counts as
// admin when it presents a valid admin key for the election it acted on.
// Failures are logged and never fail the request.
func (a *auditLog) record(r *http.Request, action, entityType, entityID string) {
	role := auth.RolePublic
	if entityType == "election" && auth.RequestAdminKey(r, entityID, a.cfg.AdminKeySalt) == nil {
		role = auth.RoleAdmin
	}
	a.insert(r.Context(), models.AuditEntry{
		ID:         auth.NewID(),
		Time:       a.timestamp(),
		User:       auth.HashIP(middleware.GetClientIP(r), a.cfg.AdminKeySalt),
		Role:       role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	})
}

func (a *auditLog) insert(ctx context.Context, e models.AuditEntry) {
	// The entry outlives a client that hangs up mid-request
	_, err := a.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO audit_log (id, created_at, actor, role, action, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Time, e.User, e.Role, e.Action, e.EntityType, e.EntityID)
	if err != nil {
		slog.Error("failed to record audit entry", "action", e.Action, "entity_id", e.EntityID, "error", err)
		return
	}
	slog.Debug("audit", "action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID, "role", e.Role)
}

// list returns up to limit entries, newest first
func (a *auditLog) list(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, actor, role, action, entity_type, entity_id
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Time, &e.User, &e.Role, &e.Action, &e.EntityType, &e.EntityID); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type AuditHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	log *auditLog
}

func NewAuditHandler(db *sql.DB, cfg cliparse.Config) *AuditHandler {
	return &AuditHandler{db: db, cfg: cfg, log: &auditLog{db: db, cfg: cfg}}
}

// ListAuditLogs handles GET /audit-logs?limit=
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultAuditLimit)
	if err != nil || limit == 0 || limit > maxAuditLimit {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxAuditLimit))
		return
	}

	entries, err := h.log.list(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// ExportCSV handles GET /audit-logs/export.csv
func (h *AuditHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.list(r.Context(), exportAuditLimit)
	if err != nil {
		slog.Error("failed to list audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAuditCSV(&buf, entries); err != nil {
		slog.Error("failed to render audit csv", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export audit log")
		return
	}

	// Recorded after the read so the export does not contain itself
	h.log.record(r, models.ActionExportAudit, "audit_log", "all")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
