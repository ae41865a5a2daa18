// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Raw election data as read from the upstream API:

  - Election: metadata, counts and positions
  - Position: an office with its candidates
  - Candidate: a person or a group entry with its vote count
  - VoterCode: a ballot verification code
  - PositionVoters, CandidateVoters: verification codes per candidate

# Derived Types

Computed by package tally and never sent upstream:

  - AggregatedResults: ranked positions, turnout, countdown and warnings
  - PositionResult: ranked candidates split into top 3 and others
  - RankedCandidate: candidate with display name, rank, percentage, winner flag
  - TimeRemaining: countdown to the election's end
  - Report, ReportGroup, ReportRow: flat export records

# Persistence Types

  - ResultSnapshot: frozen aggregated results
  - AuditEntry: one audited action

# Request and Response Types

  - CursorRequest: position_index, codes_page
  - PositionPageResponse, VoterCodesPageResponse, BulletinItemResponse
  - CreateSnapshotResponse: snapshot_id, computed_at
  - LiveViewResponse: a live board's current view
  - ErrorResponse: error, message, retryable

# Constants

Election status values:

	StatusDraft     = "draft"
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusArchived  = "archived"

Audit actions:

	ActionExportResults, ActionExportAudit, ActionCreateSnapshot,
	ActionOpenLive, ActionCloseLive
*/
package models
