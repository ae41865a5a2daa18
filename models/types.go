// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election status constants
const (
	StatusDraft     = "draft"
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Warning kinds raised by the aggregator
const (
	WarnVotesExceedVoters = "votes_exceed_voters"
	WarnTooFewCandidates  = "too_few_candidates"
	WarnNegativeCount     = "negative_count"
)

// Audit actions
const (
	ActionExportResults  = "export_results"
	ActionExportAudit    = "export_audit"
	ActionCreateSnapshot = "create_snapshot"
	ActionOpenLive       = "open_live"
	ActionCloseLive      = "close_live"
)

// Domain types

type Election struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	NeedsApproval bool       `json:"needs_approval"`
	DateFrom      string     `json:"date_from"`
	DateTo        string     `json:"date_to"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	VoterCount    int        `json:"voter_count"`
	VoteCount     int        `json:"vote_count"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedByRole string     `json:"created_by_role,omitempty"`
	Positions     []Position `json:"positions"`
}

type Position struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	MaxChoices int         `json:"max_choices"`
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	GroupName string `json:"name,omitempty"` // set for ticket/slate entries
	Party     string `json:"party,omitempty"`
	Slogan    string `json:"slogan,omitempty"`
	Platform  string `json:"platform,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	VoteCount int    `json:"vote_count"`
}

// VoterCode is a ballot verification code published on the bulletin
type VoterCode struct {
	VerificationCode string `json:"verificationCode"`
	VoteDate         string `json:"voteDate"`
}

// CandidateVoters lists the verification codes that voted for one candidate
type CandidateVoters struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Party     string      `json:"party,omitempty"`
	VoteCount int         `json:"vote_count"`
	Voters    []VoterCode `json:"voters"`
}

type PositionVoters struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Candidates []CandidateVoters `json:"candidates"`
}

// Derived result types

type RankedCandidate struct {
	Candidate
	DisplayName    string  `json:"display_name"`
	Rank           int     `json:"rank"` // 1-indexed ranking
	VotePercentage float64 `json:"vote_percentage"`
	IsWinner       bool    `json:"is_winner"`
}

type PositionResult struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	MaxChoices       int               `json:"max_choices"`
	RankedCandidates []RankedCandidate `json:"rankedCandidates"`
	Top3             []RankedCandidate `json:"top3"`
	Others           []RankedCandidate `json:"others"`
}

type TimeRemaining struct {
	Ended   bool   `json:"ended"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Text    string `json:"text"`
}

type Warning struct {
	Kind       string `json:"kind"`
	PositionID string `json:"position_id,omitempty"`
	Message    string `json:"message"`
}

type AggregatedResults struct {
	ElectionID        string           `json:"election_id"`
	Title             string           `json:"title"`
	Status            string           `json:"status"`
	VoterCount        int              `json:"voter_count"`
	VoteCount         int              `json:"vote_count"`
	Positions         []PositionResult `json:"positions"`
	TurnoutPercentage float64          `json:"turnout_percentage"`
	TimeRemaining     *TimeRemaining   `json:"time_remaining"`
	Warnings          []Warning        `json:"warnings,omitempty"`
	ComputedAt        time.Time        `json:"computed_at"`
}

// Report types

type ReportRow struct {
	PositionName   string  `json:"position_name"`
	CandidateName  string  `json:"candidate_name"`
	Party          string  `json:"party"`
	VoteCount      int     `json:"vote_count"`
	VotePercentage float64 `json:"vote_percentage"`
	Rank           int     `json:"rank"`
	IsWinner       bool    `json:"is_winner"`
	Status         string  `json:"status"`
}

type ReportGroup struct {
	PositionID   string      `json:"position_id"`
	PositionName string      `json:"position_name"`
	Rows         []ReportRow `json:"rows"`
}

type Report struct {
	ElectionID        string        `json:"election_id"`
	Title             string        `json:"title"`
	Status            string        `json:"status"`
	TurnoutPercentage float64       `json:"turnout_percentage"`
	Groups            []ReportGroup `json:"groups"`
}

// Persistence types

type ResultSnapshot struct {
	ID         string            `json:"id"`
	ElectionID string            `json:"election_id"`
	Status     string            `json:"status"`
	ComputedAt time.Time         `json:"computed_at"`
	Results    AggregatedResults `json:"results"`
}

type AuditEntry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	User       string    `json:"user"`
	Role       string    `json:"role"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
}

// Request types

type CursorRequest struct {
	PositionIndex *int `json:"position_index" validate:"omitempty,min=0"`
	CodesPage     *int `json:"codes_page" validate:"omitempty,min=0"`
}

// Response types

type PositionPageResponse struct {
	Page     int            `json:"page"`
	Pages    int            `json:"pages"`
	Position PositionResult `json:"position"`
}

type VoterCodesPageResponse struct {
	Page       int         `json:"page"`
	Pages      int         `json:"pages"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	VoterCodes []VoterCode `json:"voter_codes"`
}

// BulletinItemResponse carries exactly one of the content fields, chosen by Kind
type BulletinItemResponse struct {
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Kind       string            `json:"kind"`
	Page       int               `json:"page"`
	VoterCodes []VoterCode       `json:"voter_codes,omitempty"`
	Position   string            `json:"position,omitempty"`
	Candidate  string            `json:"candidate,omitempty"`
	Winners    []RankedCandidate `json:"winners,omitempty"`
}

type CreateSnapshotResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	ComputedAt time.Time `json:"computed_at"`
}

type LiveViewResponse struct {
	ElectionID      string                `json:"election_id"`
	Running         bool                  `json:"running"`
	Results         *AggregatedResults    `json:"results,omitempty"`
	PositionIndex   int                   `json:"position_index"`
	CurrentPosition *PositionResult       `json:"current_position,omitempty"`
	CodesPage       int                   `json:"codes_page"`
	CodesPages      int                   `json:"codes_pages"`
	BulletinIndex   int                   `json:"bulletin_index"`
	Bulletin        *BulletinItemResponse `json:"bulletin,omitempty"`
	RefreshedAt     *time.Time            `json:"refreshed_at,omitempty"`
	RefreshedAgo    string                `json:"refreshed_ago,omitempty"`
	Error           string                `json:"error,omitempty"`
	Retryable       bool                  `json:"retryable,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
