// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotboard/models"
)

// Upstream payloads are loosely typed: ids may be numbers or strings, counts
// may be null, missing or quoted. Everything is defaulted here so the rest of
// the service only sees complete models.

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
		return nil
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*s = flexString(n.String())
		return nil
	}
}

// flexInt reads numbers, numeric strings and null. Unreadable values become 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*n = flexInt(i)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*n = flexInt(math.Round(f))
		return nil
	}
	*n = 0
	return nil
}

type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	*v = flexBool(raw == "true" || raw == "1")
	return nil
}

type wireCandidate struct {
	ID        flexString `json:"id"`
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Name      flexString `json:"name"`
	Party     flexString `json:"party"`
	Slogan    flexString `json:"slogan"`
	Platform  flexString `json:"platform"`
	ImageURL  flexString `json:"image_url"`
	VoteCount flexInt    `json:"vote_count"`
	Voters    []wireCode `json:"voters"`
}

type wirePosition struct {
	ID         flexString      `json:"id"`
	Name       flexString      `json:"name"`
	MaxChoices flexInt         `json:"max_choices"`
	Candidates []wireCandidate `json:"candidates"`
}

type wireElection struct {
	ID            flexString     `json:"id"`
	Title         flexString     `json:"title"`
	Description   flexString     `json:"description"`
	Status        flexString     `json:"status"`
	NeedsApproval flexBool       `json:"needs_approval"`
	DateFrom      flexString     `json:"date_from"`
	DateTo        flexString     `json:"date_to"`
	StartTime     flexString     `json:"start_time"`
	EndTime       flexString     `json:"end_time"`
	VoterCount    flexInt        `json:"voter_count"`
	VoteCount     flexInt        `json:"vote_count"`
	CreatedBy     flexString     `json:"created_by"`
	CreatedByRole flexString     `json:"created_by_role"`
	Positions     []wirePosition `json:"positions"`
}

type wireCode struct {
	VerificationCode flexString `json:"verificationCode"`
	VoteDate         flexString `json:"voteDate"`
}

func parseDetails(body []byte) (models.Election, error) {
	var payload struct {
		Election *wireElection `json:"election"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Election{}, fmt.Errorf("failed to decode election details: %w", err)
	}
	if payload.Election == nil {
		return models.Election{}, fmt.Errorf("election details payload has no election")
	}
	return payload.Election.model(), nil
}

func parseVotesPerCandidate(body []byte) ([]models.PositionVoters, error) {
	var payload struct {
		Positions []wirePosition `json:"positions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode votes per candidate: %w", err)
	}

	positions := make([]models.PositionVoters, 0, len(payload.Positions))
	for _, p := range payload.Positions {
		pv := models.PositionVoters{
			ID:         string(p.ID),
			Name:       string(p.Name),
			Candidates: make([]models.CandidateVoters, 0, len(p.Candidates)),
		}
		for _, c := range p.Candidates {
			pv.Candidates = append(pv.Candidates, models.CandidateVoters{
				ID:        string(c.ID),
				FirstName: string(c.FirstName),
				LastName:  string(c.LastName),
				Party:     string(c.Party),
				VoteCount: int(c.VoteCount),
				Voters:    codes(c.Voters),
			})
		}
		positions = append(positions, pv)
	}
	return positions, nil
}

// parseVoterCodes accepts {"voterCodes": [...]} or a bare array
func parseVoterCodes(body []byte) ([]models.VoterCode, error) {
	trimmed := bytes.TrimSpace(body)
	var list []wireCode
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode voter codes: %w", err)
		}
		return codes(list), nil
	}

	var payload struct {
		VoterCodes []wireCode `json:"voterCodes"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode voter codes: %w", err)
	}
	return codes(payload.VoterCodes), nil
}

func (w *wireElection) model() models.Election {
	e := models.Election{
		ID:            string(w.ID),
		Title:         string(w.Title),
		Description:   string(w.Description),
		Status:        strings.ToLower(string(w.Status)),
		NeedsApproval: bool(w.NeedsApproval),
		DateFrom:      string(w.DateFrom),
		DateTo:        string(w.DateTo),
		StartTime:     string(w.StartTime),
		EndTime:       string(w.EndTime),
		VoterCount:    int(w.VoterCount),
		VoteCount:     int(w.VoteCount),
		CreatedBy:     string(w.CreatedBy),
		CreatedByRole: string(w.CreatedByRole),
		Positions:     make([]models.Position, 0, len(w.Positions)),
	}

	for _, p := range w.Positions {
		pos := models.Position{
			ID:         string(p.ID),
			Name:       string(p.Name),
			MaxChoices: max(int(p.MaxChoices), 1),
			Candidates: make([]models.Candidate, 0, len(p.Candidates)),
		}
		for _, c := range p.Candidates {
			pos.Candidates = append(pos.Candidates, models.Candidate{
				ID:        string(c.ID),
				FirstName: string(c.FirstName),
				LastName:  string(c.LastName),
				GroupName: string(c.Name),
				Party:     string(c.Party),
				Slogan:    string(c.Slogan),
				Platform:  string(c.Platform),
				ImageURL:  string(c.ImageURL),
				VoteCount: int(c.VoteCount),
			})
		}
		e.Positions = append(e.Positions, pos)
	}
	return e
}

func codes(in []wireCode) []models.VoterCode {
	out := make([]models.VoterCode, 0, len(in))
	for _, c := range in {
		out = append(out, models.VoterCode{
			VerificationCode: string(c.VerificationCode),
			VoteDate:         string(c.VoteDate),
		})
	}
	return out
}
