// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package report reshapes aggregated results into flat export records.
//
// Rows are copied from an AggregatedResults value and never recomputed, so an
// export always matches what the results page shows for the same snapshot.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danielhkuo/ballotboard/models"
)

var resultsHeader = []string{
	"position_name", "candidate_name", "party", "vote_count",
	"vote_percentage", "rank", "is_winner", "status",
}

var auditHeader = []string{"ID", "Time", "User", "Role", "Action", "Entity Type", "Entity ID"}

// Assemble builds one row group per position in ranked order
func Assemble(results models.AggregatedResults) models.Report {
	r := models.Report{
		ElectionID:        results.ElectionID,
		Title:             results.Title,
		Status:            results.Status,
		TurnoutPercentage: results.TurnoutPercentage,
		Groups:            make([]models.ReportGroup, 0, len(results.Positions)),
	}

	for _, p := range results.Positions {
		group := models.ReportGroup{
			PositionID:   p.ID,
			PositionName: p.Name,
			Rows:         make([]models.ReportRow, 0, len(p.RankedCandidates)),
		}
		for _, c := range p.RankedCandidates {
			group.Rows = append(group.Rows, models.ReportRow{
				PositionName:   p.Name,
				CandidateName:  c.DisplayName,
				Party:          c.Party,
				VoteCount:      c.VoteCount,
				VotePercentage: c.VotePercentage,
				Rank:           c.Rank,
				IsWinner:       c.IsWinner,
				Status:         results.Status,
			})
		}
		r.Groups = append(r.Groups, group)
	}

	return r
}

// WriteResultsCSV writes the assembled report as CSV
func WriteResultsCSV(w io.Writer, results models.AggregatedResults) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}

	for _, g := range Assemble(results).Groups {
		for _, row := range g.Rows {
			record := []string{
				row.PositionName,
				row.CandidateName,
				row.Party,
				strconv.Itoa(row.VoteCount),
				strconv.FormatFloat(row.VotePercentage, 'f', 2, 64),
				strconv.Itoa(row.Rank),
				strconv.FormatBool(row.IsWinner),
				row.Status,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write results row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteAuditCSV writes audit log entries in the order given
func WriteAuditCSV(w io.Writer, entries []models.AuditEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return fmt.Errorf("failed to write audit header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			e.Time.UTC().Format(time.RFC3339),
			e.User,
			e.Role,
			e.Action,
			e.EntityType,
			e.EntityID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write audit row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
