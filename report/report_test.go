// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/tally"
)

func sampleResults() models.AggregatedResults {
	return tally.Aggregate(models.Election{
		ID:         "e1",
		Title:      "Student Council",
		Status:     models.StatusCompleted,
		VoterCount: 3,
		VoteCount:  3,
		Positions: []models.Position{
			{ID: "p1", Name: "President", Candidates: []models.Candidate{
				{ID: "a", LastName: "Cruz", FirstName: "Juan", Party: "Blue", VoteCount: 1},
				{ID: "b", LastName: "Santos", FirstName: "Pedro", Party: "Red", VoteCount: 2},
			}},
			{ID: "p2", Name: "Treasurer", Candidates: []models.Candidate{
				{ID: "c", LastName: "Reyes", FirstName: "Ana", VoteCount: 0},
				{ID: "d", Party: "Team Alpha", VoteCount: 0},
			}},
		},
	})
}

func TestAssembleMatchesAggregate(t *testing.T) {
	results := sampleResults()
	rep := Assemble(results)

	require.Len(t, rep.Groups, len(results.Positions))
	for i, p := range results.Positions {
		g := rep.Groups[i]
		assert.Equal(t, p.ID, g.PositionID)
		require.Len(t, g.Rows, len(p.RankedCandidates))
		for j, c := range p.RankedCandidates {
			row := g.Rows[j]
			assert.Equal(t, c.VoteCount, row.VoteCount)
			assert.Equal(t, c.VotePercentage, row.VotePercentage)
			assert.Equal(t, c.Rank, row.Rank)
			assert.Equal(t, c.IsWinner, row.IsWinner)
			assert.Equal(t, c.DisplayName, row.CandidateName)
			assert.Equal(t, models.StatusCompleted, row.Status)
		}
	}
	assert.Equal(t, results.TurnoutPercentage, rep.TurnoutPercentage)
}

func TestAssembleUsesAggregateNotRecomputation(t *testing.T) {
	results := sampleResults()
	// A tampered aggregate must flow through untouched
	results.Positions[0].RankedCandidates[0].VotePercentage = 12.34
	results.Positions[0].RankedCandidates[0].Rank = 7

	row := Assemble(results).Groups[0].Rows[0]
	assert.Equal(t, 12.34, row.VotePercentage)
	assert.Equal(t, 7, row.Rank)
}

func TestWriteResultsCSV(t *testing.T) {
	results := sampleResults()

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, resultsHeader, records[0])
	assert.Equal(t, []string{"President", "Santos, Pedro", "Red", "2", "66.67", "1", "true", "completed"}, records[1])
	assert.Equal(t, []string{"President", "Cruz, Juan", "Blue", "1", "33.33", "2", "false", "completed"}, records[2])
	assert.Equal(t, []string{"Treasurer", "Reyes, Ana", "", "0", "0.00", "1", "false", "completed"}, records[3])
	assert.Equal(t, "Team Alpha", records[4][1])

	// Every CSV row agrees with the aggregate it came from
	i := 1
	for _, p := range results.Positions {
		for _, c := range p.RankedCandidates {
			assert.Equal(t, strconv.Itoa(c.VoteCount), records[i][3])
			assert.Equal(t, strconv.Itoa(c.Rank), records[i][5])
			i++
		}
	}
}

func TestWriteAuditCSV(t *testing.T) {
	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.FixedZone("PHT", 8*3600))
	entries := []models.AuditEntry{
		{ID: "1", Time: at, User: "3f2a", Role: "admin", Action: models.ActionExportResults, EntityType: "election", EntityID: "e1"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAuditCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"ID", "Time", "User", "Role", "Action", "Entity Type", "Entity ID"}, records[0])
	assert.Equal(t, []string{"1", "2025-05-02T01:30:00Z", "3f2a", "admin", "export_results", "election", "e1"}, records[1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteResultsCSVPropagatesWriteErrors(t *testing.T) {
	assert.Error(t, WriteResultsCSV(failingWriter{}, sampleResults()))
	assert.Error(t, WriteAuditCSV(failingWriter{}, nil))
}
