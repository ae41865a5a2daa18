// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/models"
)

func candidate(id, last, first string, votes int) models.Candidate {
	return models.Candidate{ID: id, LastName: last, FirstName: first, VoteCount: votes}
}

func presidentElection() models.Election {
	return models.Election{
		ID:         "e1",
		Title:      "Student Council 2025",
		Status:     models.StatusCompleted,
		VoterCount: 100,
		VoteCount:  80,
		Positions: []models.Position{
			{
				ID:         "p1",
				Name:       "President",
				MaxChoices: 1,
				Candidates: []models.Candidate{
					candidate("c1", "Cruz", "Juan", 40),
					candidate("c2", "Dela Cruz", "Maria", 40),
					candidate("c3", "Santos", "Pedro", 20),
				},
			},
		},
	}
}

func rankedIDs(p models.PositionResult) []string {
	ids := make([]string, len(p.RankedCandidates))
	for i, c := range p.RankedCandidates {
		ids[i] = c.ID
	}
	return ids
}

func TestAggregateEndToEnd(t *testing.T) {
	res := Aggregate(presidentElection())

	require.Len(t, res.Positions, 1)
	p := res.Positions[0]
	require.Len(t, p.RankedCandidates, 3)

	assert.Equal(t, []string{"c1", "c2", "c3"}, rankedIDs(p))

	wantRanks := []int{1, 2, 3}
	wantPct := []float64{40.00, 40.00, 20.00}
	wantWinner := []bool{true, false, false}
	for i, c := range p.RankedCandidates {
		assert.Equal(t, wantRanks[i], c.Rank, "rank of %s", c.ID)
		assert.Equal(t, wantPct[i], c.VotePercentage, "percentage of %s", c.ID)
		assert.Equal(t, wantWinner[i], c.IsWinner, "winner flag of %s", c.ID)
	}

	assert.Equal(t, "Cruz, Juan", p.RankedCandidates[0].DisplayName)
	assert.Equal(t, "Dela Cruz, Maria", p.RankedCandidates[1].DisplayName)
	assert.Equal(t, 80.00, res.TurnoutPercentage)
	assert.Nil(t, res.TimeRemaining, "completed elections carry no countdown")
	assert.Empty(t, res.Warnings)
}

func TestAggregateIsIdempotent(t *testing.T) {
	e := presidentElection()
	e.Positions = append(e.Positions, models.Position{
		ID:   "p2",
		Name: "Senator",
		Candidates: []models.Candidate{
			candidate("s1", "A", "A", 3), candidate("s2", "B", "B", 7),
			candidate("s3", "C", "C", 7), candidate("s4", "D", "D", 1),
			candidate("s5", "E", "E", 3),
		},
	})

	first := Aggregate(e)
	second := Aggregate(e)

	require.Equal(t, len(first.Positions), len(second.Positions))
	for i := range first.Positions {
		assert.Equal(t, first.Positions[i].RankedCandidates, second.Positions[i].RankedCandidates)
		assert.Equal(t, first.Positions[i].Top3, second.Positions[i].Top3)
		assert.Equal(t, first.Positions[i].Others, second.Positions[i].Others)
	}
	assert.Equal(t, first.TurnoutPercentage, second.TurnoutPercentage)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	e := presidentElection()
	e.Positions[0].Candidates[0].VoteCount = 1

	Aggregate(e)

	assert.Equal(t, "c1", e.Positions[0].Candidates[0].ID)
	assert.Equal(t, 1, e.Positions[0].Candidates[0].VoteCount)
}

func TestRankTotality(t *testing.T) {
	for n := 0; n <= 8; n++ {
		cands := make([]models.Candidate, n)
		for i := range cands {
			cands[i] = candidate(string(rune('a'+i)), "L", "F", (i*7)%4)
		}
		res := Aggregate(models.Election{VoterCount: 10, Positions: []models.Position{{ID: "p", Candidates: cands}}})

		seen := make(map[int]bool)
		for _, c := range res.Positions[0].RankedCandidates {
			assert.False(t, seen[c.Rank], "duplicate rank %d", c.Rank)
			seen[c.Rank] = true
		}
		for r := 1; r <= n; r++ {
			assert.True(t, seen[r], "missing rank %d of %d", r, n)
		}
		assert.Len(t, seen, n)
	}
}

func TestWinnerRules(t *testing.T) {
	tests := []struct {
		name        string
		votes       []int
		wantWinners int
		wantWinner  string
	}{
		{"single leader", []int{5, 9, 2}, 1, "c1"},
		{"all zero votes", []int{0, 0, 0}, 0, ""},
		{"tie keeps first", []int{4, 4}, 1, "c0"},
		{"one vote", []int{0, 1}, 1, "c1"},
		{"no candidates", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := make([]models.Candidate, len(tt.votes))
			for i, v := range tt.votes {
				cands[i] = candidate("c"+string(rune('0'+i)), "L", "F", v)
			}
			res := Aggregate(models.Election{VoterCount: 20, Positions: []models.Position{{ID: "p", Candidates: cands}}})

			winners := Winners(res.Positions[0])
			require.Len(t, winners, tt.wantWinners)
			if tt.wantWinners == 1 {
				assert.Equal(t, tt.wantWinner, winners[0].ID)
				assert.Equal(t, 1, winners[0].Rank)
			}
		})
	}
}

func TestTieStability(t *testing.T) {
	pos := func(cands ...models.Candidate) models.Election {
		return models.Election{VoterCount: 30, Positions: []models.Position{{ID: "p", Candidates: cands}}}
	}

	a := candidate("A", "A", "A", 10)
	b := candidate("B", "B", "B", 10)
	c := candidate("C", "C", "C", 5)

	assert.Equal(t, []string{"A", "B", "C"}, rankedIDs(Aggregate(pos(a, b, c)).Positions[0]))
	assert.Equal(t, []string{"B", "A", "C"}, rankedIDs(Aggregate(pos(b, a, c)).Positions[0]))
}

func TestPercentageGuard(t *testing.T) {
	e := presidentElection()
	e.VoterCount = 0
	e.VoteCount = 0

	res := Aggregate(e)

	assert.Equal(t, 0.0, res.TurnoutPercentage)
	for _, c := range res.Positions[0].RankedCandidates {
		assert.Equal(t, 0.0, c.VotePercentage)
		assert.False(t, math.IsNaN(c.VotePercentage))
		assert.False(t, math.IsInf(c.VotePercentage, 0))
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, whole int
		want        float64
	}{
		{40, 100, 40},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
		{5, 0, 0},
		{-5, 10, 0},
		{5, -10, 0},
		{150, 100, 150},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.part, tt.whole), "Percentage(%d, %d)", tt.part, tt.whole)
	}
}

func TestTopThreeSplit(t *testing.T) {
	cands := []models.Candidate{
		candidate("a", "A", "A", 1), candidate("b", "B", "B", 5),
		candidate("c", "C", "C", 3), candidate("d", "D", "D", 4),
		candidate("e", "E", "E", 2),
	}
	res := Aggregate(models.Election{VoterCount: 15, Positions: []models.Position{{ID: "p", Candidates: cands}}})
	p := res.Positions[0]

	require.Len(t, p.Top3, 3)
	require.Len(t, p.Others, 2)
	assert.Equal(t, []string{"b", "d", "c"}, []string{p.Top3[0].ID, p.Top3[1].ID, p.Top3[2].ID})
	assert.Equal(t, []string{"e", "a"}, []string{p.Others[0].ID, p.Others[1].ID})

	small := Aggregate(models.Election{Positions: []models.Position{{ID: "p", Candidates: cands[:2]}}})
	assert.Len(t, small.Positions[0].Top3, 2)
	assert.NotNil(t, small.Positions[0].Others)
	assert.Empty(t, small.Positions[0].Others)
}

func TestEmptyInputs(t *testing.T) {
	res := Aggregate(models.Election{})
	assert.NotNil(t, res.Positions)
	assert.Empty(t, res.Positions)
	assert.Equal(t, 0.0, res.TurnoutPercentage)

	res = Aggregate(models.Election{Positions: []models.Position{{ID: "empty", Name: "Treasurer"}}})
	require.Len(t, res.Positions, 1)
	assert.Empty(t, res.Positions[0].RankedCandidates)
	assert.Empty(t, res.Positions[0].Top3)
}

func TestInvariantWarnings(t *testing.T) {
	reg := prometheus.NewRegistry()
	agg := &Aggregator{Metrics: metrics.NewCollector(reg)}

	e := models.Election{
		ID:         "e2",
		VoterCount: 10,
		VoteCount:  12,
		Positions: []models.Position{
			{ID: "solo", Name: "Auditor", Candidates: []models.Candidate{candidate("x", "X", "X", 12)}},
			{ID: "neg", Name: "PRO", Candidates: []models.Candidate{
				candidate("y", "Y", "Y", -3), candidate("z", "Z", "Z", 2),
			}},
		},
	}

	res := agg.Aggregate(e)

	kinds := make(map[string]int)
	for _, w := range res.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 1, kinds[models.WarnVotesExceedVoters])
	assert.Equal(t, 1, kinds[models.WarnTooFewCandidates])
	assert.Equal(t, 1, kinds[models.WarnNegativeCount])

	// Over-100 values surface unclamped
	assert.Equal(t, 120.0, res.TurnoutPercentage)
	assert.Equal(t, 120.0, res.Positions[0].RankedCandidates[0].VotePercentage)

	neg := res.Positions[1].RankedCandidates
	assert.Equal(t, "z", neg[0].ID)
	assert.Equal(t, 0, neg[1].VoteCount)
	assert.Equal(t, 0.0, neg[1].VotePercentage)
}

func TestAggregateCountdown(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	now := time.Date(2025, 5, 1, 15, 0, 0, 0, loc)
	agg := &Aggregator{Now: func() time.Time { return now }, Location: loc}

	e := presidentElection()
	e.Status = models.StatusOngoing
	e.DateTo = "2025-05-01"
	e.EndTime = "17:30"

	res := agg.Aggregate(e)
	require.NotNil(t, res.TimeRemaining)
	assert.False(t, res.TimeRemaining.Ended)
	assert.Equal(t, "2h 30m 0s", res.TimeRemaining.Text)
	assert.Equal(t, now, res.ComputedAt)

	e.EndTime = "14:00:00"
	res = agg.Aggregate(e)
	require.NotNil(t, res.TimeRemaining)
	assert.True(t, res.TimeRemaining.Ended)
	assert.Equal(t, "ended", res.TimeRemaining.Text)
}

func TestCountdownOnlyForOngoing(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	now := time.Date(2025, 5, 1, 17, 29, 50, 0, loc)
	agg := &Aggregator{Now: func() time.Time { return now }, Location: loc}

	e := presidentElection()
	e.DateTo = "2025-05-01"
	e.EndTime = "17:30"

	e.Status = models.StatusCompleted
	assert.Nil(t, agg.Countdown(e))

	e.Status = models.StatusOngoing
	tr := agg.Countdown(e)
	require.NotNil(t, tr)
	assert.Equal(t, "0m 10s", tr.Text)
}
