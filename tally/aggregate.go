// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/models"
)

// TopCount is the size of the leaders partition of every position
const TopCount = 3

// Aggregator turns a raw election snapshot into ranked results.
// The zero value is ready to use: wall-clock time, local timezone, default logger.
type Aggregator struct {
	Now      func() time.Time
	Location *time.Location
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// Aggregate ranks an election snapshot with a zero-value Aggregator
func Aggregate(e models.Election) models.AggregatedResults {
	var a Aggregator
	return a.Aggregate(e)
}

// Aggregate computes percentages, rankings, winners, turnout and time remaining.
// It never fails: missing or malformed numbers degrade to zero and are reported
// in the Warnings field instead.
func (a *Aggregator) Aggregate(e models.Election) models.AggregatedResults {
	started := time.Now()
	now := a.now()

	res := models.AggregatedResults{
		ElectionID: e.ID,
		Title:      e.Title,
		Status:     e.Status,
		Positions:  make([]models.PositionResult, 0, len(e.Positions)),
		ComputedAt: now,
	}

	voterCount := a.nonNegative(&res, "", "voter_count", e.VoterCount)
	voteCount := a.nonNegative(&res, "", "vote_count", e.VoteCount)
	res.VoterCount = voterCount
	res.VoteCount = voteCount

	if voteCount > voterCount {
		a.warn(&res, models.Warning{
			Kind:    models.WarnVotesExceedVoters,
			Message: fmt.Sprintf("%d ballots cast but only %d eligible voters", voteCount, voterCount),
		})
	}

	for _, p := range e.Positions {
		res.Positions = append(res.Positions, a.rankPosition(&res, p, voterCount))
	}

	res.TurnoutPercentage = Percentage(voteCount, voterCount)

	res.TimeRemaining = a.countdown(e, now)

	a.Metrics.ObserveAggregation(time.Since(started))
	return res
}

func (a *Aggregator) rankPosition(res *models.AggregatedResults, p models.Position, voterCount int) models.PositionResult {
	if len(p.Candidates) < 2 {
		a.warn(res, models.Warning{
			Kind:       models.WarnTooFewCandidates,
			PositionID: p.ID,
			Message:    fmt.Sprintf("position %q has %d candidate(s)", p.Name, len(p.Candidates)),
		})
	}

	ranked := make([]models.RankedCandidate, len(p.Candidates))
	for i, c := range p.Candidates {
		c.VoteCount = a.nonNegative(res, p.ID, "candidate "+c.ID+" vote_count", c.VoteCount)
		ranked[i] = models.RankedCandidate{
			Candidate:      c,
			DisplayName:    CandidateDisplayName(c),
			VotePercentage: Percentage(c.VoteCount, voterCount),
		}
	}

	// Equal counts keep their input order so repeated renders never reshuffle ties
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoteCount > ranked[j].VoteCount
	})

	for i := range ranked {
		ranked[i].Rank = i + 1 // 1-indexed ranking
		ranked[i].IsWinner = i == 0 && ranked[i].VoteCount > 0
	}

	split := min(TopCount, len(ranked))
	top3 := make([]models.RankedCandidate, split)
	copy(top3, ranked[:split])
	others := make([]models.RankedCandidate, len(ranked)-split)
	copy(others, ranked[split:])

	return models.PositionResult{
		ID:               p.ID,
		Name:             p.Name,
		MaxChoices:       p.MaxChoices,
		RankedCandidates: ranked,
		Top3:             top3,
		Others:           others,
	}
}

// Percentage returns part/whole as a percentage rounded to two decimals.
// It is 0 whenever whole or part is not positive, so it never yields NaN,
// Inf or a negative value. It is not capped at 100.
func Percentage(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(whole)) / 100
}

// Winners returns the winning candidates of a position (zero or one)
func Winners(p models.PositionResult) []models.RankedCandidate {
	winners := []models.RankedCandidate{}
	for _, c := range p.RankedCandidates {
		if c.IsWinner {
			winners = append(winners, c)
		}
	}
	return winners
}

// Countdown recomputes only the time remaining of e, without ranking anything.
// It is nil unless the election is ongoing with a readable end time.
func (a *Aggregator) Countdown(e models.Election) *models.TimeRemaining {
	return a.countdown(e, a.now())
}

func (a *Aggregator) countdown(e models.Election, now time.Time) *models.TimeRemaining {
	if e.Status != models.StatusOngoing {
		return nil
	}
	return TimeLeft(e, now, a.location())
}

func (a *Aggregator) nonNegative(res *models.AggregatedResults, positionID, field string, v int) int {
	if v >= 0 {
		return v
	}
	a.warn(res, models.Warning{
		Kind:       models.WarnNegativeCount,
		PositionID: positionID,
		Message:    fmt.Sprintf("%s is %d, treated as 0", field, v),
	})
	return 0
}

func (a *Aggregator) warn(res *models.AggregatedResults, w models.Warning) {
	res.Warnings = append(res.Warnings, w)
	a.logger().Warn("election data invariant violated",
		"election_id", res.ElectionID,
		"kind", w.Kind,
		"position_id", w.PositionID,
		"detail", w.Message,
	)
	a.Metrics.InvariantWarning(w.Kind)
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregator) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
