// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes election results from a raw vote-count snapshot.

# Aggregation

Aggregate is a pure function over one election snapshot:

	results := tally.Aggregate(election)

For an injected clock, timezone, logger or metrics collector:

	agg := &tally.Aggregator{Now: clock, Location: loc, Metrics: m}
	results := agg.Aggregate(election)

Every consumer (results page, live board, bulletin, CSV export) goes through
the same aggregation so their numbers always agree.

# Ranking Rules

Per position:

  - vote_percentage = vote_count / voter_count * 100, two decimals, 0 when voter_count is 0
  - candidates sorted by vote_count descending with a stable sort (input order breaks ties)
  - rank is the 1-based position in that order
  - is_winner only for rank 1 with at least one vote
  - top3 holds the first three ranked candidates, others the rest

Percentages are shares of eligible voters, not of ballots cast, so they do
not sum to 100 for multi-choice positions and may exceed 100 when the
upstream data is inconsistent.

# Data Problems

Aggregation never fails. Negative counts are read as 0, positions with
fewer than two candidates are still ranked, and more ballots than voters is
reported as is. Each problem is logged, counted and listed in Warnings.

# Countdown

For ongoing elections TimeRemaining holds the time until date_to + end_time:

	"2d 4h 10m"   more than a day left
	"3h 5m 12s"   more than an hour left
	"4m 30s"      otherwise
	"ended"       end time reached

# Display Names

FormatDisplayName renders "Lastname, Firstname" for people and the bare
group name for ticket or slate entries.
*/
package tally
