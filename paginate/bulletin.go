// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package paginate

import (
	"github.com/danielhkuo/ballotboard/models"
	"github.com/danielhkuo/ballotboard/tally"
)

// Bulletin is the data behind the public bulletin carousel
type Bulletin struct {
	VoterCodes []models.VoterCode
	Positions  []models.PositionVoters
	Results    models.AggregatedResults
	PageSize   int
}

// Layout computes the carousel layout from the current bulletin data.
// Every candidate gets at least one page so candidates without votes still show.
func (b Bulletin) Layout() Layout {
	l := Layout{
		VoterCodePages:         PageCount(len(b.VoterCodes), b.PageSize),
		CandidatePages:         make([][]int, len(b.Positions)),
		WinnerPagesPerPosition: 1,
	}
	for p, pos := range b.Positions {
		l.CandidatePages[p] = make([]int, len(pos.Candidates))
		for c, cand := range pos.Candidates {
			l.CandidatePages[p][c] = max(1, PageCount(len(cand.Voters), b.PageSize))
		}
	}
	return l
}

// Item resolves a carousel index to its content
func (b Bulletin) Item(index int) models.BulletinItemResponse {
	layout := b.Layout()
	item := layout.Resolve(index)

	resp := models.BulletinItemResponse{
		Index: item.Index,
		Total: layout.Total(),
		Kind:  item.Kind.String(),
		Page:  item.Page,
	}

	switch item.Kind {
	case KindVoterCodes:
		resp.VoterCodes = pageAt(Chunk(b.VoterCodes, b.PageSize), item.Page)

	case KindCandidateVoters:
		pos := b.Positions[item.PositionIndex]
		cand := pos.Candidates[item.CandidateIndex]
		resp.Position = pos.Name
		resp.Candidate = tally.CandidateDisplayName(models.Candidate{
			FirstName: cand.FirstName,
			LastName:  cand.LastName,
			Party:     cand.Party,
		})
		resp.VoterCodes = pageAt(Chunk(cand.Voters, b.PageSize), item.Page)

	case KindWinners:
		pos := b.Positions[item.PositionIndex]
		resp.Position = pos.Name
		resp.Winners = []models.RankedCandidate{}
		if result, ok := b.resultFor(pos.ID, item.PositionIndex); ok {
			resp.Winners = result.Top3
		}
	}

	return resp
}

func (b Bulletin) resultFor(positionID string, index int) (models.PositionResult, bool) {
	for _, p := range b.Results.Positions {
		if p.ID == positionID {
			return p, true
		}
	}
	if positionID == "" && index < len(b.Results.Positions) {
		return b.Results.Positions[index], true
	}
	return models.PositionResult{}, false
}

func pageAt[T any](pages [][]T, i int) []T {
	if i < 0 || i >= len(pages) {
		return []T{}
	}
	return pages[i]
}
