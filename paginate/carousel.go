// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package paginate

// Kind identifies what a carousel slot shows
type Kind int

const (
	KindNone Kind = iota
	KindVoterCodes
	KindCandidateVoters
	KindWinners
)

func (k Kind) String() string {
	switch k {
	case KindVoterCodes:
		return "voter_codes"
	case KindCandidateVoters:
		return "candidate_voters"
	case KindWinners:
		return "winners"
	default:
		return "none"
	}
}

// Layout describes the page counts behind one rotating carousel.
// Slots run in a fixed order: every voter-code page, then every candidate's
// voter pages (position order, then candidate order, each candidate's pages
// contiguous), then the winners pages of each position.
type Layout struct {
	VoterCodePages         int
	CandidatePages         [][]int // [position][candidate] -> page count
	WinnerPagesPerPosition int
}

// Item is one resolved carousel slot
type Item struct {
	Kind           Kind
	Index          int // slot index after wrapping
	Page           int // page within the slot's own content
	PositionIndex  int
	CandidateIndex int
}

// Total is the number of slots in the carousel
func (l Layout) Total() int {
	total := max(l.VoterCodePages, 0)
	for _, cands := range l.CandidatePages {
		for _, n := range cands {
			total += max(n, 0)
		}
	}
	return total + len(l.CandidatePages)*max(l.WinnerPagesPerPosition, 0)
}

// Resolve maps a linear index onto a slot. The index wraps modulo the current
// total, so a cursor that outlived a smaller or larger layout still lands on a
// valid slot. An empty layout resolves to KindNone.
func (l Layout) Resolve(index int) Item {
	total := l.Total()
	if total == 0 {
		return Item{Kind: KindNone}
	}
	i := ((index % total) + total) % total
	item := Item{Index: i}

	vcp := max(l.VoterCodePages, 0)
	if i < vcp {
		item.Kind = KindVoterCodes
		item.Page = i
		return item
	}
	i -= vcp

	for p, cands := range l.CandidatePages {
		for c, n := range cands {
			n = max(n, 0)
			if i < n {
				item.Kind = KindCandidateVoters
				item.PositionIndex = p
				item.CandidateIndex = c
				item.Page = i
				return item
			}
			i -= n
		}
	}

	// Whatever is left falls in the winners section, so wpp > 0 here
	wpp := l.WinnerPagesPerPosition
	if wpp <= 0 {
		return Item{Kind: KindNone}
	}
	item.Kind = KindWinners
	item.PositionIndex = i / wpp
	item.Page = i % wpp
	return item
}

// Cursor is a carousel position owned by a single view
type Cursor struct {
	Index int
}

// Advance moves to the next slot, wrapping at total. A zero total parks the cursor at 0.
func (c *Cursor) Advance(total int) int {
	if total <= 0 {
		c.Index = 0
		return 0
	}
	c.Index = (c.Index + 1) % total
	return c.Index
}

// Clamp pulls the cursor back inside [0, total-1] after the data shrank
func (c *Cursor) Clamp(total int) int {
	if total <= 0 {
		c.Index = 0
		return 0
	}
	c.Index = clamp(c.Index, total)
	return c.Index
}
