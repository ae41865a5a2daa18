// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielhkuo/ballotboard/models"
)

const noName = "No Name"

// FormatDisplayName renders a candidate name for display.
//
// A candidate entry is either a person ("Lastname, Firstname") or a group or
// ticket entry such as a partylist slate. A fallback of one or two words with
// no comma marks a group entry and is returned alone. Otherwise a missing
// first name also yields a single group-style name.
func FormatDisplayName(lastName, firstName, fallbackGroupName string) string {
	last := strings.TrimSpace(lastName)
	first := strings.TrimSpace(firstName)
	fallback := strings.TrimSpace(fallbackGroupName)

	if fallback != "" && isGroupName(fallback) {
		return capitalizeWords(fallback)
	}

	if first == "" {
		switch {
		case last != "":
			return capitalizeWords(last)
		case fallback != "":
			return capitalizeWords(fallback)
		default:
			return noName
		}
	}

	if last == "" {
		return capitalizeWords(first)
	}

	return capitalizeWords(last) + ", " + capitalizeWords(first)
}

// CandidateDisplayName picks the fallback for a candidate record: the entry's
// own group name if the upstream sent one, else its party when no personal
// name is present.
func CandidateDisplayName(c models.Candidate) string {
	fallback := c.GroupName
	if fallback == "" && strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		fallback = c.Party
	}
	return FormatDisplayName(c.LastName, c.FirstName, fallback)
}

func isGroupName(s string) bool {
	if strings.Contains(s, ",") {
		return false
	}
	n := len(strings.Fields(s))
	return n >= 1 && n <= 2
}

// capitalizeWords upper-cases the first letter of every word and lower-cases the rest
func capitalizeWords(s string) string {
	// Casers keep state, so each call gets its own
	caser := cases.Title(language.Und)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
