// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/ballotboard/models"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// EndsAt combines the election's closing date and time of day in loc.
// ok is false when either part is missing or unparsable.
func EndsAt(e models.Election, loc *time.Location) (time.Time, bool) {
	date := strings.TrimSpace(e.DateTo)
	if i := strings.IndexByte(date, 'T'); i > 0 {
		date = date[:i]
	}
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, false
	}

	clock := strings.TrimSpace(e.EndTime)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}
	return time.Time{}, false
}

// TimeLeft reports the live countdown to the election's end.
// It returns nil when the end time cannot be determined.
func TimeLeft(e models.Election, now time.Time, loc *time.Location) *models.TimeRemaining {
	end, ok := EndsAt(e, loc)
	if !ok {
		return nil
	}
	return Remaining(end.Sub(now))
}

// Remaining breaks a duration into the largest applicable units
func Remaining(d time.Duration) *models.TimeRemaining {
	if d <= 0 {
		return &models.TimeRemaining{Ended: true, Text: "ended"}
	}

	total := int64(d / time.Second)
	tr := &models.TimeRemaining{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}

	switch {
	case tr.Days > 0:
		tr.Text = fmt.Sprintf("%dd %dh %dm", tr.Days, tr.Hours, tr.Minutes)
	case tr.Hours > 0:
		tr.Text = fmt.Sprintf("%dh %dm %ds", tr.Hours, tr.Minutes, tr.Seconds)
	default:
		tr.Text = fmt.Sprintf("%dm %ds", tr.Minutes, tr.Seconds)
	}
	return tr
}
