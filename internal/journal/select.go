package journal

import (
	"fmt"
	"time"

	"github.com/starford/habitdash/internal/models"
)

// Range is an inclusive date range. A zero Start or End leaves that side
// unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// ParseRange builds a range from optional YYYY-MM-DD bounds in local time.
func ParseRange(start, end string) (Range, error) {
	var r Range
	if start != "" {
		t, err := ParseDate(start, time.Local)
		if err != nil {
			return Range{}, err
		}
		r.Start = t
	}
	if end != "" {
		t, err := ParseDate(end, time.Local)
		if err != nil {
			return Range{}, err
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("journal: end %s is before start %s", end, start)
	}
	return r, nil
}

// SelectJournalPages returns the pages that carry a journal day inside r,
// keeping the order of pages.
func SelectJournalPages(pages []models.Page, r Range) []models.Page {
	var out []models.Page
	for _, p := range pages {
		if !p.IsJournal() {
			continue
		}
		if !r.Contains(Day(p.JournalDay).Time(time.Local)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
