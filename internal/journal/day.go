// Package journal selects journal pages and converts the host's integer
// encoded journal dates.
package journal

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical day format used for habit entries.
const DateLayout = "2006-01-02"

// Day is a journal date encoded as the integer YYYYMMDD (e.g. 20240315).
type Day int

// Time decodes d into midnight of that day in loc. Month and day overflow
// are normalised the way time.Date does; the host is trusted to produce
// valid encodings.
func (d Day) Time(loc *time.Location) time.Time {
	e := int(d)
	year := e / 10000
	month := (e%10000)/100 - 1
	day := e % 100
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, loc)
}

// String returns the decoded day as YYYY-MM-DD.
func (d Day) String() string {
	return d.Time(time.UTC).Format(DateLayout)
}

// FromTime encodes the calendar day of t.
func FromTime(t time.Time) Day {
	return Day(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("journal: invalid date %q: %w", s, err)
	}
	return t, nil
}
