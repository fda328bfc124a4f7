package dashboard

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-runewidth"

	"github.com/starford/habitdash/internal/models"
)

const weekWidth = len("11 12 13 14 15 16 17")

// Terminal writes the report for stats: a month calendar per habit with
// done days in bold, followed by a totals table.
func Terminal(w io.Writer, stats []models.HabitStats, now time.Time) {
	bold := color.New(color.Bold)

	if len(stats) == 0 {
		_, _ = fmt.Fprintln(w, "No habits tracked yet! Tag journal blocks with #habit, e.g. \"- #habit Meditation 7:00 AM\".")
		return
	}

	rows := MonthRows(stats, now)
	_, _ = bold.Fprintf(w, "%s\n\n", now.Format("January 2006"))
	for _, row := range rows {
		printMonth(w, row, now)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Habit"), bold.Sprint("This month"), bold.Sprint("Total"), bold.Sprint("Last"))
	for i, h := range stats {
		last := ""
		if n := len(h.Entries); n > 0 {
			last = strings.TrimSpace(h.Entries[n-1].Date + " " + h.Entries[n-1].Time)
		}
		tbl.AddRow(h.Name, rows[i].Total, h.TotalCount, last)
	}
	tbl.RightAlign(1)
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(w, tbl)
}

// calendarTitle centres name over a week row, cutting it by display width.
func calendarTitle(name string) string {
	name = runewidth.Truncate(name, weekWidth, "…")
	mid := (weekWidth - runewidth.StringWidth(name)) / 2
	return strings.Repeat(" ", mid) + name
}

func printMonth(w io.Writer, row MonthRow, now time.Time) {
	title := color.New(color.FgWhite, color.Italic)
	faint := color.New(color.Faint, color.FgWhite)
	done := color.New(color.Bold, color.FgHiWhite)
	today := color.New(color.Underline)

	_, _ = title.Fprintln(w, calendarTitle(row.Name))

	d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Weekday()
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(w, "   ")
	}
	for _, c := range row.Cells {
		p := faint
		switch {
		case c.Done:
			p = done
		case c.Today:
			p = today
		}
		_, _ = p.Fprintf(w, "%2d ", c.Day)
		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}
