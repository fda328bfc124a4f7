package dashboard

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/starford/habitdash/internal/models"
)

var march15 = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func sampleStats() []models.HabitStats {
	return []models.HabitStats{
		{Name: "Exercise", TotalCount: 3, Entries: []models.HabitEntry{
			{Name: "Exercise", Date: "2024-02-28"},
			{Name: "Exercise", Date: "2024-03-01", Time: "7:00 AM"},
			{Name: "Exercise", Date: "2024-03-15"},
		}},
		{Name: "Reading", TotalCount: 2, Entries: []models.HabitEntry{
			{Name: "Reading", Date: "2024-03-02"},
			{Name: "Reading", Date: "2024-03-02", Time: "21:00"},
		}},
	}
}

func TestHTML_Empty(t *testing.T) {
	out, err := HTML(nil, march15)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "No habits tracked yet!") {
		t.Errorf("missing empty state: %q", out)
	}
	if !strings.Contains(out, "#habit Meditation 7:00 AM") {
		t.Error("missing usage example")
	}
	if strings.Contains(out, "Month View") {
		t.Error("empty state should not render views")
	}
}

func TestHTML_Views(t *testing.T) {
	out, err := HTML(sampleStats(), march15)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"March 2024",
		"2024 Statistics",
		`<th class="day">31</th>`,
		`<td class="habit">Exercise</td>`,
		`<td class="day today">✓</td>`,
		`<span class="count">3</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, `<th class="day">32</th>`) {
		t.Error("too many day columns")
	}
	if strings.Index(out, ">Exercise<") > strings.Index(out, ">Reading<") {
		t.Error("input order not preserved")
	}
}

func TestHTML_EscapesNames(t *testing.T) {
	stats := []models.HabitStats{{Name: `<script>alert("x")</script>`, TotalCount: 1,
		Entries: []models.HabitEntry{{Date: "2024-03-01"}}}}
	out, err := HTML(stats, march15)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(out, `<script>alert(`) {
		t.Error("habit name not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escaped name missing in %q", out)
	}
}

func TestMonthRows(t *testing.T) {
	rows := MonthRows(sampleStats(), march15)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if len(rows[0].Cells) != 31 {
		t.Errorf("cells = %d, want 31", len(rows[0].Cells))
	}
	// February entry is outside the month.
	if rows[0].Total != 2 {
		t.Errorf("exercise total = %d, want 2", rows[0].Total)
	}
	// Two entries on one day count once.
	if rows[1].Total != 1 || !rows[1].Cells[1].Done {
		t.Errorf("reading row = %+v", rows[1])
	}
	if !rows[0].Cells[14].Today || rows[0].Cells[13].Today {
		t.Error("today marker misplaced")
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		t    time.Time
		want int
	}{
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.t); got != tt.want {
			t.Errorf("DaysIn(%s) = %d, want %d", tt.t.Format("2006-01"), got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Terminal(&buf, sampleStats(), march15)
	out := buf.String()

	for _, want := range []string{"March 2024", "Exercise", "Reading", "This month", "2024-03-15", "2024-03-02 21:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Terminal(&buf, nil, march15)
	if !strings.Contains(buf.String(), "No habits tracked yet!") {
		t.Errorf("empty report = %q", buf.String())
	}
}

func TestCalendarTitle(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"Run", "        Run"},
		{"Méditation du matin avec respiration", "Méditation"},
		{"瞑想瞑想瞑想瞑想瞑想瞑想", "瞑想"},
	}
	for _, tt := range tests {
		got := calendarTitle(tt.name)
		if !utf8.ValidString(got) {
			t.Errorf("calendarTitle(%q) = %q, invalid UTF-8", tt.name, got)
		}
		if w := runewidth.StringWidth(got); w > weekWidth {
			t.Errorf("calendarTitle(%q) width = %d, want <= %d", tt.name, w, weekWidth)
		}
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("calendarTitle(%q) = %q, want prefix %q", tt.name, got, tt.prefix)
		}
	}
}

func TestTerminal_MultiByteNames(t *testing.T) {
	color.NoColor = true
	stats := []models.HabitStats{{
		Name:       "Méditation du matin avec respiration",
		TotalCount: 1,
		Entries:    []models.HabitEntry{{Name: "Méditation du matin avec respiration", Date: "2024-03-15"}},
	}}

	var buf bytes.Buffer
	Terminal(&buf, stats, march15)
	if !utf8.ValidString(buf.String()) {
		t.Errorf("report is not valid UTF-8:\n%q", buf.String())
	}
}
