// Package dashboard renders habit statistics as the calendar dashboard
// (HTML) and as a terminal report.
package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/starford/habitdash/internal/models"
)

// MonthRow is one habit line of the month view.
type MonthRow struct {
	Name  string
	Cells []DayCell
	Total int
}

// DayCell is one day column of a MonthRow.
type DayCell struct {
	Day   int
	Done  bool
	Today bool
}

type pageData struct {
	Empty  bool
	Month  string
	Year   int
	Days   []int
	Rows   []MonthRow
	Habits []models.HabitStats
}

var pageTmpl = template.Must(template.New("dashboard").Parse(pageHTML))

// HTML renders the dashboard for stats, which are expected in display
// order. The month view covers now's calendar month.
func HTML(stats []models.HabitStats, now time.Time) (string, error) {
	data := pageData{Empty: len(stats) == 0}
	if !data.Empty {
		data.Month = now.Format("January 2006")
		data.Year = now.Year()
		data.Rows = MonthRows(stats, now)
		data.Habits = stats
		for d := 1; d <= DaysIn(now); d++ {
			data.Days = append(data.Days, d)
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("dashboard: render html: %w", err)
	}
	return buf.String(), nil
}

// MonthRows marks, per habit, the days of now's month that have at least
// one entry. Total counts marked days, not entries.
func MonthRows(stats []models.HabitStats, now time.Time) []MonthRow {
	days := DaysIn(now)
	prefix := fmt.Sprintf("%04d-%02d-", now.Year(), int(now.Month()))

	rows := make([]MonthRow, 0, len(stats))
	for _, h := range stats {
		done := make(map[string]bool, len(h.Entries))
		for _, e := range h.Entries {
			done[e.Date] = true
		}
		row := MonthRow{Name: h.Name, Cells: make([]DayCell, days)}
		for d := 1; d <= days; d++ {
			cell := DayCell{
				Day:   d,
				Done:  done[fmt.Sprintf("%s%02d", prefix, d)],
				Today: d == now.Day(),
			}
			if cell.Done {
				row.Total++
			}
			row.Cells[d-1] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

const pageHTML = `{{if .Empty -}}
<div class="habit-tracker-empty">
  <div class="icon">📊</div>
  <h3>No habits tracked yet!</h3>
  <p>Start tracking habits in your daily journal by using the <code>#habit</code> tag:</p>
  <pre>- #habit Exercise
- #habit Meditation 7:00 AM
- #habit Reading</pre>
  <p class="hint">The timestamp is optional. If provided, it will be shown in the tracker.</p>
</div>
{{- else -}}
<div class="habit-tracker-container">
  <div class="habit-tracker-header">
    <h1>📊 Habit Tracker</h1>
    <p>Track your daily habits and build consistency</p>
  </div>
  <div class="habit-tracker-tabs">
    <button class="tab-button active" data-tab="month">Month View</button>
    <button class="tab-button" data-tab="year">Year View</button>
  </div>
  <div class="tab-content month-view">
    <h2>{{.Month}}</h2>
    <table>
      <thead>
        <tr>
          <th class="habit">Habit</th>
          {{- range .Days}}
          <th class="day">{{.}}</th>
          {{- end}}
          <th class="total">Total</th>
        </tr>
      </thead>
      <tbody>
        {{- range .Rows}}
        <tr>
          <td class="habit">{{.Name}}</td>
          {{- range .Cells}}
          <td class="day{{if .Today}} today{{end}}">{{if .Done}}✓{{end}}</td>
          {{- end}}
          <td class="total">{{.Total}}</td>
        </tr>
        {{- end}}
      </tbody>
    </table>
  </div>
  <div class="tab-content year-view" style="display: none;">
    <h2>{{.Year}} Statistics</h2>
    <table>
      <thead>
        <tr><th class="habit">Habit</th><th class="total">Total Count</th></tr>
      </thead>
      <tbody>
        {{- range .Habits}}
        <tr><td class="habit">{{.Name}}</td><td class="total"><span class="count">{{.TotalCount}}</span></td></tr>
        {{- end}}
      </tbody>
    </table>
  </div>
</div>
<style>
  .habit-tracker-container { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 1000px; margin: 0 auto; padding: 32px 24px; background: #fafafa; }
  .habit-tracker-container table { width: 100%; border-collapse: collapse; font-size: 13px; background: #fff; }
  .habit-tracker-container th.habit, .habit-tracker-container td.habit { text-align: left; padding: 12px 16px; }
  .habit-tracker-container td.day { text-align: center; padding: 8px 4px; font-size: 16px; }
  .habit-tracker-container td.today { background: #EEF2FF; }
  .habit-tracker-container td.total { text-align: center; font-weight: 600; color: #5B57EB; }
  .habit-tracker-container .tab-button { padding: 6px 12px; border: none; border-radius: 4px; background: transparent; color: #787774; cursor: pointer; }
  .habit-tracker-container .tab-button.active { background: #5B57EB; color: white; }
  .habit-tracker-container .count { background: #E8E7FF; padding: 4px 12px; border-radius: 4px; }
</style>
<script>
  (function() {
    document.querySelectorAll('.habit-tracker-container .tab-button').forEach(function(button) {
      button.addEventListener('click', function() {
        var container = this.closest('.habit-tracker-container');
        container.querySelectorAll('.tab-button').forEach(function(b) { b.classList.remove('active'); });
        this.classList.add('active');
        container.querySelectorAll('.tab-content').forEach(function(c) { c.style.display = 'none'; });
        container.querySelector('.' + this.getAttribute('data-tab') + '-view').style.display = 'block';
      });
    });
  })();
</script>
{{- end}}
`
