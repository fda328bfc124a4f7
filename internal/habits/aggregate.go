package habits

import (
	"cmp"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/habitdash/internal/models"
)

// StatsMap holds one HabitStats per habit name in first-seen order.
type StatsMap = *orderedmap.OrderedMap[string, models.HabitStats]

// Aggregate sorts every habit's entries by date, then by time when both
// entries carry one, and counts them. The sort is stable, so same-date
// entries where either side lacks a time keep their extraction order.
func Aggregate(entries EntryMap) StatsMap {
	out := orderedmap.New[string, models.HabitStats]()
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		sorted := slices.Clone(pair.Value)
		slices.SortStableFunc(sorted, compareEntries)
		out.Set(pair.Key, models.HabitStats{
			Name:       pair.Key,
			TotalCount: len(sorted),
			Entries:    sorted,
		})
	}
	return out
}

func compareEntries(a, b models.HabitEntry) int {
	if c := cmp.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	if a.HasTime() && b.HasTime() {
		return cmp.Compare(a.Time, b.Time)
	}
	return 0
}

// Ranked lists the stats by descending TotalCount. Habits with equal
// counts keep the map's iteration order, which callers must not rely on.
func Ranked(stats StatsMap) []models.HabitStats {
	out := make([]models.HabitStats, 0, stats.Len())
	for pair := stats.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	slices.SortStableFunc(out, func(a, b models.HabitStats) int {
		return cmp.Compare(b.TotalCount, a.TotalCount)
	})
	return out
}
