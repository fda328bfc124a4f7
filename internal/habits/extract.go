// Package habits turns journal blocks into per-habit statistics.
package habits

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/parser"
)

// EntryMap groups habit entries by exact habit name in first-seen order.
type EntryMap = *orderedmap.OrderedMap[string, []models.HabitEntry]

// NewEntryMap returns an empty EntryMap.
func NewEntryMap() EntryMap {
	return orderedmap.New[string, []models.HabitEntry]()
}

// ExtractHabits walks blocks depth-first (a block, then its children, then
// its next sibling) and appends one entry per recognized #habit block to
// into. Every block is visited at most once, so malformed trees that
// share or cycle back to a block cannot loop.
func ExtractHabits(blocks []*models.Block, date, pageName string, into EntryMap) {
	visited := make(map[*models.Block]struct{})

	stack := make([]*models.Block, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, blocks[i])
	}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b == nil {
			continue
		}
		if _, seen := visited[b]; seen {
			continue
		}
		visited[b] = struct{}{}

		if m, ok := parser.ParseHabit(b.Content); ok {
			entry := models.HabitEntry{
				Name:      m.Name,
				Date:      date,
				Time:      m.Time,
				Page:      pageName,
				BlockUUID: b.UUID,
			}
			entries, _ := into.Get(m.Name)
			into.Set(m.Name, append(entries, entry))
		}

		for i := len(b.Children) - 1; i >= 0; i-- {
			stack = append(stack, b.Children[i])
		}
	}
}
