package habits

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/habitdash/internal/journal"
	"github.com/starford/habitdash/internal/models"
)

// Source is the read-only view of the host graph the tracker needs.
type Source interface {
	// GetAllPages returns every page known to the host.
	GetAllPages(ctx context.Context) ([]models.Page, error)
	// GetPageBlocksTree returns the top-level blocks of a page with their
	// nested children, or nil when the page has no blocks.
	GetPageBlocksTree(ctx context.Context, pageName string) ([]*models.Block, error)
}

// Tracker computes habit statistics from a Source. It keeps no state
// between calls.
type Tracker struct {
	src    Source
	logger *slog.Logger
}

// NewTracker creates a Tracker reading from src.
func NewTracker(src Source, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{src: src, logger: logger}
}

// Entries scans the journal pages in r, one page at a time in host order,
// and groups the extracted entries by habit name.
func (t *Tracker) Entries(ctx context.Context, r journal.Range) (EntryMap, int, error) {
	pages, err := t.src.GetAllPages(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("habits: get all pages: %w", err)
	}

	entries := NewEntryMap()
	selected := journal.SelectJournalPages(pages, r)
	for _, p := range selected {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		blocks, err := t.src.GetPageBlocksTree(ctx, p.Name)
		if err != nil {
			return nil, 0, fmt.Errorf("habits: get blocks of %q: %w", p.Name, err)
		}
		if len(blocks) == 0 {
			continue
		}
		ExtractHabits(blocks, journal.Day(p.JournalDay).String(), p.Name, entries)
	}

	t.logger.Debug("habits: scanned journal",
		slog.Int("pages", len(pages)),
		slog.Int("journal_pages", len(selected)),
		slog.Int("habits", entries.Len()))
	return entries, len(selected), nil
}

// HabitData runs the full pipeline: select journal pages, extract entries
// and aggregate them per habit.
func (t *Tracker) HabitData(ctx context.Context, r journal.Range) (StatsMap, error) {
	entries, _, err := t.Entries(ctx, r)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries), nil
}
