// Package slot keeps the latest dashboard markup per UI slot, standing in for
// the host's provideUI call.
package slot

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/starford/habitdash/internal/checksum"
	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/sse"
)

// Publisher receives slot.updated notifications.
type Publisher interface {
	Publish(event sse.Event)
}

// Content is the markup currently shown in a slot.
type Content struct {
	Key       string    `json:"key"`
	Slot      string    `json:"slot"`
	Template  string    `json:"-"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Board stores the markup provided for each slot.
type Board struct {
	mu      sync.RWMutex
	content map[string][]Content // slot -> payloads in arrival order
	pub     Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// NewBoard creates an empty board. pub may be nil.
func NewBoard(pub Publisher, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		content: make(map[string][]Content),
		pub:     pub,
		logger:  logger,
		now:     time.Now,
	}
}

// Provide places ui.Template into ui.Slot. With Reset, a payload already
// stored under the same key is replaced instead of stacked. Re-providing
// identical markup is a no-op and publishes nothing.
func (b *Board) Provide(ui models.UI) {
	sum := checksum.String(ui.Template)
	c := Content{
		Key:       ui.Key,
		Slot:      ui.Slot,
		Template:  ui.Template,
		Checksum:  sum,
		UpdatedAt: b.now(),
	}

	b.mu.Lock()
	items := b.content[ui.Slot]
	idx := -1
	if ui.Reset {
		for i := range items {
			if items[i].Key == ui.Key {
				idx = i
				break
			}
		}
	}
	if idx >= 0 && items[idx].Checksum == sum {
		b.mu.Unlock()
		return
	}
	if idx >= 0 {
		items[idx] = c
	} else {
		items = append(items, c)
	}
	b.content[ui.Slot] = items
	b.mu.Unlock()

	b.logger.Debug("slot: provided",
		slog.String("slot", ui.Slot),
		slog.String("key", ui.Key),
		slog.Int("bytes", len(ui.Template)))

	if b.pub != nil {
		b.pub.Publish(sse.Event{Type: sse.EventSlotUpdated, Data: map[string]string{
			"slot":     ui.Slot,
			"key":      ui.Key,
			"checksum": sum,
		}})
	}
}

// Get returns the payloads of a slot in arrival order.
func (b *Board) Get(slot string) ([]Content, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	items, ok := b.content[slot]
	if !ok || len(items) == 0 {
		return nil, false
	}
	return append([]Content(nil), items...), true
}

// Latest returns the most recently provided payload of a slot.
func (b *Board) Latest(slot string) (Content, bool) {
	items, ok := b.Get(slot)
	if !ok {
		return Content{}, false
	}
	latest := items[0]
	for _, c := range items[1:] {
		if c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	return latest, true
}

// Slots lists the slot ids that hold markup, sorted.
func (b *Board) Slots() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.content))
	for s := range b.content {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
