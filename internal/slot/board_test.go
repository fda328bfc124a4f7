package slot

import (
	"sync"
	"testing"
	"time"

	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/sse"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(e sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestBoard(pub Publisher) *Board {
	b := NewBoard(pub, nil)
	tick := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return b
}

func TestProvide_ResetReplaces(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBoard(pub)

	b.Provide(models.UI{Key: "habit-tracker-main", Slot: "main", Reset: true, Template: "<p>one</p>"})
	b.Provide(models.UI{Key: "habit-tracker-main", Slot: "main", Reset: true, Template: "<p>two</p>"})

	items, ok := b.Get("main")
	if !ok || len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Template != "<p>two</p>" {
		t.Errorf("template = %q", items[0].Template)
	}
	if pub.count() != 2 {
		t.Errorf("events = %d, want 2", pub.count())
	}
}

func TestProvide_WithoutResetStacks(t *testing.T) {
	b := newTestBoard(nil)
	b.Provide(models.UI{Key: "k", Slot: "s", Template: "a"})
	b.Provide(models.UI{Key: "k", Slot: "s", Template: "b"})

	items, _ := b.Get("s")
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	latest, ok := b.Latest("s")
	if !ok || latest.Template != "b" {
		t.Errorf("latest = %+v", latest)
	}
}

func TestProvide_IdenticalMarkupNotPublished(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBoard(pub)
	ui := models.UI{Key: "habit-tracker-main", Slot: "main", Reset: true, Template: "<p>same</p>"}

	b.Provide(ui)
	first, _ := b.Latest("main")
	b.Provide(ui)
	second, _ := b.Latest("main")

	if pub.count() != 1 {
		t.Errorf("events = %d, want 1", pub.count())
	}
	if !first.UpdatedAt.Equal(second.UpdatedAt) {
		t.Error("identical provide should not touch the slot")
	}
	if first.Checksum == "" {
		t.Error("missing checksum")
	}
}

func TestGetAndSlots(t *testing.T) {
	b := newTestBoard(nil)
	if _, ok := b.Get("main"); ok {
		t.Error("empty board should not have main")
	}
	b.Provide(models.UI{Key: "b", Slot: "side", Reset: true, Template: "x"})
	b.Provide(models.UI{Key: "a", Slot: "main", Reset: true, Template: "y"})

	slots := b.Slots()
	if len(slots) != 2 || slots[0] != "main" || slots[1] != "side" {
		t.Errorf("slots = %v", slots)
	}
}

func TestProvide_EventPayload(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBoard(pub)
	b.Provide(models.UI{Key: "habit-tracker-main", Slot: "main", Reset: true, Template: "<p/>"})

	e := pub.events[0]
	if e.Type != sse.EventSlotUpdated {
		t.Errorf("type = %q", e.Type)
	}
	data := e.Data.(map[string]string)
	if data["slot"] != "main" || data["key"] != "habit-tracker-main" || data["checksum"] == "" {
		t.Errorf("data = %v", data)
	}
}
