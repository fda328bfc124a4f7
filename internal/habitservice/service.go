// Package habitservice ties the habit pipeline to the host graph, the slot
// board and the outer surfaces (HTTP, MCP, CLI).
package habitservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/habitdash/internal/apperr"
	"github.com/starford/habitdash/internal/dashboard"
	"github.com/starford/habitdash/internal/habits"
	"github.com/starford/habitdash/internal/journal"
	"github.com/starford/habitdash/internal/metrics"
	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/slot"
	"github.com/starford/habitdash/internal/storage"
)

// Defaults for the dashboard page.
const (
	DefaultPage     = "Habits"
	DefaultRenderer = "habit-tracker"
)

// Service renders the habit dashboard and answers statistics queries.
type Service struct {
	store    storage.Provider
	tracker  *habits.Tracker
	board    *slot.Board
	metrics  *metrics.Metrics
	logger   *slog.Logger
	page     string
	renderer string
	now      func() time.Time

	mu       sync.Mutex
	rendered map[string]struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithPage sets the name of the dashboard page.
func WithPage(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.page = name
		}
	}
}

// WithRenderer sets the renderer name used for the marker block and the
// slot keys.
func WithRenderer(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.renderer = name
		}
	}
}

// WithMetrics records render metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock that picks the dashboard's month.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new habit service.
func NewService(store storage.Provider, board *slot.Board, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    store,
		tracker:  habits.NewTracker(store, logger),
		board:    board,
		logger:   logger,
		page:     DefaultPage,
		renderer: DefaultRenderer,
		now:      time.Now,
		rendered: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Marker is the block content that hosts the dashboard on its page.
func (s *Service) Marker() string {
	return "{{renderer :" + s.renderer + "}}"
}

// Key is the stable renderer key for a slot.
func (s *Service) Key(slotID string) string {
	return s.renderer + "-" + slotID
}

// Page is the dashboard page name.
func (s *Service) Page() string {
	return s.page
}

// EnsureDashboardPage creates the dashboard page and its marker block when
// they are missing. It is idempotent; failures are logged, not returned.
func (s *Service) EnsureDashboardPage(ctx context.Context) {
	if err := s.ensureDashboardPage(ctx); err != nil {
		s.logger.Error("habitservice: ensure dashboard page",
			slog.String("page", s.page),
			slog.String("error", err.Error()))
	}
}

func (s *Service) ensureDashboardPage(ctx context.Context) error {
	page, err := s.store.GetPage(ctx, s.page)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}
	if page == nil {
		if _, err := s.store.CreatePage(ctx, s.page, nil, storage.PageOptions{Redirect: false}); err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		s.logger.Info("habitservice: created dashboard page", slog.String("page", s.page))
	}

	blocks, err := s.store.GetPageBlocksTree(ctx, s.page)
	if err != nil {
		return fmt.Errorf("get blocks: %w", err)
	}
	marker := s.Marker()
	for _, b := range blocks {
		if b != nil && strings.TrimSpace(b.Content) == marker {
			return nil
		}
	}
	if _, err := s.store.AppendBlockInPage(ctx, s.page, marker); err != nil {
		return fmt.Errorf("append marker: %w", err)
	}
	s.logger.Info("habitservice: added dashboard marker", slog.String("page", s.page))
	return nil
}

// Render computes the statistics over the whole journal and provides the
// dashboard markup to slotID, replacing any earlier render of that slot.
// Failures are logged and nothing is provided.
func (s *Service) Render(ctx context.Context, slotID string) {
	start := time.Now()
	html, err := s.renderHTML(ctx)
	if err != nil {
		s.observe(start, metrics.ResultError)
		s.logger.Error("habitservice: render",
			slog.String("slot", slotID),
			slog.String("error", err.Error()))
		return
	}

	s.board.Provide(models.UI{
		Key:      s.Key(slotID),
		Slot:     slotID,
		Reset:    true,
		Template: html,
	})
	s.observe(start, metrics.ResultOK)

	s.mu.Lock()
	s.rendered[slotID] = struct{}{}
	s.mu.Unlock()
}

// RenderAll re-renders every slot that has been rendered before.
func (s *Service) RenderAll(ctx context.Context) {
	s.mu.Lock()
	slots := make([]string, 0, len(s.rendered))
	for id := range s.rendered {
		slots = append(slots, id)
	}
	s.mu.Unlock()
	sort.Strings(slots)

	for _, id := range slots {
		if ctx.Err() != nil {
			return
		}
		s.Render(ctx, id)
	}
}

func (s *Service) renderHTML(ctx context.Context) (string, error) {
	entries, pages, err := s.tracker.Entries(ctx, journal.Range{})
	if err != nil {
		return "", err
	}
	stats := habits.Aggregate(entries)
	s.record(stats, pages)
	return dashboard.HTML(habits.Ranked(stats), s.now())
}

// Stats returns the statistics for r, most frequent habit first.
func (s *Service) Stats(ctx context.Context, r journal.Range) ([]models.HabitStats, error) {
	stats, err := s.tracker.HabitData(ctx, r)
	if err != nil {
		return nil, err
	}
	return habits.Ranked(stats), nil
}

// Habit returns the statistics of one habit by exact name.
func (s *Service) Habit(ctx context.Context, name string, r journal.Range) (*models.HabitStats, error) {
	stats, err := s.tracker.HabitData(ctx, r)
	if err != nil {
		return nil, err
	}
	h, ok := stats.Get(name)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &h, nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) observe(start time.Time, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RendersTotal.WithLabelValues(result).Inc()
	s.metrics.RenderDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) record(stats habits.StatsMap, pages int) {
	if s.metrics == nil {
		return
	}
	s.metrics.PagesScanned.Set(float64(pages))
	s.metrics.HabitEntries.Reset()
	for pair := stats.Oldest(); pair != nil; pair = pair.Next() {
		s.metrics.HabitEntries.WithLabelValues(pair.Key).Set(float64(pair.Value.TotalCount))
	}
}
