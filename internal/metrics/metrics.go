// Package metrics defines the Prometheus metrics of the habit dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors. All names are prefixed with "habitdash_".
//
//   - habitdash_renders_total{result} - dashboard renders by outcome
//   - habitdash_render_duration_seconds - time from scan start to provided markup
//   - habitdash_habit_entries{habit} - entries per habit at the last scan
//   - habitdash_journal_pages_scanned - journal pages read by the last scan
type Metrics struct {
	RendersTotal   *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	HabitEntries   *prometheus.GaugeVec
	PagesScanned   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		RendersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitdash_renders_total",
				Help: "Total number of dashboard renders",
			},
			[]string{"result"},
		),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "habitdash_render_duration_seconds",
			Help:    "Duration of dashboard renders in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		HabitEntries: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "habitdash_habit_entries",
				Help: "Number of entries per habit at the last scan",
			},
			[]string{"habit"},
		),
		PagesScanned: f.NewGauge(prometheus.GaugeOpts{
			Name: "habitdash_journal_pages_scanned",
			Help: "Number of journal pages read by the last scan",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
