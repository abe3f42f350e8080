// Package metrics exposes Prometheus instrumentation for scrape runs and
// reminder fan-out.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faithlog"

type Metrics struct {
	registry *prometheus.Registry

	ScrapeRuns       *prometheus.CounterVec
	ScrapeURLs       *prometheus.CounterVec
	ScrapeDuration   prometheus.Histogram
	ResourcesStored  *prometheus.CounterVec
	ReminderFirings  *prometheus.CounterVec
	RemindersCreated prometheus.Counter
}

// New registers every collector on a fresh registry, so several instances
// can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScrapeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_runs_total",
			Help:      "Scrape runs by terminal job status.",
		}, []string{"status"}),
		ScrapeURLs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_urls_total",
			Help:      "Scrape target URLs by outcome (inserted, skipped, failed).",
		}, []string{"outcome"}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_run_duration_seconds",
			Help:      "Duration of scrape runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		ResourcesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_stored_total",
			Help:      "Resources inserted by ingestion path.",
		}, []string{"path"}),
		ReminderFirings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_firings_total",
			Help:      "Reminder fan-out firings by result.",
		}, []string{"result"}),
		RemindersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_notifications_total",
			Help:      "Reminder notifications stored.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ScrapeRuns,
		m.ScrapeURLs,
		m.ScrapeDuration,
		m.ResourcesStored,
		m.ReminderFirings,
		m.RemindersCreated,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
