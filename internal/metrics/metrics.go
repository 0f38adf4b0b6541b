package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue metrics
var (
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asset_browser_queue_depth",
			Help: "Number of references currently waiting in a worker queue",
		},
		[]string{"queue"},
	)

	QueueSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_browser_queue_submissions_total",
			Help: "Total number of references submitted to worker queues",
		},
		[]string{"queue", "mode"}, // mode: "normal", "forced", "duplicate"
	)

	QueueResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_browser_queue_resets_total",
			Help: "Total number of queue reset requests",
		},
		[]string{"queue"},
	)
)

// Worker metrics
var (
	WorkerItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_browser_worker_items_total",
			Help: "Total number of items taken off worker queues",
		},
		[]string{"worker", "outcome"}, // outcome: "ready", "dropped", "stale", "error"
	)

	WorkerStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asset_browser_worker_step_duration_seconds",
			Help:    "Duration of a single worker step",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"worker"},
	)

	WorkerPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_browser_worker_panics_total",
			Help: "Total number of panics recovered at the worker activation boundary",
		},
		[]string{"worker"},
	)

	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_sweeps_total",
			Help: "Total number of background metadata sweeps",
		},
	)

	SweepItemsEnriched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_sweep_items_enriched_total",
			Help: "Total number of records enriched by background sweeps",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_thumbnails_generated_total",
			Help: "Total number of thumbnails generated",
		},
	)

	ThumbnailsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_thumbnails_failed_total",
			Help: "Total number of thumbnail generations that fell back to the placeholder",
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_thumbnail_cache_hits_total",
			Help: "Total number of thumbnails served from the on-disk cache",
		},
	)

	ThumbnailsOversized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_thumbnails_oversized_total",
			Help: "Total number of sources refused because they exceed the size ceiling",
		},
	)
)

// Sidecar store metrics
var (
	SidecarReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_browser_sidecar_reads_total",
			Help: "Total number of sidecar store reads",
		},
		[]string{"field", "status"},
	)
)

// Monitor metrics
var (
	PendingItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "asset_browser_pending_items",
			Help: "Total number of references pending across all registered queues",
		},
	)
)

// Collector metrics
var (
	CollectorRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_browser_collector_runs_total",
			Help: "Total number of directory scans",
		},
	)

	CollectorRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asset_browser_collector_records",
			Help: "Number of records produced by the last directory scan",
		},
		[]string{"type"},
	)
)
