package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ingestion and dashboard counters exposed on /metrics.
type Metrics struct {
	ReloadsTotal      prometheus.Counter
	ReloadErrors      prometheus.Counter
	FilesLoaded       prometheus.Counter
	FilesRejected     prometheus.Counter
	RecordsLoaded     prometheus.Counter
	DashboardRequests prometheus.Counter
	LastReloadRecords prometheus.Gauge
	ReloadDuration    prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics registers and returns the service metrics. Registration happens
// once per process; repeated calls return the same collectors.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ReloadsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "reloads_total",
				Help:      "Number of dataset reload cycles attempted.",
			}),
			ReloadErrors: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "reload_errors_total",
				Help:      "Number of reload cycles that failed outright.",
			}),
			FilesLoaded: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "files_loaded_total",
				Help:      "Number of client files parsed successfully.",
			}),
			FilesRejected: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "files_rejected_total",
				Help:      "Number of client files rejected during ingestion.",
			}),
			RecordsLoaded: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "records_loaded_total",
				Help:      "Number of transaction rows ingested across all reloads.",
			}),
			DashboardRequests: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "txdash",
				Name:      "dashboard_requests_total",
				Help:      "Number of dashboard data requests served.",
			}),
			LastReloadRecords: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "txdash",
				Name:      "last_reload_records",
				Help:      "Record count of the most recent successful reload.",
			}),
			ReloadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Namespace: "txdash",
				Name:      "reload_duration_seconds",
				Help:      "Wall time of dataset reload cycles.",
				Buckets:   prometheus.DefBuckets,
			}),
		}
	})
	return metrics
}
