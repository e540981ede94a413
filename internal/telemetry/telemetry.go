// Package telemetry exposes Prometheus instrumentation for the service.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ad-reporting/internal/models"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	TableCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_table_cache_hits_total",
			Help: "Report table lookups served from memory",
		},
		[]string{"report"},
	)

	TableCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_table_cache_misses_total",
			Help: "Report table lookups that required a source read",
		},
		[]string{"report"},
	)

	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "report_table_rows",
			Help: "Rows in the loaded report table",
		},
		[]string{"report"},
	)

	TableLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_table_load_duration_seconds",
			Help:    "Time spent reading and normalizing a report source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Observer satisfies storage.CacheObserver and loader.LoadObserver.
type Observer struct{}

func (Observer) CacheHit(report models.ReportType) {
	TableCacheHits.WithLabelValues(string(report)).Inc()
}

func (Observer) CacheMiss(report models.ReportType) {
	TableCacheMisses.WithLabelValues(string(report)).Inc()
}

func (Observer) TableLoaded(report models.ReportType, rows int, took time.Duration) {
	TableRows.WithLabelValues(string(report)).Set(float64(rows))
	TableLoadDuration.WithLabelValues(string(report)).Observe(took.Seconds())
}
