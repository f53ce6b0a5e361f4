package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the lifecycle API.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	correctionsCreated  *prometheus.CounterVec
	correctionsResolved *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheHitRatio       prometheus.Gauge

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_transitions_total",
			Help: "Committed report status transitions",
		}, []string{"kind", "from", "to"}),
		correctionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_corrections_created_total",
			Help: "Correction items appended to the ledger",
		}, []string{"kind"}),
		correctionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_corrections_resolved_total",
			Help: "Correction items resolved",
		}, []string{"kind"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_validation_failures_total",
			Help: "Validation passes that found missing required fields",
		}, []string{"kind", "role"}),
	}
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})
	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.transitions, m.correctionsCreated,
		m.correctionsResolved, m.validationFailures, cacheLatency, cacheWrite, cacheHitRatio, goroutines)

	m.cacheLatency = cacheLatency
	m.cacheWrite = cacheWrite
	m.cacheHitRatio = cacheHitRatio
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordTransition counts a committed status change.
func (m *MetricsService) RecordTransition(kind, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, from, to).Inc()
}

// RecordCorrectionsCreated counts appended ledger items.
func (m *MetricsService) RecordCorrectionsCreated(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.correctionsCreated.WithLabelValues(kind).Add(float64(n))
}

// RecordCorrectionResolved counts one resolution.
func (m *MetricsService) RecordCorrectionResolved(kind string) {
	if m == nil {
		return
	}
	m.correctionsResolved.WithLabelValues(kind).Inc()
}

// RecordValidationFailure counts a validation pass with missing fields.
func (m *MetricsService) RecordValidationFailure(kind, role string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind, role).Inc()
}

// RecordCacheOperation records a cache hit or miss and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}
