package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the planning API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	sessionsOpened  prometheus.Counter
	commitTotal     *prometheus.CounterVec
	commitDuration  prometheus.Observer
	intervalsWrites *prometheus.CounterVec
	coverageSlots   *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_store_latency_seconds",
		Help:    "Latency for planning session lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_store_write_seconds",
		Help:    "Latency for planning session writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_store_hit_ratio",
		Help: "Ratio of session lookups that found a live session",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_store_hits_total",
		Help: "Total session lookups that found a live session",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_store_misses_total",
		Help: "Total session lookups that missed",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	sessionsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planning_sessions_opened_total",
		Help: "Total planning sessions opened",
	})

	commitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_commits_total",
		Help: "Total board commits by outcome",
	}, []string{"outcome"})

	commitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planning_commit_duration_seconds",
		Help:    "Duration of board commits",
		Buckets: prometheus.DefBuckets,
	})

	intervalWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_interval_writes_total",
		Help: "Assignment interval rows written by commits",
	}, []string{"kind"})

	coverageSlots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_slots_evaluated_total",
		Help: "Coverage verdicts computed per status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, sessionsOpened, commitTotal, commitDuration, intervalWrites, coverageSlots, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		sessionsOpened:  sessionsOpened,
		commitTotal:     commitTotal,
		commitDuration:  commitDuration,
		intervalsWrites: intervalWrites,
		coverageSlots:   coverageSlots,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records session lookup hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of session writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordSessionOpened counts a newly opened planning session.
func (m *MetricsService) RecordSessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

// RecordCommit tracks a commit attempt. A nil summary records only the outcome.
func (m *MetricsService) RecordCommit(outcome string, duration time.Duration, summary *CommitSummary) {
	if m == nil {
		return
	}
	m.commitTotal.WithLabelValues(outcome).Inc()
	m.commitDuration.Observe(duration.Seconds())
	if summary == nil {
		return
	}
	m.intervalsWrites.WithLabelValues("truncated").Add(float64(summary.Truncated))
	m.intervalsWrites.WithLabelValues("continuation").Add(float64(summary.Continuations))
	m.intervalsWrites.WithLabelValues("deleted").Add(float64(summary.Deleted))
	m.intervalsWrites.WithLabelValues("inserted").Add(float64(summary.Inserted))
}

// RecordCoverage counts a computed slot verdict.
func (m *MetricsService) RecordCoverage(status models.CoverageStatus) {
	if m == nil {
		return
	}
	m.coverageSlots.WithLabelValues(string(status)).Inc()
}
