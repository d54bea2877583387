package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// storage operations and scoring runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	scoringRuns     *prometheus.CounterVec
	scoredTeachers  prometheus.Counter
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

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of storage backing operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "op"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operation_errors_total",
		Help: "Storage backing operations that returned an error",
	}, []string{"table", "op"})

	scoringRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_runs_total",
		Help: "Score recalculations by outcome",
	}, []string{"outcome"})

	scoredTeachers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoring_teachers_total",
		Help: "Teacher scores written by recalculations",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, storeErrors, scoringRuns, scoredTeachers, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		storeErrors:     storeErrors,
		scoringRuns:     scoringRuns,
		scoredTeachers:  scoredTeachers,
	}
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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

// ObserveStoreOperation records one storage call. Not-found lookups are not errors.
func (m *MetricsService) ObserveStoreOperation(table, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(table, op).Observe(duration.Seconds())
	if err != nil && !isNotFound(err) {
		m.storeErrors.WithLabelValues(table, op).Inc()
	}
}

// ObserveScoring records the outcome of one institution recalculation.
func (m *MetricsService) ObserveScoring(teachers int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.scoringRuns.WithLabelValues("error").Inc()
		return
	}
	m.scoringRuns.WithLabelValues("success").Inc()
	m.scoredTeachers.Add(float64(teachers))
}
