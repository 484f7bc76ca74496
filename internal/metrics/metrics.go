// Package metrics provides Prometheus metrics collection for the print layout service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the collectors registered on it. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestTotal    *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	quotesTotal         *prometheus.CounterVec
	quoteDuration       prometheus.Histogram
	layoutPagesTotal    prometheus.Counter
	layoutSkippedTotal  prometheus.Counter
	layoutDuration      prometheus.Histogram
}

// New registers all collectors, plus Go and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	calcBuckets := []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

	return &Metrics{
		registry: reg,
		httpRequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		quotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotes_total",
				Help: "Total number of order quotes",
			},
			[]string{"status"},
		),
		quoteDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quote_duration_seconds",
				Help:    "Order quote computation duration in seconds",
				Buckets: calcBuckets,
			},
		),
		layoutPagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "layout_pages_total",
				Help: "Total number of pages produced by the layout packer",
			},
		),
		layoutSkippedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "layout_skipped_items_total",
				Help: "Total number of items too large to be placed on a page",
			},
		),
		layoutDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "layout_duration_seconds",
				Help:    "Layout packing duration in seconds",
				Buckets: calcBuckets,
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument wraps next and records request count and latency under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// RecordQuote records one quote computation.
func (m *Metrics) RecordQuote(duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.quoteDuration.Observe(duration.Seconds())
	m.quotesTotal.WithLabelValues(status).Inc()
}

// RecordLayout records one packing pass.
func (m *Metrics) RecordLayout(duration time.Duration, pages, skipped int) {
	if m == nil {
		return
	}
	m.layoutDuration.Observe(duration.Seconds())
	m.layoutPagesTotal.Add(float64(pages))
	m.layoutSkippedTotal.Add(float64(skipped))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
