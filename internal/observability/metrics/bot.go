package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BotMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal       *prometheus.CounterVec
	searchResults     *prometheus.HistogramVec
	searchDuration    *prometheus.HistogramVec
	indexLoadTotal    *prometheus.CounterVec
	documentParts     *prometheus.HistogramVec
	brokenLinksTotal  *prometheus.CounterVec
	activeSessions    prometheus.GaugeFunc
	rateLimitedTotal  *prometheus.CounterVec
}

// NewBotMetrics builds the bot-side registry. sessionCount feeds the active
// sessions gauge; pass nil to omit it.
func NewBotMetrics(service string, sessionCount func() int) *BotMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docibot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docibot",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total search requests by outcome.",
		},
		[]string{"service", "status"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docibot",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of returned results per successful search.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docibot",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	indexLoadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "index",
			Name:      "load_total",
			Help:      "Total index load attempts by outcome.",
		},
		[]string{"service", "status"},
	)
	documentParts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docibot",
			Subsystem: "document",
			Name:      "rendered_parts",
			Help:      "Distribution of message parts per rendered document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	brokenLinksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "document",
			Name:      "broken_links_total",
			Help:      "Total broken chunk links encountered during reconstruction.",
		},
		[]string{"service"},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the per-user rate limiter.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchResults,
		searchDuration,
		indexLoadTotal,
		documentParts,
		brokenLinksTotal,
		rateLimitedTotal,
	)

	m := &BotMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		searchTotal:      searchTotal,
		searchResults:    searchResults,
		searchDuration:   searchDuration,
		indexLoadTotal:   indexLoadTotal,
		documentParts:    documentParts,
		brokenLinksTotal: brokenLinksTotal,
		rateLimitedTotal: rateLimitedTotal,
	}
	if sessionCount != nil {
		m.activeSessions = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "docibot",
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Number of active user sessions.",
				ConstLabels: prometheus.Labels{
					"service": service,
				},
			},
			func() float64 { return float64(sessionCount()) },
		)
		registry.MustRegister(m.activeSessions)
	}
	return m
}

func (m *BotMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BotMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-user and per-rank path segments to keep the
// label cardinality bounded.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/sessions/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		return path
	}
	parts[0] = "{user_id}"
	if len(parts) >= 2 && parts[1] == "results" && len(parts) >= 3 {
		parts[2] = "{rank}"
	}
	return "/v1/sessions/" + strings.Join(parts, "/")
}

func (m *BotMetrics) RecordSearch(service, status string, results int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.searchTotal.WithLabelValues(service, status).Inc()
	if status == "ok" {
		m.searchResults.WithLabelValues(service).Observe(float64(results))
		m.searchDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

func (m *BotMetrics) RecordIndexLoad(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.indexLoadTotal.WithLabelValues(service, status).Inc()
}

func (m *BotMetrics) RecordDocumentRender(service string, parts, brokenLinks int) {
	m.documentParts.WithLabelValues(service).Observe(float64(parts))
	if brokenLinks > 0 {
		m.brokenLinksTotal.WithLabelValues(service).Add(float64(brokenLinks))
	}
}

func (m *BotMetrics) RecordRateLimited(service string) {
	m.rateLimitedTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
