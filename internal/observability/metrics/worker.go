package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventTotal    *prometheus.CounterVec
	eventInFlight prometheus.Gauge
	eventLag      *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docibot",
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Total processed session events by type and status.",
		},
		[]string{"service", "type", "status"},
	)
	eventInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docibot",
			Subsystem: "worker",
			Name:      "events_in_flight",
			Help:      "Number of session events being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docibot",
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between event emission and processing start.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventTotal, eventInFlight, eventLag)

	return &WorkerMetrics{
		registry:      registry,
		eventTotal:    eventTotal,
		eventInFlight: eventInFlight,
		eventLag:      eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) EventStarted(service string, occurredAt time.Time) {
	m.eventInFlight.Inc()
	if !occurredAt.IsZero() {
		m.eventLag.WithLabelValues(service).Observe(time.Since(occurredAt).Seconds())
	}
}

func (m *WorkerMetrics) EventFinished(service, eventType, status string) {
	m.eventInFlight.Dec()
	if eventType == "" {
		eventType = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.eventTotal.WithLabelValues(service, eventType, status).Inc()
}
