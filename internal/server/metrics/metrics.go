// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lifekeeper"

type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	habitCompletions prometheus.Counter
	entryDeletions   prometheus.Counter
	gateDenials      *prometheus.CounterVec
}

// New creates a registry with the HTTP, ledger and gate collectors plus the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		habitCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "habits",
			Name:      "completions_total",
			Help:      "Habit completions recorded.",
		}),
		entryDeletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "habits",
			Name:      "entry_deletions_total",
			Help:      "Habit entries removed, each taking one off a streak.",
		}),
		gateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "denials_total",
			Help:      "Requests refused because the module is switched off.",
		}, []string{"module"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.habitCompletions,
		m.entryDeletions,
		m.gateDenials,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestStarted() { m.httpInFlight.Inc() }

// RequestFinished records one served request. route should be the route
// template, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RequestFinished(method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	method = strings.ToUpper(method)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) HabitCompleted() { m.habitCompletions.Inc() }

func (m *Metrics) HabitEntryDeleted() { m.entryDeletions.Inc() }

func (m *Metrics) GateDenied(module string) { m.gateDenials.WithLabelValues(module).Inc() }
