// Package metrics exposes Prometheus collectors for the HTTP surface, the
// session registry and the admin event workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what middleware, services and the workflow report through.
type Recorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
	RecordAccessDecision(destination, outcome string)
	RecordEventMutation(op string, err error)
	RecordStaleResult(source string)
	SetActiveSessions(n int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	decisions      *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	stale          *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everhack_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "everhack_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everhack_access_decisions_total",
			Help: "Access guard decisions by destination and outcome.",
		}, []string{"destination", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everhack_event_mutations_total",
			Help: "Event create/update/delete attempts by outcome.",
		}, []string{"op", "outcome"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everhack_stale_results_discarded_total",
			Help: "Backend results dropped because a newer request or teardown superseded them.",
		}, []string{"source"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "everhack_active_sessions",
			Help: "Sessions currently held by the session registry.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.decisions, c.mutations, c.stale, c.activeSessions)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordAccessDecision(destination, outcome string) {
	c.decisions.WithLabelValues(destination, outcome).Inc()
}

// RecordEventMutation counts op ("create", "update", "delete") as "ok" when
// err is nil and "error" otherwise.
func (c *Collector) RecordEventMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.mutations.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordStaleResult(source string) {
	c.stale.WithLabelValues(source).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAccessDecision(string, string)              {}
func (Nop) RecordEventMutation(string, error)                {}
func (Nop) RecordStaleResult(string)                         {}
func (Nop) SetActiveSessions(int)                            {}
