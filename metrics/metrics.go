// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for the results service.
//
// A nil *Collector is valid and records nothing, so pure packages can accept
// one without forcing callers (or tests) to set up a registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ballotboard"

// Collector groups every metric the service exports.
type Collector struct {
	aggregations        prometheus.Counter
	aggregationDuration prometheus.Histogram
	invariantWarnings   *prometheus.CounterVec
	upstreamFetches     *prometheus.CounterVec
	upstreamLatency     *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
	liveBoards          prometheus.Gauge
}

// NewCollector creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		aggregations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Number of election result aggregations computed.",
		}),
		aggregationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent ranking and scoring one election snapshot.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		invariantWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_warnings_total",
			Help:      "Upstream data problems noticed during aggregation.",
		}, []string{"kind"}),
		upstreamFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_total",
			Help:      "Requests made to the upstream election API.",
		}, []string{"op", "result"}),
		upstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Latency of upstream election API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		liveBoards: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_boards",
			Help:      "Live counting boards currently running.",
		}),
	}
}

func (c *Collector) ObserveAggregation(d time.Duration) {
	if c == nil {
		return
	}
	c.aggregations.Inc()
	c.aggregationDuration.Observe(d.Seconds())
}

func (c *Collector) InvariantWarning(kind string) {
	if c == nil {
		return
	}
	c.invariantWarnings.WithLabelValues(kind).Inc()
}

// ObserveFetch records one upstream call. result is "ok", "cached" or "error".
func (c *Collector) ObserveFetch(op, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.upstreamFetches.WithLabelValues(op, result).Inc()
	if result != "cached" {
		c.upstreamLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (c *Collector) ObserveRequest(route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) LiveBoardOpened() {
	if c == nil {
		return
	}
	c.liveBoards.Inc()
}

func (c *Collector) LiveBoardClosed() {
	if c == nil {
		return
	}
	c.liveBoards.Dec()
}
