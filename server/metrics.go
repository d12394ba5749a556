// server/metrics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics exported by the server.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec
	Cache     *prometheus.CounterVec
	Entities  *prometheus.GaugeVec
}

// NewMetrics registers the server's metrics with reg, or with the
// default registry if reg is nil. Metrics that are already registered
// are reused so that multiple servers may share a registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cifp_http_requests_total",
		Help: "Total number of HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}))
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cifp_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"}))
	if err != nil {
		return nil, err
	}
	cache, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cifp_response_cache_total",
		Help: "Response cache lookups, labeled by result (hit or miss).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	entities, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cifp_entities",
		Help: "Number of entities in the served database, labeled by kind.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:  gatherer,
		Requests:  requests,
		Durations: durations,
		Cache:     cache,
		Entities:  entities,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector already registered with incompatible type: %v", err)
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (m *Metrics) SetEntityCounts(stats map[string]int) {
	for kind, n := range stats {
		m.Entities.WithLabelValues(kind).Set(float64(n))
	}
}

func (m *Metrics) CacheLookup(hit bool) {
	if hit {
		m.Cache.WithLabelValues("hit").Inc()
	} else {
		m.Cache.WithLabelValues("miss").Inc()
	}
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
