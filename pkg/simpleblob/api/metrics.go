package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

const metricsNamespace = "simpleblob"

// PrometheusCollector implements MetricsCollector on a Prometheus registry
type PrometheusCollector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

// NewPrometheusCollector registers request metrics and an objects gauge fed
// by service.Count on a fresh registry
func NewPrometheusCollector(service simpleblob.Service) *PrometheusCollector {
	c := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_response_bytes_total",
			Help:      "Response body bytes by method and route.",
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.requests,
		c.duration,
		c.bytes,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "objects",
			Help:      "Number of objects in the index.",
		}, func() float64 { return float64(service.Count()) }),
		collectors.NewGoCollector(),
	)

	return c
}

func (c *PrometheusCollector) RecordRequest(method, route string, statusCode int, duration time.Duration, size int64) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.duration.WithLabelValues(method, route).Observe(duration.Seconds())
	c.bytes.WithLabelValues(method, route).Add(float64(size))
}

// Handler exposes the registry in the Prometheus text format
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
