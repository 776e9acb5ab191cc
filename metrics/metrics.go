// Package metrics exposes Prometheus instrumentation for the HTTP server and
// the JSON-RPC dispatcher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors. It satisfies the dispatcher's Recorder
// interface.
type Metrics struct {
	registry *prometheus.Registry

	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	httpTotal   *prometheus.CounterVec
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_calls_total",
			Help: "JSON-RPC calls by method and error code (0 for success).",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rpc_call_duration_seconds",
			Help:    "JSON-RPC call latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(m.rpcCalls, m.rpcDuration, m.httpTotal)
	return m
}

// ObserveRPC records one completed method call.
func (m *Metrics) ObserveRPC(method string, code int, elapsed time.Duration) {
	m.rpcCalls.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware counts every HTTP response by status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.httpTotal.WithLabelValues(strconv.Itoa(sw.status)).Inc()
	})
}
