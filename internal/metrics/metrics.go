// Package metrics exposes Prometheus metrics for document generation and
// for the requests served by the documentation server.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/openapi"
)

const (
	namespace = "routedoc"

	// UnmatchedRoute labels requests that no route in the tree served.
	UnmatchedRoute = "_unmatched"
)

// Metrics owns a private Prometheus registry with the Go and process
// collectors plus the routedoc metrics.
type Metrics struct {
	registry *prometheus.Registry

	generationRuns     *prometheus.CounterVec
	generationDuration prometheus.Histogram
	operations         prometheus.Gauge
	schemas            prometheus.Gauge
	paths              prometheus.Gauge

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// templates caches the documented path template per route node.
	templates sync.Map
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_runs_total",
			Help:      "Document generation runs by result.",
		}, []string{"result"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent building the OpenAPI document.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		operations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_operations",
			Help:      "Operations in the last generated document.",
		}),
		schemas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_schemas",
			Help:      "Component schemas in the last generated document.",
		}),
		paths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_paths",
			Help:      "Paths in the last generated document.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generationRuns,
		m.generationDuration,
		m.operations,
		m.schemas,
		m.paths,
		m.requestsTotal,
		m.requestDuration,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveBuild records one generation run. Document gauges keep their last
// successful values when err is non-nil.
func (m *Metrics) ObserveBuild(doc *openapi.Document, took time.Duration, err error) {
	m.generationDuration.Observe(took.Seconds())

	if err != nil || doc == nil {
		m.generationRuns.WithLabelValues("error").Inc()
		return
	}

	m.generationRuns.WithLabelValues("success").Inc()
	m.operations.Set(float64(doc.OperationCount()))
	m.paths.Set(float64(len(doc.Paths)))
	if doc.Components != nil {
		m.schemas.Set(float64(len(doc.Components.Schemas)))
	} else {
		m.schemas.Set(0)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request count and latency labelled with the path
// template of the matched route, e.g. "/items/{id}". Install it with
// Router.Use so the matched route is available.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.serve(next, w, r, m.routeLabel(mux.CurrentRoute(r)))
	})
}

// Unmatched wraps the router's not found or method not allowed handler so
// those responses are counted under UnmatchedRoute.
func (m *Metrics) Unmatched(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.serve(next, w, r, UnmatchedRoute)
	})
}

func (m *Metrics) serve(next http.Handler, w http.ResponseWriter, r *http.Request, path string) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	next.ServeHTTP(rec, r)

	m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
}

func (m *Metrics) routeLabel(route *mux.Route) string {
	if route == nil {
		return UnmatchedRoute
	}
	if cached, ok := m.templates.Load(route); ok {
		return cached.(string)
	}

	label := UnmatchedRoute
	if info, err := openapi.AnalyzeRoute(route); err == nil {
		label = info.Path
	}
	m.templates.Store(route, label)
	return label
}
