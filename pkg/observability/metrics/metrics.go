// Package metrics records observability hook events in Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stateflow/pkg/observability"
)

// Registry holds the application metrics and implements every
// observability hook interface.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  prometheus.Histogram
	LayoutActors    prometheus.Histogram
	LayoutSteps     prometheus.Histogram
	RendersTotal    *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	CacheOperations *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stateflow_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stateflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "stateflow_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		}),

		LayoutsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stateflow_layouts_total",
			Help: "Layouts computed, by outcome",
		}, []string{"status"}),
		LayoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stateflow_layout_duration_seconds",
			Help:    "Layout computation latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		LayoutActors: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stateflow_layout_actors",
			Help:    "Actors per laid out diagram",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		}),
		LayoutSteps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stateflow_layout_steps",
			Help:    "Steps per laid out diagram",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stateflow_renders_total",
			Help: "Render requests, by format and outcome",
		}, []string{"format", "status"}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stateflow_render_duration_seconds",
			Help:    "Render latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CacheOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stateflow_cache_operations_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stateflow_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Install registers r as the process-wide pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (r *Registry) OnLayoutStart(_ context.Context, _ string, actors, steps int) {
	r.LayoutActors.Observe(float64(actors))
	r.LayoutSteps.Observe(float64(steps))
}

func (r *Registry) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	r.LayoutsTotal.WithLabelValues(status(err)).Inc()
	r.LayoutDuration.Observe(d.Seconds())
}

func (r *Registry) OnRenderStart(context.Context, []string) {}

func (r *Registry) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		r.RendersTotal.WithLabelValues(f, status(err)).Inc()
	}
	r.RenderDuration.Observe(d.Seconds())
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOperations.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOperations.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOperations.WithLabelValues(keyType, "set").Inc()
	r.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
