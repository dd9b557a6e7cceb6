package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors.
type PrometheusHooks struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	nodes         prometheus.Histogram
	settlePhases  *prometheus.CounterVec
	dropped       prometheus.Counter
	superseded    prometheus.Counter
	gestures      *prometheus.CounterVec
	zoom          prometheus.Gauge
	cacheOps      *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// A nil reg skips registration, which is useful in tests.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mindcanvas_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage", "detail"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcanvas_stage_errors_total",
			Help: "Pipeline stages that returned an error",
		}, []string{"stage"}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindcanvas_layout_nodes",
			Help:    "Number of nodes per layout",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		settlePhases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcanvas_settle_phase_total",
			Help: "Settling phase transitions",
		}, []string{"phase"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindcanvas_connections_dropped_total",
			Help: "Connectors omitted because geometry was unavailable",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindcanvas_resize_superseded_total",
			Help: "Pending resizes replaced by a newer resize",
		}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcanvas_gesture_transitions_total",
			Help: "Viewport gesture state transitions",
		}, []string{"from", "to"}),
		zoom: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mindcanvas_viewport_zoom",
			Help: "Most recent viewport zoom factor",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcanvas_cache_operations_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindcanvas_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcanvas_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "mindcanvas_http_request_duration_seconds",
			Help: "HTTP request latency",
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(h.Collectors()...)
	}
	return h
}

// Collectors returns every collector owned by h.
func (h *PrometheusHooks) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.stageDuration, h.stageErrors, h.nodes,
		h.settlePhases, h.dropped, h.superseded,
		h.gestures, h.zoom,
		h.cacheOps, h.cacheBytes,
		h.httpRequests, h.httpDuration,
	}
}

// Register installs h as every global hook.
func (h *PrometheusHooks) Register() {
	SetPipelineHooks(h)
	SetSettleHooks(h)
	SetGestureHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *PrometheusHooks) stage(stage, detail string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(stage, detail).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *PrometheusHooks) OnLoadStart(context.Context, string) {}
func (h *PrometheusHooks) OnLoadComplete(_ context.Context, source string, _ int, d time.Duration, err error) {
	h.stage("load", source, d, err)
}
func (h *PrometheusHooks) OnLayoutStart(_ context.Context, _ string, nodeCount int) {
	h.nodes.Observe(float64(nodeCount))
}
func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, mode string, d time.Duration, err error) {
	h.stage("layout", mode, d, err)
}
func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}
func (h *PrometheusHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	detail := ""
	if len(formats) == 1 {
		detail = formats[0]
	}
	h.stage("render", detail, d, err)
}

func (h *PrometheusHooks) OnPhase(_ context.Context, _ uint64, phase string) {
	h.settlePhases.WithLabelValues(phase).Inc()
}
func (h *PrometheusHooks) OnDropped(_ context.Context, count int) { h.dropped.Add(float64(count)) }
func (h *PrometheusHooks) OnResizeSuperseded(context.Context)     { h.superseded.Inc() }

func (h *PrometheusHooks) OnTransition(_ context.Context, from, to string) {
	h.gestures.WithLabelValues(from, to).Inc()
}
func (h *PrometheusHooks) OnZoom(_ context.Context, zoom float64) { h.zoom.Set(zoom) }

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}
func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}
func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}
func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
func (h *PrometheusHooks) OnError(_ context.Context, method, route string, _ error) {
	h.httpRequests.WithLabelValues(method, route, "error").Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ SettleHooks   = (*PrometheusHooks)(nil)
	_ GestureHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
