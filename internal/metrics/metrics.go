// Package metrics exports Prometheus metrics for the serve command.
//
// The collectors are registered with the default registry at init. [Register]
// installs hook implementations into pkg/observability so stores, the render
// runner and the artifact cache report into these collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/observability"
)

// Stack metrics
var (
	// ActionsTotal counts dispatched actions by action and whether they changed the stack.
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_actions_total",
			Help: "Dispatched stack actions by action and result (applied/noop)",
		},
		[]string{"action", "result"},
	)

	// StackLayers observes the stack length after every dispatch.
	StackLayers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stackbuilder_stack_layers",
			Help:    "Stack length after each dispatched action",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	// HistoryTotal counts undo, redo and reset by result.
	HistoryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_history_total",
			Help: "History operations by operation and result (ok/empty)",
		},
		[]string{"op", "result"},
	)
)

// Render metrics
var (
	// RendersTotal counts render runs by visualization type and outcome.
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_renders_total",
			Help: "Render runs by visualization type and error code",
		},
		[]string{"viz_type", "code"},
	)

	// RenderDuration tracks render latency in seconds.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackbuilder_render_duration_seconds",
			Help:    "Render duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"viz_type"},
	)

	// RendersInFlight tracks renders currently running.
	RendersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stackbuilder_renders_in_flight",
			Help: "Renders currently running",
		},
	)
)

// Cache metrics
var (
	// CacheOpsTotal counts cache lookups and writes.
	CacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_cache_operations_total",
			Help: "Cache operations by key type and result (hit/miss/set)",
		},
		[]string{"key_type", "result"},
	)

	// CacheBytesWritten counts bytes stored in the cache.
	CacheBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackbuilder_cache_written_bytes_total",
			Help: "Bytes written to the artifact cache",
		},
	)
)

// Session metrics
var (
	// SessionsActive tracks live sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stackbuilder_sessions_active",
			Help: "Number of live sessions",
		},
	)

	// SessionsCreated counts sessions created.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackbuilder_sessions_created_total",
			Help: "Total sessions created",
		},
	)

	// SessionsExpired counts sessions removed by the cleanup loop.
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackbuilder_sessions_expired_total",
			Help: "Total sessions removed after their idle timeout",
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts requests by route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	// HTTPErrorsTotal counts error responses by error code.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackbuilder_http_errors_total",
			Help: "HTTP error responses by error code",
		},
		[]string{"code"},
	)
)

// =============================================================================
// Hook implementations
// =============================================================================

// StackHooks reports store events.
type StackHooks struct{}

// RenderHooks reports render runs.
type RenderHooks struct{}

// CacheHooks reports cache traffic.
type CacheHooks struct{}

var (
	_ observability.StackHooks  = StackHooks{}
	_ observability.RenderHooks = RenderHooks{}
	_ observability.CacheHooks  = CacheHooks{}
)

func (StackHooks) OnDispatch(action string, before, after int) {
	result := "applied"
	if before == after {
		result = "noop"
	}
	ActionsTotal.WithLabelValues(action, result).Inc()
	StackLayers.Observe(float64(after))
}

func (StackHooks) OnHistory(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "empty"
	}
	HistoryTotal.WithLabelValues(op, result).Inc()
}

func (RenderHooks) OnRenderStart(_ context.Context, _ string, _ []string, _ int) {
	RendersInFlight.Inc()
}

func (RenderHooks) OnRenderComplete(_ context.Context, vizType string, _ []string, d time.Duration, err error) {
	RendersInFlight.Dec()
	code := "ok"
	if err != nil {
		code = string(errors.GetCodeOr(err, errors.ErrCodeInternal))
	}
	RendersTotal.WithLabelValues(vizType, code).Inc()
	RenderDuration.WithLabelValues(vizType).Observe(d.Seconds())
}

func (CacheHooks) OnCacheHit(_ context.Context, keyType string) {
	CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (CacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (CacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	CacheBytesWritten.Add(float64(size))
}

// Register installs the Prometheus hooks into pkg/observability.
func Register() {
	observability.SetStackHooks(StackHooks{})
	observability.SetRenderHooks(RenderHooks{})
	observability.SetCacheHooks(CacheHooks{})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
