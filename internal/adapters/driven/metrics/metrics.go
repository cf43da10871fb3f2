// Package metrics provides a Prometheus-backed driven.ToolObserver.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.ToolObserver = (*Observer)(nil)

const namespace = "tabula"

// Observer records tool and query measurements in its own registry, so
// several instances (one per test, say) never collide.
type Observer struct {
	registry      *prometheus.Registry
	toolDuration  *prometheus.HistogramVec
	toolTotal     *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryTotal    *prometheus.CounterVec
}

// NewObserver creates an observer with a fresh registry.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Tool execution time in seconds.",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"tool"},
		),
		toolTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool calls by tool, category and outcome.",
			},
			[]string{"tool", "category", "outcome"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "End-to-end question answering time in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		queryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Answered questions by mode, stop reason and degradation.",
			},
			[]string{"mode", "stop_reason", "degraded"},
		),
	}
	o.registry.MustRegister(o.toolDuration, o.toolTotal, o.queryDuration, o.queryTotal)
	return o
}

// ObserveTool records one tool execution.
func (o *Observer) ObserveTool(tool domain.ToolName, outcome string, elapsed time.Duration) {
	o.toolDuration.WithLabelValues(string(tool)).Observe(elapsed.Seconds())
	o.toolTotal.WithLabelValues(string(tool), string(tool.Category()), outcome).Inc()
}

// ObserveQuery records one answered question.
func (o *Observer) ObserveQuery(mode, stopReason string, degraded bool, elapsed time.Duration) {
	o.queryDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	o.queryTotal.WithLabelValues(mode, stopReason, strconv.FormatBool(degraded)).Inc()
}

// Registry exposes the underlying registry for additional collectors.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
