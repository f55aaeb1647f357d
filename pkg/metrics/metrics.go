// Package metrics holds the Prometheus collectors served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hookbuilder"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	LLMCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_total",
			Help:      "Total number of LLM calls",
		},
		[]string{"provider", "model", "status"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	// type is prompt or completion.
	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_used_total",
			Help:      "Total tokens used for LLM calls",
		},
		[]string{"provider", "model", "type"},
	)

	HookAnalysisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hook",
			Name:      "analysis_total",
			Help:      "Total number of hook analyses by outcome",
		},
		[]string{"status"},
	)

	HookCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hook",
			Name:      "cache_total",
			Help:      "Hook analysis cache lookups",
		},
		[]string{"result"},
	)

	// pass is progression or ending; action is what the pass did.
	ScriptAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "script",
			Name:      "adjustments_total",
			Help:      "Structural changes made by the script post-processor",
		},
		[]string{"pass", "action"},
	)

	ScriptLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "script",
			Name:      "lines",
			Help:      "Non-blank lines in processed scripts",
			Buckets:   []float64{5, 10, 20, 40, 80},
		},
	)

	StoreOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_total",
			Help:      "Total number of document store operations",
		},
		[]string{"driver", "op", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"driver", "op"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sign_in_total",
			Help:      "Sign-in attempts by outcome",
		},
		[]string{"provider", "result"},
	)
)

// Status labels an outcome as "success" or "error".
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveStore records one store operation.
func ObserveStore(driver, op string, start time.Time, err error) {
	StoreOperationTotal.WithLabelValues(driver, op, Status(err)).Inc()
	StoreOperationDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}

// ObserveLLM records one model call.
func ObserveLLM(provider, model string, start time.Time, err error) {
	LLMCallTotal.WithLabelValues(provider, model, Status(err)).Inc()
	LLMCallDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
}
