// Package metrics exports agent activity as Prometheus metrics through a hook.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rickchristie/reactqa"
)

const namespace = "reactqa"

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeUnknownTool  = "unknown_tool"
	OutcomeInvalidInput = "invalid_input"
)

// Hook records episodes, iterations, model calls, tool calls and parse errors.
type Hook struct {
	episodes      *prometheus.CounterVec
	iterations    prometheus.Counter
	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	modelTokens   *prometheus.CounterVec
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	parseErrors   *prometheus.CounterVec
}

// NewHook creates the metrics and registers them on reg. A nil reg leaves the metrics
// unregistered.
func NewHook(reg prometheus.Registerer) *Hook {
	factory := promauto.With(reg)
	return &Hook{
		// episodes counts finished episodes.
		// Labels: reason (success, cap_exceeded, provider_error, context_canceled, error)
		episodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "episodes_total",
			Help:      "Finished episodes by termination reason",
		}, []string{"reason"}),

		iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "iterations_total",
			Help:      "Loop iterations across all episodes",
		}),

		// modelCalls counts completions.
		// Labels: model, outcome (success, error)
		modelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "calls_total",
			Help:      "Model calls by outcome",
		}, []string{"model", "outcome"}),

		modelDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "call_duration_seconds",
			Help:      "Model call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"model"}),

		// modelTokens counts reported token usage.
		// Labels: model, kind (input, output)
		modelTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider, by kind",
		}, []string{"model", "kind"}),

		// toolCalls counts tool invocations.
		// Labels: tool, outcome (success, error, unknown_tool, invalid_input)
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),

		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "call_duration_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),

		parseErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "parse_errors_total",
			Help:      "Model outputs that could not be parsed, by source",
		}, []string{"source"}),
	}
}

func (h *Hook) OnAfterExecution(_ context.Context, e reactqa.AfterExecutionEvent) {
	h.episodes.WithLabelValues(string(e.TerminationReason)).Inc()
}

func (h *Hook) OnAfterIteration(context.Context, reactqa.AfterIterationEvent) {
	h.iterations.Inc()
}

func (h *Hook) OnAfterModelCall(_ context.Context, e reactqa.AfterModelCallEvent) {
	outcome := OutcomeSuccess
	if e.Error != nil {
		outcome = OutcomeError
	}
	h.modelCalls.WithLabelValues(e.Model, outcome).Inc()
	h.modelDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
	if e.InputTokens > 0 {
		h.modelTokens.WithLabelValues(e.Model, "input").Add(float64(e.InputTokens))
	}
	if e.OutputTokens > 0 {
		h.modelTokens.WithLabelValues(e.Model, "output").Add(float64(e.OutputTokens))
	}
}

func (h *Hook) OnAfterToolCall(_ context.Context, e reactqa.AfterToolCallEvent) {
	h.toolCalls.WithLabelValues(e.ToolName, toolOutcome(e.Error)).Inc()
	if e.Duration > 0 {
		h.toolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
	}
}

func (h *Hook) OnParseError(_ context.Context, e reactqa.ParseErrorEvent) {
	h.parseErrors.WithLabelValues(string(e.Source)).Inc()
}

func toolOutcome(err error) string {
	var toolErr *reactqa.ToolError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &toolErr):
		return OutcomeError
	case errors.Is(err, reactqa.ErrUnknownTool):
		return OutcomeUnknownTool
	case errors.Is(err, reactqa.ErrInvalidToolInput):
		return OutcomeInvalidInput
	default:
		return OutcomeError
	}
}

// Compile-time checks.
var (
	_ reactqa.AfterExecutionHook = (*Hook)(nil)
	_ reactqa.AfterIterationHook = (*Hook)(nil)
	_ reactqa.AfterModelCallHook = (*Hook)(nil)
	_ reactqa.AfterToolCallHook  = (*Hook)(nil)
	_ reactqa.ParseErrorHook     = (*Hook)(nil)
)
