package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rickchristie/reactqa"
)

// Hook logs agent events. Episode boundaries log at info, iterations, model calls and
// tool calls at debug, and failures at warn or error. Every line carries the episode_id
// of the running episode when there is one.
type Hook struct {
	logger *zerolog.Logger
}

// NewHook creates a Hook writing to logger.
func NewHook(logger zerolog.Logger) *Hook {
	return &Hook{logger: &logger}
}

// NewGlobalHook creates a Hook writing to the global logger configured by Init.
func NewGlobalHook() *Hook {
	return &Hook{}
}

func (h *Hook) log(ctx context.Context) *zerolog.Logger {
	lg := log.Logger
	if h.logger != nil {
		lg = *h.logger
	}
	if id := reactqa.EpisodeIDFromContext(ctx); id != "" {
		lg = lg.With().Str("episode_id", id).Logger()
	}
	return &lg
}

func (h *Hook) OnBeforeExecution(ctx context.Context, e reactqa.BeforeExecutionEvent) {
	h.log(ctx).Info().
		Str("question", e.Question).
		Msg("episode: started")
}

func (h *Hook) OnAfterExecution(ctx context.Context, e reactqa.AfterExecutionEvent) {
	lg := h.log(ctx)
	var ev *zerolog.Event
	switch e.TerminationReason {
	case reactqa.TerminationSuccess:
		ev = lg.Info()
	case reactqa.TerminationCapExceeded, reactqa.TerminationContextCanceled:
		ev = lg.Warn().Err(e.Error)
	default:
		ev = lg.Error().Err(e.Error)
	}
	ev.Str("reason", string(e.TerminationReason)).
		Int("iterations", e.Iterations).
		Dur("duration", e.Duration).
		Msg("episode: finished")
}

func (h *Hook) OnBeforeIteration(ctx context.Context, e reactqa.BeforeIterationEvent) {
	h.log(ctx).Debug().
		Int("iteration", e.Iteration).
		Msg("iteration: started")
}

func (h *Hook) OnAfterIteration(ctx context.Context, e reactqa.AfterIterationEvent) {
	ev := h.log(ctx).Debug().
		Int("iteration", e.Iteration).
		Dur("duration", e.Duration)
	if e.Result != nil {
		ev = ev.Str("action", string(e.Result.Action))
	}
	if e.Error != nil {
		ev = ev.Err(e.Error)
	}
	ev.Msg("iteration: finished")
}

func (h *Hook) OnBeforeModelCall(ctx context.Context, e reactqa.BeforeModelCallEvent) {
	h.log(ctx).Debug().
		Str("model", e.Model).
		Int("prompt_len", len(e.Prompt)).
		Msg("model: calling")
}

func (h *Hook) OnAfterModelCall(ctx context.Context, e reactqa.AfterModelCallEvent) {
	lg := h.log(ctx)
	if e.Error != nil {
		lg.Error().Err(e.Error).
			Str("model", e.Model).
			Dur("duration", e.Duration).
			Msg("model: call failed")
		return
	}
	lg.Debug().
		Str("model", e.Model).
		Int("response_len", len(e.Response)).
		Int("input_tokens", e.InputTokens).
		Int("output_tokens", e.OutputTokens).
		Dur("duration", e.Duration).
		Msg("model: call completed")
}

func (h *Hook) OnBeforeToolCall(ctx context.Context, e *reactqa.BeforeToolCallEvent) {
	h.log(ctx).Debug().
		Str("tool", e.ToolName).
		Interface("args", e.Args).
		Msg("tool: calling")
}

func (h *Hook) OnAfterToolCall(ctx context.Context, e reactqa.AfterToolCallEvent) {
	lg := h.log(ctx)
	if e.Error != nil {
		lg.Warn().Err(e.Error).
			Str("tool", e.ToolName).
			Msg("tool: call failed")
		return
	}
	lg.Debug().
		Str("tool", e.ToolName).
		Int("output_len", len(e.Output)).
		Dur("duration", e.Duration).
		Msg("tool: call completed")
}

func (h *Hook) OnParseError(ctx context.Context, e reactqa.ParseErrorEvent) {
	h.log(ctx).Warn().Err(e.Error).
		Str("source", string(e.Source)).
		Str("raw", e.Raw).
		Msg("parse: model output rejected")
}

// Compile-time checks.
var (
	_ reactqa.BeforeExecutionHook = (*Hook)(nil)
	_ reactqa.AfterExecutionHook  = (*Hook)(nil)
	_ reactqa.BeforeIterationHook = (*Hook)(nil)
	_ reactqa.AfterIterationHook  = (*Hook)(nil)
	_ reactqa.BeforeModelCallHook = (*Hook)(nil)
	_ reactqa.AfterModelCallHook  = (*Hook)(nil)
	_ reactqa.BeforeToolCallHook  = (*Hook)(nil)
	_ reactqa.AfterToolCallHook   = (*Hook)(nil)
	_ reactqa.ParseErrorHook      = (*Hook)(nil)
)
