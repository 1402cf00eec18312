package reactqa

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks allow observing execution at various points. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the executor, the structured adapter and the tool registry
//
// Example:
//
//	type TimingHook struct{}
//
//	func (h *TimingHook) OnAfterModelCall(ctx context.Context, e reactqa.AfterModelCallEvent) {
//	    log.Printf("model %s answered in %v", e.Model, e.Duration)
//	}
//
// Hooks are called in registration order. For paired hooks (Before/After), the After hook
// is always called if the Before hook was called, even on error.
//
// Hooks do not return errors. The episode id of the running episode is available through
// [EpisodeIDFromContext].
// -----------------------------------------------------------------------------

// BeforeExecutionHook is notified once before the first iteration.
type BeforeExecutionHook interface {
	OnBeforeExecution(ctx context.Context, event BeforeExecutionEvent)
}

// AfterExecutionHook is notified once after the loop terminates, successfully or not.
type AfterExecutionHook interface {
	OnAfterExecution(ctx context.Context, event AfterExecutionEvent)
}

// BeforeIterationHook is notified before each AgentLoop.Next call.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, event BeforeIterationEvent)
}

// AfterIterationHook is notified after each AgentLoop.Next call.
type AfterIterationHook interface {
	OnAfterIteration(ctx context.Context, event AfterIterationEvent)
}

// BeforeModelCallHook is notified before each model call.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

// AfterModelCallHook is notified after each model call.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// BeforeToolCallHook is notified before each tool execution.
// The hook can modify event.Args to change the input.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, event *BeforeToolCallEvent)
}

// AfterToolCallHook is notified after each tool execution.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}

// ParseErrorHook is notified when model output fails to parse.
type ParseErrorHook interface {
	OnParseError(ctx context.Context, event ParseErrorEvent)
}
