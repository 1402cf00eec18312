package hooks

import (
	"context"

	"github.com/rickchristie/reactqa"
)

// Registry stores hooks and dispatches events to the ones that implement the matching
// interface. Hooks are called in registration order.
//
// A nil *Registry is valid and dispatches nothing, so components can hold an optional
// registry without nil checks.
//
// Registry is NOT thread-safe. Register all hooks before starting execution.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook. The hook can implement any combination of hook interfaces.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hooks)
}

func (r *Registry) all() []any {
	if r == nil {
		return nil
	}
	return r.hooks
}

// FireBeforeExecution dispatches to BeforeExecutionHook implementations.
func (r *Registry) FireBeforeExecution(ctx context.Context, event reactqa.BeforeExecutionEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.BeforeExecutionHook); ok {
			hook.OnBeforeExecution(ctx, event)
		}
	}
}

// FireAfterExecution dispatches to AfterExecutionHook implementations.
func (r *Registry) FireAfterExecution(ctx context.Context, event reactqa.AfterExecutionEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.AfterExecutionHook); ok {
			hook.OnAfterExecution(ctx, event)
		}
	}
}

// FireBeforeIteration dispatches to BeforeIterationHook implementations.
func (r *Registry) FireBeforeIteration(ctx context.Context, event reactqa.BeforeIterationEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, event)
		}
	}
}

// FireAfterIteration dispatches to AfterIterationHook implementations.
func (r *Registry) FireAfterIteration(ctx context.Context, event reactqa.AfterIterationEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.AfterIterationHook); ok {
			hook.OnAfterIteration(ctx, event)
		}
	}
}

// FireBeforeModelCall dispatches to BeforeModelCallHook implementations.
func (r *Registry) FireBeforeModelCall(ctx context.Context, event reactqa.BeforeModelCallEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, event)
		}
	}
}

// FireAfterModelCall dispatches to AfterModelCallHook implementations.
func (r *Registry) FireAfterModelCall(ctx context.Context, event reactqa.AfterModelCallEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// FireBeforeToolCall dispatches to BeforeToolCallHook implementations.
// Hooks may modify event.Args; later hooks see the modified args.
func (r *Registry) FireBeforeToolCall(ctx context.Context, event *reactqa.BeforeToolCallEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, event)
		}
	}
}

// FireAfterToolCall dispatches to AfterToolCallHook implementations.
func (r *Registry) FireAfterToolCall(ctx context.Context, event reactqa.AfterToolCallEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, event)
		}
	}
}

// FireParseError dispatches to ParseErrorHook implementations.
func (r *Registry) FireParseError(ctx context.Context, event reactqa.ParseErrorEvent) {
	for _, h := range r.all() {
		if hook, ok := h.(reactqa.ParseErrorHook); ok {
			hook.OnParseError(ctx, event)
		}
	}
}
