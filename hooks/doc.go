// Package hooks provides a registry that dispatches lifecycle events to hooks.
//
// Each hook interface in the reactqa package corresponds to one event type. A hook
// implements only the interfaces it needs and receives only those events.
//
// Executor lifecycle hooks:
//   - [reactqa.BeforeExecutionHook] - once before the first iteration
//   - [reactqa.AfterExecutionHook] - once after the episode ends
//   - [reactqa.BeforeIterationHook] - before each iteration
//   - [reactqa.AfterIterationHook] - after each iteration
//
// Model call hooks (fired by the structured adapter):
//   - [reactqa.BeforeModelCallHook]
//   - [reactqa.AfterModelCallHook]
//   - [reactqa.ParseErrorHook]
//
// Tool call hooks (fired by the tool registry):
//   - [reactqa.BeforeToolCallHook] - can modify args
//   - [reactqa.AfterToolCallHook]
//
// One registry is usually shared by the executor, the adapter and the tool registry:
//
//	registry := hooks.NewRegistry().
//	    Register(logging.NewHook(log.Logger)).
//	    Register(metrics.NewHook(prometheus.DefaultRegisterer))
//
//	adapter := structured.New(model, structured.WithHooks(registry))
//	tools := toolchain.New().WithHooks(registry)
package hooks
