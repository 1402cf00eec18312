package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/hooks"
)

// DefaultMaxIterations is the iteration cap used by DefaultConfig.
const DefaultMaxIterations = 3

// Config holds configuration options for the Executor.
type Config struct {
	// MaxIterations is the number of AgentLoop.Next calls allowed before the episode ends
	// with [reactqa.TerminationCapExceeded]. Zero or less means DefaultMaxIterations.
	MaxIterations int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{MaxIterations: DefaultMaxIterations}
}

// Result is the outcome of one Execute call.
type Result struct {
	EpisodeID string

	// Answer is the loop's result. Empty unless TerminationReason is success.
	Answer string

	TerminationReason reactqa.TerminationReason

	// Iterations is the number of AgentLoop.Next calls that ran.
	Iterations int

	// Error is nil on success. For cap_exceeded it wraps [reactqa.ErrCapExceeded].
	Error error

	Duration time.Duration
}

// Executor orchestrates the execution of an AgentLoop, managing the lifecycle and hooks.
//
// The Executor is responsible for:
//   - Running the AgentLoop repeatedly until it returns [reactqa.LATerminate]
//   - Enforcing the iteration cap
//   - Invoking lifecycle hooks at appropriate points
//   - Handling context cancellation and deadlines
type Executor[Data reactqa.LoopData] struct {
	loop   reactqa.AgentLoop[Data]
	config Config
	hooks  *hooks.Registry
}

// New creates a new Executor with the given AgentLoop and configuration.
func New[Data reactqa.LoopData](loop reactqa.AgentLoop[Data], config Config) *Executor[Data] {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	return &Executor[Data]{
		loop:   loop,
		config: config,
		hooks:  hooks.NewRegistry(),
	}
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this when you need to share a registry with the structured adapter and the tool
// registry. Returns the executor for chaining.
func (e *Executor[Data]) WithHooks(h *hooks.Registry) *Executor[Data] {
	e.hooks = h
	return e
}

// RegisterHook adds a hook to the executor's existing hook registry.
// Returns the executor for chaining.
func (e *Executor[Data]) RegisterHook(hook any) *Executor[Data] {
	if e.hooks == nil {
		e.hooks = hooks.NewRegistry()
	}
	e.hooks.Register(hook)
	return e
}

// MaxIterations returns the configured iteration cap.
func (e *Executor[Data]) MaxIterations() int {
	return e.config.MaxIterations
}

// Execute runs the AgentLoop until termination.
//
// The execution flow:
//  1. Fire BeforeExecution
//  2. Repeatedly call AgentLoop.Next until:
//     - It returns LATerminate
//     - The iteration cap is reached
//     - The context is canceled or its deadline passes
//     - Next returns an error
//  3. Fire AfterExecution
//
// The episode id of data is attached to the context handed to Next, so model and tool
// hooks can read it with [reactqa.EpisodeIDFromContext].
func (e *Executor[Data]) Execute(ctx context.Context, data Data) *Result {
	ctx = reactqa.ContextWithEpisodeID(ctx, data.GetEpisodeID())
	result := &Result{EpisodeID: data.GetEpisodeID()}
	start := time.Now()

	e.hooks.FireBeforeExecution(ctx, reactqa.BeforeExecutionEvent{
		EpisodeID: result.EpisodeID,
		Question:  data.GetQuestion(),
	})
	defer func() {
		result.Duration = time.Since(start)
		e.hooks.FireAfterExecution(ctx, reactqa.AfterExecutionEvent{
			EpisodeID:         result.EpisodeID,
			TerminationReason: result.TerminationReason,
			Iterations:        result.Iterations,
			Answer:            result.Answer,
			Error:             result.Error,
			Duration:          result.Duration,
		})
	}()

	for {
		if err := ctx.Err(); err != nil {
			result.TerminationReason = reactqa.TerminationContextCanceled
			result.Error = err
			return result
		}
		if result.Iterations >= e.config.MaxIterations {
			result.TerminationReason = reactqa.TerminationCapExceeded
			result.Error = fmt.Errorf("%w: %d iterations", reactqa.ErrCapExceeded, result.Iterations)
			return result
		}

		result.Iterations++
		iteration := result.Iterations
		e.hooks.FireBeforeIteration(ctx, reactqa.BeforeIterationEvent{
			EpisodeID: result.EpisodeID,
			Iteration: iteration,
		})

		iterStart := time.Now()
		loopResult, loopErr := e.loop.Next(ctx, data)
		e.hooks.FireAfterIteration(ctx, reactqa.AfterIterationEvent{
			EpisodeID: result.EpisodeID,
			Iteration: iteration,
			Result:    loopResult,
			Error:     loopErr,
			Duration:  time.Since(iterStart),
		})

		if loopErr != nil {
			result.Error = fmt.Errorf("AgentLoop.Next (iteration %d): %w", iteration, loopErr)
			result.TerminationReason = classify(ctx, loopErr)
			return result
		}
		if loopResult != nil && loopResult.Action == reactqa.LATerminate {
			result.TerminationReason = reactqa.TerminationSuccess
			result.Answer = loopResult.Result
			return result
		}
	}
}

// classify maps a loop error to a termination reason. A canceled context wins over the
// error that it caused inside the model call.
func classify(ctx context.Context, err error) reactqa.TerminationReason {
	if ctx.Err() != nil {
		return reactqa.TerminationContextCanceled
	}
	var pe *reactqa.ProviderError
	if errors.As(err, &pe) {
		return reactqa.TerminationProviderError
	}
	return reactqa.TerminationError
}
