package reactqa

import "time"

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// TerminationReason indicates why an episode ended.
type TerminationReason string

const (
	// TerminationSuccess means the model produced a final answer.
	TerminationSuccess TerminationReason = "success"

	// TerminationCapExceeded means the iteration cap was reached without a final answer.
	TerminationCapExceeded TerminationReason = "cap_exceeded"

	// TerminationProviderError means a model call failed and the episode was aborted.
	TerminationProviderError TerminationReason = "provider_error"

	// TerminationContextCanceled means the context was canceled or its deadline passed.
	TerminationContextCanceled TerminationReason = "context_canceled"

	// TerminationError means the loop returned an error that is not a provider failure,
	// for example a prompt template that failed to render.
	TerminationError TerminationReason = "error"
)

// -----------------------------------------------------------------------------
// Executor Events
// -----------------------------------------------------------------------------

// BeforeExecutionEvent is emitted once before the first iteration begins.
type BeforeExecutionEvent struct {
	EpisodeID string
	Question  string
}

func (BeforeExecutionEvent) hookEvent() {}

// AfterExecutionEvent is emitted once after execution terminates.
type AfterExecutionEvent struct {
	EpisodeID string

	// TerminationReason indicates why execution ended.
	TerminationReason TerminationReason

	// Iterations is the number of iterations that ran.
	Iterations int

	// Answer is the final answer (empty unless TerminationReason is success).
	Answer string

	// Error is the error if execution failed (nil on success).
	Error error

	Duration time.Duration
}

func (AfterExecutionEvent) hookEvent() {}

// BeforeIterationEvent is emitted before each AgentLoop.Next call.
type BeforeIterationEvent struct {
	EpisodeID string

	// Iteration is the current iteration number (1-indexed).
	Iteration int
}

func (BeforeIterationEvent) hookEvent() {}

// AfterIterationEvent is emitted after each AgentLoop.Next call.
type AfterIterationEvent struct {
	EpisodeID string

	// Iteration is the current iteration number (1-indexed).
	Iteration int

	// Result is the AgentLoopResult from this iteration. Nil when Error is set.
	Result *AgentLoopResult

	// Error is the error returned by AgentLoop.Next, if any.
	Error error

	// Duration is how long this iteration took.
	Duration time.Duration
}

func (AfterIterationEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Model Call Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before each model API call, after pacing.
type BeforeModelCallEvent struct {
	// Model is the model identifier.
	Model string

	// Prompt is the full prompt text sent to the model.
	Prompt string
}

func (BeforeModelCallEvent) hookEvent() {}

// AfterModelCallEvent is emitted after each model API call completes.
type AfterModelCallEvent struct {
	Model    string
	Prompt   string
	Response string
	Duration time.Duration

	// InputTokens and OutputTokens are zero when the provider reports no usage.
	InputTokens  int
	OutputTokens int

	// Error is set when the call failed. It is always a *ProviderError.
	Error error
}

func (AfterModelCallEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Tool Call Events
// -----------------------------------------------------------------------------

// BeforeToolCallEvent is emitted before a tool executes. Hooks may modify Args.
type BeforeToolCallEvent struct {
	ToolName string
	Args     map[string]any
}

func (*BeforeToolCallEvent) hookEvent() {}

// AfterToolCallEvent is emitted after a tool call resolves, including calls that failed
// lookup or validation.
type AfterToolCallEvent struct {
	ToolName string
	Args     map[string]any
	Output   string
	Duration time.Duration
	Error    error
}

func (AfterToolCallEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Parse Events
// -----------------------------------------------------------------------------

// ParseErrorSource names the component that failed to parse model output.
type ParseErrorSource string

const (
	ParseErrorSourceStep       ParseErrorSource = "step"
	ParseErrorSourceStructured ParseErrorSource = "structured"
	ParseErrorSourceFunction   ParseErrorSource = "function"
)

// ParseErrorEvent is emitted when model output could not be parsed.
type ParseErrorEvent struct {
	Source ParseErrorSource
	Raw    string
	Error  error
}

func (ParseErrorEvent) hookEvent() {}
