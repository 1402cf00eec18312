package react

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/executor"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/toolchain"
)

// DefaultMaxIterations is the iteration cap of a new Agent.
const DefaultMaxIterations = executor.DefaultMaxIterations

// Answers used when an episode ends without a final answer.
const (
	FallbackAnswer = "I was unable to determine an answer within the allowed number of steps."
	AbortedAnswer  = "I'm sorry, I couldn't reach the language model to answer your question. Please try again later."
)

// Notes injected into the scratchpad for the next prompt.
const (
	DiscardedAnswerNote = "Your previous response contained both an Action and a Final Answer. " +
		"The Action was executed and the Final Answer was discarded. " +
		"Provide only ONE of them per response."
	malformedNoteFormat = "Your previous response could not be parsed (%s). " +
		"Respond with exactly one of: a Thought followed by an Action and an Action Input, " +
		"or a Thought followed by a Final Answer."
)

// State is the state of an episode.
type State string

const (
	StateThinking State = "thinking"
	StateActing   State = "acting"
	StateDone     State = "done"
	StateFailed   State = "failed"

	// StateAborted means a provider error ended the episode.
	StateAborted State = "aborted"
)

// ----------------------------------------------------------------------------
// LoopData
// ----------------------------------------------------------------------------

// LoopData implements reactqa.LoopData for the ReAct agent loop.
type LoopData struct {
	episodeID  string
	question   string
	history    []reactqa.Turn
	scratchpad []*reactqa.ScratchpadEntry
	state      State
}

// NewLoopData creates the data of a new episode with a fresh episode id.
func NewLoopData(question string, history []reactqa.Turn) *LoopData {
	return &LoopData{
		episodeID:  uuid.NewString(),
		question:   question,
		history:    history,
		scratchpad: make([]*reactqa.ScratchpadEntry, 0),
		state:      StateThinking,
	}
}

// GetEpisodeID returns the unique identifier of this episode.
func (d *LoopData) GetEpisodeID() string {
	return d.episodeID
}

// GetQuestion returns the question that started the episode.
func (d *LoopData) GetQuestion() string {
	return d.question
}

// GetHistory returns the conversation history injected into every prompt.
func (d *LoopData) GetHistory() []reactqa.Turn {
	return d.history
}

// GetScratchpad returns the entries recorded so far, oldest first.
func (d *LoopData) GetScratchpad() []*reactqa.ScratchpadEntry {
	return d.scratchpad
}

// AddScratchpadEntry appends an entry.
func (d *LoopData) AddScratchpadEntry(entry *reactqa.ScratchpadEntry) {
	d.scratchpad = append(d.scratchpad, entry)
}

// State returns the current state of the episode.
func (d *LoopData) State() State {
	return d.state
}

// lastThought returns the most recent non-empty thought.
func (d *LoopData) lastThought() string {
	for i := len(d.scratchpad) - 1; i >= 0; i-- {
		if t := strings.TrimSpace(d.scratchpad[i].Thought); t != "" {
			return t
		}
	}
	return ""
}

// Compile-time check that LoopData implements reactqa.LoopData.
var _ reactqa.LoopData = (*LoopData)(nil)

// ----------------------------------------------------------------------------
// Agent - ReAct AgentLoop Implementation
// ----------------------------------------------------------------------------

// Result is the outcome of [Agent.Run].
type Result struct {
	EpisodeID string

	// Answer is always set: the final answer, a best-effort answer, or an apology.
	Answer string

	State State

	TerminationReason reactqa.TerminationReason

	Iterations int
	Scratchpad []*reactqa.ScratchpadEntry

	// Err is nil when State is StateDone.
	Err error
}

// Agent implements the ReAct (Reasoning and Acting) agent loop.
// Flow: Think -> Act -> Observe -> Repeat until a final answer or the iteration cap.
//
// Every iteration renders the whole prompt (history, tool catalog, question and
// scratchpad) and asks the Stepper for exactly one step.
type Agent struct {
	stepper       Stepper
	tools         *toolchain.Registry
	template      *template.Template
	timeProvider  reactqa.TimeProvider
	hooks         *hooks.Registry
	maxIterations int
	timeout       time.Duration
}

// NewAgent creates a new Agent.
// Defaults:
//   - MaxIterations: DefaultMaxIterations
//   - Template: DefaultPromptTemplate
//   - TimeProvider: reactqa.NewDefaultTimeProvider()
//   - Timeout: none
func NewAgent(stepper Stepper, tools *toolchain.Registry) *Agent {
	if tools == nil {
		tools = toolchain.New()
	}
	return &Agent{
		stepper:       stepper,
		tools:         tools,
		template:      DefaultPromptTemplate,
		timeProvider:  reactqa.NewDefaultTimeProvider(),
		maxIterations: DefaultMaxIterations,
	}
}

// WithMaxIterations sets the iteration cap. Values below 1 are ignored.
func (r *Agent) WithMaxIterations(n int) *Agent {
	if n > 0 {
		r.maxIterations = n
	}
	return r
}

// WithTimeout bounds the wall-clock time of Run. Zero disables the bound.
func (r *Agent) WithTimeout(d time.Duration) *Agent {
	r.timeout = d
	return r
}

// WithHooks sets the hook registry used for executor and parse events.
func (r *Agent) WithHooks(h *hooks.Registry) *Agent {
	r.hooks = h
	return r
}

// WithTimeProvider sets the time provider.
// Use this to inject a mock time provider for testing.
func (r *Agent) WithTimeProvider(tp reactqa.TimeProvider) *Agent {
	r.timeProvider = tp
	return r
}

// WithPromptTemplate sets a custom prompt template. See PromptData for its fields.
func (r *Agent) WithPromptTemplate(tmpl *template.Template) *Agent {
	r.template = tmpl
	return r
}

// WithPromptTemplateString parses and sets a custom prompt template.
// Returns error if the template string is invalid.
func (r *Agent) WithPromptTemplateString(tmplStr string) (*Agent, error) {
	tmpl, err := template.New("react_prompt").Parse(tmplStr)
	if err != nil {
		return r, fmt.Errorf("failed to parse template: %w", err)
	}
	r.template = tmpl
	return r, nil
}

// MaxIterations returns the iteration cap.
func (r *Agent) MaxIterations() int {
	return r.maxIterations
}

// Tools returns the tool registry.
func (r *Agent) Tools() *toolchain.Registry {
	return r.tools
}

// Run answers question in one episode. It never fails: every outcome resolves to a
// Result with a non-empty Answer.
//
//   - Final answer: StateDone with the answer verbatim.
//   - Iteration cap or timeout: StateFailed with the last thought, or FallbackAnswer.
//   - Provider failure: StateAborted with AbortedAnswer and the error in Err.
func (r *Agent) Run(ctx context.Context, question string, history []reactqa.Turn) *Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data := NewLoopData(question, history)
	exec := executor.New[*LoopData](r, executor.Config{MaxIterations: r.maxIterations}).
		WithHooks(r.hooks)
	res := exec.Execute(ctx, data)

	out := &Result{
		EpisodeID:         res.EpisodeID,
		TerminationReason: res.TerminationReason,
		Iterations:        res.Iterations,
		Scratchpad:        data.GetScratchpad(),
		Err:               res.Error,
	}
	switch res.TerminationReason {
	case reactqa.TerminationSuccess:
		out.State = StateDone
		out.Answer = res.Answer
	case reactqa.TerminationProviderError, reactqa.TerminationError:
		out.State = StateAborted
		out.Answer = AbortedAnswer
	default:
		out.State = StateFailed
		out.Answer = data.lastThought()
		if out.Answer == "" {
			out.Answer = FallbackAnswer
		}
	}
	data.state = out.State
	return out
}

// Next executes one iteration of the ReAct loop.
//
// The order of operations is:
//  1. Render the prompt and ask the Stepper for one step
//  2. Finish: record the final thought and terminate
//  3. Act: call the tool, record the observation and continue
//  4. Malformed: record a corrective note and continue
//
// Each branch appends exactly one scratchpad entry. The observation is recorded only
// after the tool call returns.
func (r *Agent) Next(ctx context.Context, data *LoopData) (*reactqa.AgentLoopResult, error) {
	data.state = StateThinking

	prompt, err := r.renderPrompt(data)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	step, err := r.stepper.Step(ctx, prompt, r.tools.ListSpecs())
	if err != nil {
		return nil, err
	}

	switch s := step.(type) {
	case *reactqa.Finish:
		data.AddScratchpadEntry(&reactqa.ScratchpadEntry{Thought: s.Thought})
		data.state = StateDone
		return &reactqa.AgentLoopResult{Action: reactqa.LATerminate, Result: s.FinalAnswer}, nil

	case *reactqa.Act:
		data.state = StateActing
		entry := &reactqa.ScratchpadEntry{
			Thought:     s.Thought,
			ActionName:  s.ToolName,
			ActionInput: s.ToolInput,
		}
		if s.DiscardedAnswer != "" {
			entry.Note = DiscardedAnswerNote
		}
		entry.Observation = r.observe(ctx, s)
		data.AddScratchpadEntry(entry)
		return &reactqa.AgentLoopResult{Action: reactqa.LAContinue}, nil

	case *reactqa.Malformed:
		r.hooks.FireParseError(ctx, reactqa.ParseErrorEvent{
			Source: reactqa.ParseErrorSourceStep,
			Raw:    s.Raw,
			Error:  &reactqa.ParseError{Raw: s.Raw, Err: errors.New(s.Reason)},
		})
		data.AddScratchpadEntry(&reactqa.ScratchpadEntry{
			Thought: malformedThought(s.Raw),
			Note:    fmt.Sprintf(malformedNoteFormat, s.Reason),
		})
		return &reactqa.AgentLoopResult{Action: reactqa.LAContinue}, nil

	default:
		return nil, fmt.Errorf("unexpected step type %T", step)
	}
}

func (r *Agent) renderPrompt(data *LoopData) (string, error) {
	names := r.tools.Names()
	scratchpad := data.GetScratchpad()
	return ExecuteTemplate(r.template, PromptData{
		History:      reactqa.RenderHistory(data.GetHistory()),
		Tools:        r.tools.CatalogPrompt(),
		ToolNames:    strings.Join(names, ", "),
		Instructions: r.stepper.Instructions(names),
		Question:     data.GetQuestion(),
		Scratchpad:   RenderScratchpad(scratchpad),
		Entries:      scratchpad,
		Time:         r.timeProvider,
	})
}

// observe invokes the tool and converts every failure into observation text.
func (r *Agent) observe(ctx context.Context, act *reactqa.Act) string {
	output, err := r.tools.Invoke(ctx, reactqa.ToolCall{
		Name:  act.ToolName,
		Input: act.ToolInput,
		Args:  act.Args,
	})
	if err == nil {
		return output
	}

	var toolErr *reactqa.ToolError
	switch {
	case errors.As(err, &toolErr):
		return "Error: " + toolErr.Err.Error()
	case errors.Is(err, reactqa.ErrUnknownTool):
		return fmt.Sprintf("Error: tool %q not found. Available tools: %s",
			act.ToolName, strings.Join(r.tools.Names(), ", "))
	case errors.Is(err, reactqa.ErrInvalidToolInput):
		return fmt.Sprintf("Error: invalid input for tool %q: %v", act.ToolName, err)
	default:
		return "Error: " + err.Error()
	}
}

// malformedThought keeps what the model wrote so the best-effort answer can use it.
func malformedThought(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, MarkerThought)
	return strings.TrimSpace(s)
}

// Compile-time check that Agent implements reactqa.AgentLoop.
var _ reactqa.AgentLoop[*LoopData] = (*Agent)(nil)
