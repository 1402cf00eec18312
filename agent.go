package reactqa

import (
	"context"
)

// AgentLoop is responsible for:
//  1. Constructing the prompt to be sent to the LLM model.
//  2. Calling the LLM model with the constructed prompt.
//  3. Parsing LLM output and processing it (tool calls, termination, corrective notes).
//  4. Deciding whether to continue the loop or terminate with a result.
//
// The executor calls [AgentLoop.Next] repeatedly until it returns [LATerminate], an error,
// or the iteration cap is reached.
type AgentLoop[Data LoopData] interface {
	// Next performs one iteration of the agent loop.
	//
	// A returned error aborts the episode. Implementations return errors only for failures
	// that retrying cannot fix, such as a [ProviderError]. Recoverable problems (malformed
	// output, tool failures) are fed back to the model through the scratchpad instead.
	Next(ctx context.Context, data Data) (*AgentLoopResult, error)
}

// LoopData is the per-episode state passed through each AgentLoop iteration.
//
// The interface methods allow hooks and the executor to inspect an episode without knowing
// the concrete AgentLoop implementation.
type LoopData interface {
	// GetEpisodeID returns the unique identifier of this episode.
	GetEpisodeID() string

	// GetQuestion returns the question that started the episode.
	GetQuestion() string

	// GetHistory returns the conversation history injected into every prompt.
	GetHistory() []Turn

	// GetScratchpad returns the entries recorded so far, oldest first.
	GetScratchpad() []*ScratchpadEntry

	// AddScratchpadEntry appends an entry. Entries are never removed during an episode.
	AddScratchpadEntry(entry *ScratchpadEntry)
}

type LoopAction string

const (
	LAContinue  LoopAction = "c"
	LATerminate LoopAction = "t"
)

type AgentLoopResult struct {
	// Action indicates whether to continue or terminate the loop.
	Action LoopAction

	// Result is only set when Action is [LATerminate].
	Result string
}
