package reactqa

// ParsedStep is the outcome of parsing one model completion. It is one of [Act], [Finish]
// or [Malformed]; use a type switch to branch on it.
type ParsedStep interface {
	isParsedStep()
}

// Act asks the loop to call a tool.
type Act struct {
	Thought   string
	ToolName  string
	ToolInput string

	// Args holds structured arguments when the step came from function selection.
	// When nil, the registry derives arguments from ToolInput.
	Args map[string]any

	// DiscardedAnswer is set when the completion also carried a Final Answer. The action
	// wins and the answer text is dropped.
	DiscardedAnswer string
}

// Finish ends the episode with a final answer.
type Finish struct {
	Thought     string
	FinalAnswer string
}

// Malformed is a completion that matched neither the action nor the final answer form.
type Malformed struct {
	Raw    string
	Reason string
}

func (*Act) isParsedStep()       {}
func (*Finish) isParsedStep()    {}
func (*Malformed) isParsedStep() {}
