package react

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/rickchristie/reactqa"
)

//go:embed prompt.tmpl
var promptTemplateContent string

// DefaultPromptTemplate renders the prompt of every iteration.
//
// The template file is located at agents/react/prompt.tmpl. Replace it with
// Agent.WithPromptTemplate or Agent.WithPromptTemplateString.
var DefaultPromptTemplate = template.Must(
	template.New("react_prompt").Parse(promptTemplateContent),
)

// PromptData contains the data passed to the prompt template.
type PromptData struct {
	// History is the rendered conversation history, one "Role: text" line per turn.
	// Empty when there is no history.
	History string

	// Tools is the tool catalog from the registry.
	Tools string

	// ToolNames is the comma separated list of tool names.
	ToolNames string

	// Instructions describes the output format expected by the Stepper.
	Instructions string

	Question string

	// Scratchpad is the rendered scratchpad, ending with a newline when not empty.
	Scratchpad string

	// Entries are the raw scratchpad entries for custom templates.
	Entries []*reactqa.ScratchpadEntry

	// Time provides access to time-related functions in templates.
	// Use {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "2006-01-02"}}, etc.
	Time reactqa.TimeProvider
}

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TextInstructions is the output format section for text steps. %s is replaced with the
// tool names.
const TextInstructions = `Use the following format EXACTLY:

Thought: Do I need to use a tool? What tool should I use? Consider our conversation history.
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: Do I need to use a tool? No
Final Answer: [your response here]

OR if no tools are needed:

Thought: Do I need to use a tool? No
Final Answer: [your response here]

IMPORTANT:
- Only provide ONE action per response
- NEVER include both Action and Final Answer in the same response
- After each Action, wait for the Observation before continuing
- Only use Final Answer when you have all the information needed`

// FunctionInstructions is the output format section for function selection steps.
const FunctionInstructions = `Decide whether one of the tools [%s] is needed to answer the question.
Call at most ONE tool per response and wait for its Observation.
When you have all the information needed, do not call a tool and give the answer instead.`

// RenderScratchpad renders entries in the Thought/Action/Action Input/Observation form.
// Notes follow the observation they belong to.
func RenderScratchpad(entries []*reactqa.ScratchpadEntry) string {
	var sb strings.Builder
	writeLine := func(marker, value string) {
		sb.WriteString(strings.TrimRight(marker+" "+value, " "))
		sb.WriteByte('\n')
	}
	for _, e := range entries {
		writeLine(MarkerThought, e.Thought)
		if e.HasAction() {
			writeLine(MarkerAction, e.ActionName)
			writeLine(MarkerActionInput, e.ActionInput)
			writeLine(MarkerObservation, e.Observation)
		}
		if e.Note != "" {
			writeLine("Note:", e.Note)
		}
	}
	return sb.String()
}
