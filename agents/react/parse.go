package react

import (
	"strings"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/internal/jsonx"
	"github.com/rickchristie/reactqa/toolchain"
)

// Markers of the text step grammar.
const (
	MarkerThought     = "Thought:"
	MarkerAction      = "Action:"
	MarkerActionInput = "Action Input:"
	MarkerObservation = "Observation:"
	MarkerFinalAnswer = "Final Answer:"
)

// StopWord ends a text completion before the model invents its own observation.
const StopWord = "\n" + MarkerObservation

// Reasons reported on [reactqa.Malformed].
const (
	ReasonNoStep        = "response has neither an Action nor a Final Answer"
	ReasonMissingTool   = "Action has no tool name"
	ReasonMissingInput  = "Action has no Action Input"
	ReasonEmptyAnswer   = "Final Answer is empty"
	ReasonEmptyResponse = "response is empty"
)

type marker int

const (
	markerNone marker = iota
	markerThought
	markerAction
	markerActionInput
	markerObservation
	markerFinalAnswer
)

// markers is ordered so that "Action Input:" is tried before "Action:".
var markers = []struct {
	prefix string
	kind   marker
}{
	{MarkerActionInput, markerActionInput},
	{MarkerAction, markerAction},
	{MarkerThought, markerThought},
	{MarkerObservation, markerObservation},
	{MarkerFinalAnswer, markerFinalAnswer},
}

type section struct {
	kind  marker
	start int // line index of the marker line
	lines []string
}

func (s *section) text() string {
	return strings.TrimSpace(strings.Join(s.lines, "\n"))
}

// ParseStep parses one text completion into an Act, a Finish or a Malformed step.
//
// Grammar:
//
//	[Thought:] <reasoning>
//	Action: <tool name>
//	Action Input: <input>
//
// or
//
//	[Thought:] <reasoning>
//	Final Answer: <answer>
//
// The leading "Thought:" is optional because the prompt already ends with it. Action
// Input runs until the next Observation, Thought, Action or Final Answer line, and one
// pair of surrounding quotes or a code fence is stripped from it.
//
// When a complete Action (name and input) is present anywhere in the completion, the
// Action wins regardless of order, and the Final Answer, cut at the next marker line, is
// reported in [reactqa.Act.DiscardedAnswer]. Otherwise a Final Answer runs to the end
// of the completion.
func ParseStep(text string) reactqa.ParsedStep {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return &reactqa.Malformed{Raw: text, Reason: ReasonEmptyResponse}
	}

	lines := strings.Split(text, "\n")
	sections := split(lines)

	var (
		thought      string
		action       *section
		input        *section
		final        *section
		finalThought string
		lastThink    string
	)
	for i := range sections {
		s := &sections[i]
		switch s.kind {
		case markerNone, markerThought:
			if t := s.text(); t != "" && action == nil {
				lastThink = t
			}
		case markerAction:
			if action == nil {
				action = s
				thought = lastThink
			}
		case markerActionInput:
			if action != nil && input == nil {
				input = s
			}
		case markerFinalAnswer:
			if final == nil {
				final = s
				finalThought = lastThink
			}
		}
	}

	var name string
	if action != nil {
		name = toolchain.CleanInput(firstLine(action.text()))
	}
	if action != nil && name != "" && input != nil {
		act := &reactqa.Act{
			Thought:   thought,
			ToolName:  name,
			ToolInput: cleanActionInput(input.text()),
		}
		if final != nil {
			act.DiscardedAnswer = final.text()
		}
		return act
	}

	if final != nil {
		tail := append([]string{final.lines[0]}, lines[final.start+1:]...)
		answer := strings.TrimSpace(strings.Join(tail, "\n"))
		if answer == "" {
			return &reactqa.Malformed{Raw: text, Reason: ReasonEmptyAnswer}
		}
		return &reactqa.Finish{Thought: finalThought, FinalAnswer: answer}
	}

	switch {
	case action != nil && name == "":
		return &reactqa.Malformed{Raw: text, Reason: ReasonMissingTool}
	case action != nil:
		return &reactqa.Malformed{Raw: text, Reason: ReasonMissingInput}
	}
	return &reactqa.Malformed{Raw: text, Reason: ReasonNoStep}
}

// split cuts lines into marker sections. Lines without a marker continue the current
// section.
func split(lines []string) []section {
	var sections []section
	current := section{kind: markerNone}
	for i, line := range lines {
		kind, rest := classify(line)
		if kind == markerNone {
			current.lines = append(current.lines, line)
			continue
		}
		sections = append(sections, current)
		current = section{kind: kind, start: i, lines: []string{rest}}
	}
	return append(sections, current)
}

func classify(line string) (marker, string) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, m := range markers {
		if strings.HasPrefix(trimmed, m.prefix) {
			return m.kind, strings.TrimSpace(trimmed[len(m.prefix):])
		}
	}
	return markerNone, line
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func cleanActionInput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if inner, ok := jsonx.StripFences(s); ok {
			s = inner
		}
	}
	return toolchain.CleanInput(s)
}
