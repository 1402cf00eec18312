package react

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/structured"
)

// Stepper turns a rendered prompt into one parsed step.
//
// A returned error aborts the episode and is reserved for provider failures. Output that
// cannot be parsed is reported as a [reactqa.Malformed] step instead.
type Stepper interface {
	// Instructions returns the output format section of the prompt.
	Instructions(toolNames []string) string

	// Step requests one completion and parses it.
	Step(ctx context.Context, prompt string, tools []reactqa.ToolSpec) (reactqa.ParsedStep, error)
}

// TextCompleter issues free-text completions. *structured.Adapter implements it.
type TextCompleter interface {
	CompleteText(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error)
}

// FunctionSelector picks a function through a structured completion.
// *structured.Adapter implements it.
type FunctionSelector interface {
	TextCompleter
	SelectFunction(ctx context.Context, prompt string, specs []reactqa.ToolSpec) (*structured.FunctionCall, error)
}

// ----------------------------------------------------------------------------
// TextStepper
// ----------------------------------------------------------------------------

// TextStepper asks for a Thought/Action/Final Answer completion and parses it with
// [ParseStep]. The completion is stopped before the model writes its own observation.
type TextStepper struct {
	completer TextCompleter
}

// NewTextStepper creates a TextStepper.
func NewTextStepper(c TextCompleter) *TextStepper {
	return &TextStepper{completer: c}
}

// Instructions implements Stepper.
func (s *TextStepper) Instructions(toolNames []string) string {
	return fmt.Sprintf(TextInstructions, strings.Join(toolNames, ", "))
}

// Step implements Stepper.
func (s *TextStepper) Step(ctx context.Context, prompt string, _ []reactqa.ToolSpec) (reactqa.ParsedStep, error) {
	text, err := s.completer.CompleteText(ctx, prompt, llms.WithStopWords([]string{StopWord}))
	if err != nil {
		return nil, err
	}
	return ParseStep(text), nil
}

// ----------------------------------------------------------------------------
// FunctionStepper
// ----------------------------------------------------------------------------

// answerSuffix asks for a plain answer when the model declined every function without
// giving one.
const answerSuffix = "\n\nNo tool is needed. Answer the question directly.\n" + MarkerFinalAnswer

// FunctionStepper selects a tool through a JSON function call instead of the text grammar.
//
// A null function name finishes the episode. The answer is taken from the "answer"
// parameter, or requested with one follow-up text completion when the model left it out.
type FunctionStepper struct {
	selector FunctionSelector
}

// NewFunctionStepper creates a FunctionStepper.
func NewFunctionStepper(s FunctionSelector) *FunctionStepper {
	return &FunctionStepper{selector: s}
}

// Instructions implements Stepper.
func (s *FunctionStepper) Instructions(toolNames []string) string {
	return fmt.Sprintf(FunctionInstructions, strings.Join(toolNames, ", "))
}

// Step implements Stepper.
func (s *FunctionStepper) Step(ctx context.Context, prompt string, tools []reactqa.ToolSpec) (reactqa.ParsedStep, error) {
	call, err := s.selector.SelectFunction(ctx, prompt, tools)
	if err != nil {
		return nil, err
	}
	if call.Err != nil {
		return &reactqa.Malformed{Raw: call.Raw, Reason: call.Err.Error()}, nil
	}

	if call.None() {
		answer, _ := call.Parameters["answer"].(string)
		answer = strings.TrimSpace(answer)
		if answer == "" {
			text, err := s.selector.CompleteText(ctx, prompt+answerSuffix)
			if err != nil {
				return nil, err
			}
			answer = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), MarkerFinalAnswer))
		}
		if answer == "" {
			return &reactqa.Malformed{Raw: call.Raw, Reason: ReasonEmptyAnswer}, nil
		}
		return &reactqa.Finish{FinalAnswer: answer}, nil
	}

	input, err := json.Marshal(call.Parameters)
	if err != nil {
		input = []byte("{}")
	}
	return &reactqa.Act{
		ToolName:  call.Name,
		ToolInput: string(input),
		Args:      call.Parameters,
	}, nil
}

// Compile-time checks.
var (
	_ Stepper          = (*TextStepper)(nil)
	_ Stepper          = (*FunctionStepper)(nil)
	_ FunctionSelector = (*structured.Adapter)(nil)
)
