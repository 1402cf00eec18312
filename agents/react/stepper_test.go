package react_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/agents/react"
	"github.com/rickchristie/reactqa/internal/tt"
	"github.com/rickchristie/reactqa/toolchain"
)

func newFunctionAgent(model *tt.MockModel, tools ...reactqa.Tool) *react.Agent {
	registry := toolchain.New().MustRegister(tools...)
	return react.NewAgent(react.NewFunctionStepper(newAdapter(model)), registry).
		WithTimeProvider(reactqa.NewMockTimeProvider(fixedTime))
}

func TestFunctionStepper_Run(t *testing.T) {
	type input struct {
		responses []string
	}

	type expected struct {
		answer     string
		state      react.State
		iterations int
		toolCalls  []map[string]any
		modelCalls int
		lastPrompt []string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "null function with answer finishes",
			input: input{responses: []string{
				`{"function_name": null, "parameters": null, "answer": "Hello! How can I help?"}`,
			}},
			expected: expected{
				answer:     "Hello! How can I help?",
				state:      react.StateDone,
				iterations: 1,
				modelCalls: 1,
			},
		},
		{
			name: "answer inside parameters",
			input: input{responses: []string{
				"```json\n{\"function_name\": null, \"parameters\": {\"answer\": \"42\"}}\n```",
			}},
			expected: expected{
				answer:     "42",
				state:      react.StateDone,
				iterations: 1,
				modelCalls: 1,
			},
		},
		{
			name: "null function without answer asks for one",
			input: input{responses: []string{
				`{"function_name": null, "parameters": {}}`,
				"Final Answer: Paris",
			}},
			expected: expected{
				answer:     "Paris",
				state:      react.StateDone,
				iterations: 1,
				modelCalls: 2,
				lastPrompt: []string{"No tool is needed. Answer the question directly.\nFinal Answer:"},
			},
		},
		{
			name: "function call then answer",
			input: input{responses: []string{
				`{"function_name": "calculator", "parameters": {"expression": "2 ** 3"}}`,
				`{"function_name": null, "parameters": null, "answer": "8"}`,
			}},
			expected: expected{
				answer:     "8",
				state:      react.StateDone,
				iterations: 2,
				toolCalls:  []map[string]any{{"expression": "2 ** 3"}},
				modelCalls: 2,
				lastPrompt: []string{
					"Action: calculator\nAction Input: {\"expression\":\"2 ** 3\"}\nObservation: Result: 8",
					"Decide whether one of the tools [calculator] is needed",
				},
			},
		},
		{
			name: "unknown function is malformed and recoverable",
			input: input{responses: []string{
				`{"function_name": "python", "parameters": {"code": "1"}}`,
				`{"function_name": null, "answer": "1"}`,
			}},
			expected: expected{
				answer:     "1",
				state:      react.StateDone,
				iterations: 2,
				modelCalls: 2,
				lastPrompt: []string{"Note: Your previous response could not be parsed"},
			},
		},
		{
			name: "garbage is malformed and recoverable",
			input: input{responses: []string{
				"I think no tool is needed.",
				`{"function_name": null, "answer": "ok"}`,
			}},
			expected: expected{
				answer:     "ok",
				state:      react.StateDone,
				iterations: 2,
				modelCalls: 2,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel().AddResponses(tc.input.responses...)
			tool := calculatorTool("Result: 8")
			agent := newFunctionAgent(model, tool)

			result := agent.Run(context.Background(), "question", nil)

			require.NoError(t, result.Err)
			assert.Equal(t, tc.expected.answer, result.Answer)
			assert.Equal(t, tc.expected.state, result.State)
			assert.Equal(t, tc.expected.iterations, result.Iterations)
			assert.Equal(t, tc.expected.modelCalls, model.CallCount())
			if tc.expected.toolCalls == nil {
				assert.Empty(t, tool.Calls())
			} else {
				assert.Equal(t, tc.expected.toolCalls, tool.Calls())
			}
			for _, fragment := range tc.expected.lastPrompt {
				assert.Contains(t, model.LastPrompt(), fragment)
			}
		})
	}
}

func TestFunctionStepper_ProviderErrorOnFollowUp(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse(`{"function_name": null}`).
		AddError(tt.ErrProvider)
	agent := newFunctionAgent(model, calculatorTool("x"))

	result := agent.Run(context.Background(), "question", nil)

	assert.Equal(t, react.StateAborted, result.State)
	assert.ErrorIs(t, result.Err, tt.ErrProvider)
}

func TestTextStepper_Instructions(t *testing.T) {
	s := react.NewTextStepper(nil)

	out := s.Instructions([]string{"web_search", "calculator"})

	assert.Contains(t, out, "should be one of [web_search, calculator]")
	assert.Contains(t, out, "NEVER include both Action and Final Answer")
}
