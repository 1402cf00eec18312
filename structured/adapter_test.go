package structured

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/internal/jsonx"
	"github.com/rickchristie/reactqa/internal/tt"
	"github.com/rickchristie/reactqa/schema"
)

var answerSchema = schema.Object(map[string]*schema.Property{
	"answer":     schema.String("The answer"),
	"confidence": schema.Number("Confidence between 0 and 1").Min(0).Max(1),
}, "answer")

func newTestAdapter(model llms.Model, opts ...Option) (*Adapter, *reactqa.MockTimeProvider) {
	clock := reactqa.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]Option{WithPacer(NewPacer(time.Second, clock)), WithModelName("mock")}, opts...)
	return New(model, opts...), clock
}

func TestAdapter_CompleteText(t *testing.T) {
	model := tt.NewMockModel().AddResponse("Paris")
	a, _ := newTestAdapter(model)

	text, err := a.CompleteText(context.Background(), "Capital of France?", llms.WithStopWords([]string{"\nObservation:"}))

	require.NoError(t, err)
	assert.Equal(t, "Paris", text)
	assert.Equal(t, "Capital of France?", model.LastPrompt())
	assert.Equal(t, []string{"\nObservation:"}, model.CapturedOptions[0].StopWords)
}

func TestAdapter_CompleteText_ProviderError(t *testing.T) {
	type input struct {
		setup func(m *tt.MockModel)
	}

	type expected struct {
		wrapped error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "transport failure",
			input:    input{setup: func(m *tt.MockModel) { m.AddError(tt.ErrProvider) }},
			expected: expected{wrapped: tt.ErrProvider},
		},
		{
			name: "no choices",
			input: input{setup: func(m *tt.MockModel) {
				m.AddRawResponse(&llms.ContentResponse{})
			}},
			expected: expected{wrapped: reactqa.ErrEmptyResponse},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel()
			tc.input.setup(model)
			a, _ := newTestAdapter(model)

			_, err := a.CompleteText(context.Background(), "q")

			var perr *reactqa.ProviderError
			require.True(t, errors.As(err, &perr), "expected *ProviderError, got %T", err)
			assert.ErrorIs(t, err, tc.expected.wrapped)
		})
	}
}

func TestAdapter_CompleteText_CanceledWhilePacing(t *testing.T) {
	model := tt.NewMockModel()
	a := New(model, WithPacer(NewPacer(time.Hour, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.CompleteText(ctx, "q")

	var perr *reactqa.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, model.CallCount())
}

func TestAdapter_Pacing(t *testing.T) {
	const calls = 4
	model := tt.NewMockModel()
	a, clock := newTestAdapter(model)

	for range calls {
		_, err := a.CompleteText(context.Background(), "q")
		require.NoError(t, err)
	}

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, calls)
	for _, d := range sleeps {
		assert.Equal(t, time.Second, d)
	}
	assert.Equal(t, calls, a.Pacer().Waits())
}

func TestAdapter_Pacing_WallClock(t *testing.T) {
	const (
		calls = 3
		delay = 15 * time.Millisecond
	)
	a := New(tt.NewMockModel(), WithPacer(NewPacer(delay, nil)))

	start := time.Now()
	for range calls {
		_, err := a.CompleteText(context.Background(), "q")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), calls*delay)
}

func TestAdapter_Pacing_StructuredCallsArePaced(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse(`{"answer": "a"}`).
		AddResponse(`{"function_name": null}`)
	a, clock := newTestAdapter(model)

	_, err := a.CompleteStructured(context.Background(), "q", answerSchema)
	require.NoError(t, err)
	_, err = a.SelectFunction(context.Background(), "q", nil)
	require.NoError(t, err)

	assert.Len(t, clock.Sleeps(), 2)
}

func TestAdapter_CompleteStructured(t *testing.T) {
	type input struct {
		response string
	}

	type expected struct {
		value any
		stage jsonx.Stage
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "bare JSON",
			input:    input{response: `{"answer": "Paris", "confidence": 0.9}`},
			expected: expected{value: map[string]any{"answer": "Paris", "confidence": 0.9}, stage: jsonx.StageDirect},
		},
		{
			name:     "fenced JSON",
			input:    input{response: "```json\n{\"answer\": \"Paris\", \"confidence\": 0.9}\n```"},
			expected: expected{value: map[string]any{"answer": "Paris", "confidence": 0.9}, stage: jsonx.StageFenced},
		},
		{
			name:     "JSON inside prose",
			input:    input{response: `Here you go: {"answer": "Paris"} Let me know!`},
			expected: expected{value: map[string]any{"answer": "Paris"}, stage: jsonx.StageBraces},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel().AddResponse(tc.input.response)
			a, _ := newTestAdapter(model)

			res, err := a.CompleteStructured(context.Background(), "Capital of France?", answerSchema)

			require.NoError(t, err)
			require.True(t, res.OK(), "unexpected parse error: %v", res.Err)
			assert.Equal(t, tc.expected.value, res.Value)
			assert.Equal(t, tc.expected.stage, res.Stage)
			assert.Equal(t, tc.input.response, res.Raw)
			assert.Contains(t, model.LastPrompt(), "Respond ONLY with valid JSON matching this schema")
			assert.Contains(t, model.LastPrompt(), `"confidence"`)
		})
	}
}

func TestAdapter_CompleteStructured_FencedMatchesUnwrapped(t *testing.T) {
	body := `{"answer": "42", "confidence": 1}`
	model := tt.NewMockModel().AddResponse(body).AddResponse("```json\n" + body + "\n```")
	a, _ := newTestAdapter(model)

	plain, err := a.CompleteStructured(context.Background(), "q", answerSchema)
	require.NoError(t, err)
	fenced, err := a.CompleteStructured(context.Background(), "q", answerSchema)
	require.NoError(t, err)

	assert.Equal(t, plain.Value, fenced.Value)
}

func TestAdapter_CompleteStructured_ParseFailures(t *testing.T) {
	type input struct {
		response string
	}

	type expected struct {
		noJSON bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "garbage text",
			input:    input{response: "I am not sure what you mean."},
			expected: expected{noJSON: true},
		},
		{
			name:     "JSON violating the schema",
			input:    input{response: `{"confidence": 3}`},
			expected: expected{noJSON: false},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := tt.NewRecordingHook()
			model := tt.NewMockModel().AddResponse(tc.input.response)
			a, _ := newTestAdapter(model, WithHooks(hooks.NewRegistry().Register(recorder)))

			res, err := a.CompleteStructured(context.Background(), "q", answerSchema)

			require.NoError(t, err, "parse failures must not be returned as errors")
			require.NotNil(t, res.Err)
			assert.False(t, res.OK())
			assert.Nil(t, res.Value)
			assert.Equal(t, tc.input.response, res.Raw)
			assert.Equal(t, tc.input.response, res.Err.Raw)
			assert.Equal(t, tc.expected.noJSON, errors.Is(res.Err, reactqa.ErrNoJSON))

			parseErrors := tt.Of[reactqa.ParseErrorEvent](recorder)
			require.Len(t, parseErrors, 1)
			assert.Equal(t, reactqa.ParseErrorSourceStructured, parseErrors[0].Source)
		})
	}
}

func TestAdapter_CompleteStructured_ProviderErrorIsNotParseError(t *testing.T) {
	model := tt.NewMockModel().AddError(tt.ErrProvider)
	a, _ := newTestAdapter(model)

	res, err := a.CompleteStructured(context.Background(), "q", answerSchema)

	assert.Nil(t, res)
	var perr *reactqa.ProviderError
	assert.True(t, errors.As(err, &perr))
	var parseErr *reactqa.ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestAdapter_CompleteStructured_InvalidSchema(t *testing.T) {
	model := tt.NewMockModel()
	a, _ := newTestAdapter(model)

	_, err := a.CompleteStructured(context.Background(), "q", map[string]any{"type": 12})

	assert.Error(t, err)
	assert.Equal(t, 0, model.CallCount())
}

func TestResult_Decode(t *testing.T) {
	res := &Result{Value: map[string]any{"answer": "Paris", "confidence": 0.5}}
	var out struct {
		Answer     string  `json:"answer"`
		Confidence float64 `json:"confidence"`
	}

	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "Paris", out.Answer)
	assert.Equal(t, 0.5, out.Confidence)

	failed := &Result{Err: &reactqa.ParseError{Err: reactqa.ErrNoJSON}}
	assert.ErrorIs(t, failed.Decode(&out), reactqa.ErrNoJSON)
}

func TestAdapter_ModelCallHooks(t *testing.T) {
	recorder := tt.NewRecordingHook()
	model := tt.NewMockModel().AddResponse("ok").AddError(tt.ErrProvider)
	a, _ := newTestAdapter(model, WithHooks(hooks.NewRegistry().Register(recorder)))

	_, _ = a.CompleteText(context.Background(), "first")
	_, _ = a.CompleteText(context.Background(), "second")

	tt.AssertEventNames(t, []string{
		"before_model_call", "after_model_call",
		"before_model_call", "after_model_call",
	}, recorder)
	after := tt.Of[reactqa.AfterModelCallEvent](recorder)
	assert.Equal(t, "mock", after[0].Model)
	assert.Equal(t, "ok", after[0].Response)
	assert.NoError(t, after[0].Error)
	assert.ErrorIs(t, after[1].Error, tt.ErrProvider)
}

func TestAdapter_ModelCallHooks_TokenUsage(t *testing.T) {
	recorder := tt.NewRecordingHook()
	model := tt.NewMockModel().AddRawResponse(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:        "ok",
			GenerationInfo: map[string]any{"input_tokens": int32(42), "output_tokens": int32(3)},
		}},
	})
	a, _ := newTestAdapter(model, WithHooks(hooks.NewRegistry().Register(recorder)))

	text, err := a.CompleteText(context.Background(), "count me")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	after := tt.Of[reactqa.AfterModelCallEvent](recorder)
	require.Len(t, after, 1)
	assert.Equal(t, 42, after[0].InputTokens)
	assert.Equal(t, 3, after[0].OutputTokens)
}
