package executor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/executor"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/internal/tt"
)

// -----------------------------------------------------------------------------
// Mock Infrastructure
// -----------------------------------------------------------------------------

// mockLoopData implements reactqa.LoopData for testing.
type mockLoopData struct {
	scratchpad []*reactqa.ScratchpadEntry
}

func (d *mockLoopData) GetEpisodeID() string { return "episode-1" }
func (d *mockLoopData) GetQuestion() string { return "what is 2 + 2?" }
func (d *mockLoopData) GetHistory() []reactqa.Turn { return nil }
func (d *mockLoopData) GetScratchpad() []*reactqa.ScratchpadEntry { return d.scratchpad }
func (d *mockLoopData) AddScratchpadEntry(e *reactqa.ScratchpadEntry) {
	d.scratchpad = append(d.scratchpad, e)
}

// mockAgentLoop terminates after terminateAt calls (0 = never) unless nextFn is set.
type mockAgentLoop struct {
	mu          sync.Mutex
	calls       int
	terminateAt int
	nextFn      func(ctx context.Context, call int) (*reactqa.AgentLoopResult, error)
	episodeIDs  []string
}

func (m *mockAgentLoop) Next(ctx context.Context, data *mockLoopData) (*reactqa.AgentLoopResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.episodeIDs = append(m.episodeIDs, reactqa.EpisodeIDFromContext(ctx))
	m.mu.Unlock()

	data.AddScratchpadEntry(&reactqa.ScratchpadEntry{Thought: "step"})

	if m.nextFn != nil {
		return m.nextFn(ctx, call)
	}
	if m.terminateAt > 0 && call >= m.terminateAt {
		return &reactqa.AgentLoopResult{Action: reactqa.LATerminate, Result: "4"}, nil
	}
	return &reactqa.AgentLoopResult{Action: reactqa.LAContinue}, nil
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestExecutor_Termination(t *testing.T) {
	type input struct {
		maxIterations int
		terminateAt   int
		nextFn        func(ctx context.Context, call int) (*reactqa.AgentLoopResult, error)
	}

	type expected struct {
		reason     reactqa.TerminationReason
		answer     string
		iterations int
		errIs      error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:  "terminates on first iteration",
			input: input{maxIterations: 3, terminateAt: 1},
			expected: expected{
				reason:     reactqa.TerminationSuccess,
				answer:     "4",
				iterations: 1,
			},
		},
		{
			name:  "terminates on the last allowed iteration",
			input: input{maxIterations: 3, terminateAt: 3},
			expected: expected{
				reason:     reactqa.TerminationSuccess,
				answer:     "4",
				iterations: 3,
			},
		},
		{
			name:  "cap exceeded",
			input: input{maxIterations: 2},
			expected: expected{
				reason:     reactqa.TerminationCapExceeded,
				iterations: 2,
				errIs:      reactqa.ErrCapExceeded,
			},
		},
		{
			name:  "zero cap falls back to default",
			input: input{maxIterations: 0},
			expected: expected{
				reason:     reactqa.TerminationCapExceeded,
				iterations: executor.DefaultMaxIterations,
				errIs:      reactqa.ErrCapExceeded,
			},
		},
		{
			name: "provider error aborts",
			input: input{
				maxIterations: 3,
				nextFn: func(_ context.Context, call int) (*reactqa.AgentLoopResult, error) {
					if call == 2 {
						return nil, &reactqa.ProviderError{Op: "completion", Err: tt.ErrProvider}
					}
					return &reactqa.AgentLoopResult{Action: reactqa.LAContinue}, nil
				},
			},
			expected: expected{
				reason:     reactqa.TerminationProviderError,
				iterations: 2,
				errIs:      tt.ErrProvider,
			},
		},
		{
			name: "other errors",
			input: input{
				maxIterations: 3,
				nextFn: func(context.Context, int) (*reactqa.AgentLoopResult, error) {
					return nil, errors.New("template: missing key")
				},
			},
			expected: expected{
				reason:     reactqa.TerminationError,
				iterations: 1,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loop := &mockAgentLoop{terminateAt: tc.input.terminateAt, nextFn: tc.input.nextFn}
			data := &mockLoopData{}
			exec := executor.New[*mockLoopData](loop, executor.Config{MaxIterations: tc.input.maxIterations})

			result := exec.Execute(context.Background(), data)

			assert.Equal(t, tc.expected.reason, result.TerminationReason)
			assert.Equal(t, tc.expected.answer, result.Answer)
			assert.Equal(t, tc.expected.iterations, result.Iterations)
			assert.Equal(t, "episode-1", result.EpisodeID)
			assert.Len(t, data.scratchpad, tc.expected.iterations)
			if tc.expected.reason == reactqa.TerminationSuccess {
				assert.NoError(t, result.Error)
			} else {
				require.Error(t, result.Error)
			}
			if tc.expected.errIs != nil {
				assert.ErrorIs(t, result.Error, tc.expected.errIs)
			}
		})
	}
}

func TestExecutor_Hooks(t *testing.T) {
	rec := tt.NewRecordingHook()
	loop := &mockAgentLoop{terminateAt: 2}
	exec := executor.New[*mockLoopData](loop, executor.DefaultConfig()).
		WithHooks(hooks.NewRegistry().Register(rec))

	exec.Execute(context.Background(), &mockLoopData{})

	tt.AssertEventNames(t, []string{
		"before_execution",
		"before_iteration",
		"after_iteration",
		"before_iteration",
		"after_iteration",
		"after_execution",
	}, rec)

	after := tt.Of[reactqa.AfterExecutionEvent](rec)
	require.Len(t, after, 1)
	assert.Equal(t, reactqa.TerminationSuccess, after[0].TerminationReason)
	assert.Equal(t, 2, after[0].Iterations)
	assert.Equal(t, "4", after[0].Answer)
	assert.Equal(t, "episode-1", after[0].EpisodeID)

	iters := tt.Of[reactqa.AfterIterationEvent](rec)
	require.Len(t, iters, 2)
	assert.Equal(t, reactqa.LAContinue, iters[0].Result.Action)
	assert.Equal(t, reactqa.LATerminate, iters[1].Result.Action)

	before := tt.Of[reactqa.BeforeExecutionEvent](rec)
	require.Len(t, before, 1)
	assert.Equal(t, "what is 2 + 2?", before[0].Question)
}

func TestExecutor_AfterExecutionOnError(t *testing.T) {
	rec := tt.NewRecordingHook()
	loop := &mockAgentLoop{nextFn: func(context.Context, int) (*reactqa.AgentLoopResult, error) {
		return nil, &reactqa.ProviderError{Op: "completion", Err: tt.ErrProvider}
	}}
	exec := executor.New[*mockLoopData](loop, executor.DefaultConfig()).RegisterHook(rec)

	exec.Execute(context.Background(), &mockLoopData{})

	iters := tt.Of[reactqa.AfterIterationEvent](rec)
	require.Len(t, iters, 1)
	assert.Nil(t, iters[0].Result)
	assert.ErrorIs(t, iters[0].Error, tt.ErrProvider)

	after := tt.Of[reactqa.AfterExecutionEvent](rec)
	require.Len(t, after, 1)
	assert.Equal(t, reactqa.TerminationProviderError, after[0].TerminationReason)
}

func TestExecutor_EpisodeIDInContext(t *testing.T) {
	loop := &mockAgentLoop{terminateAt: 2}
	exec := executor.New[*mockLoopData](loop, executor.DefaultConfig())

	exec.Execute(context.Background(), &mockLoopData{})

	assert.Equal(t, []string{"episode-1", "episode-1"}, loop.episodeIDs)
}

func TestExecutor_ContextCanceled(t *testing.T) {
	t.Run("before first iteration", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		loop := &mockAgentLoop{terminateAt: 1}

		result := executor.New[*mockLoopData](loop, executor.DefaultConfig()).Execute(ctx, &mockLoopData{})

		assert.Equal(t, reactqa.TerminationContextCanceled, result.TerminationReason)
		assert.Equal(t, 0, result.Iterations)
		assert.ErrorIs(t, result.Error, context.Canceled)
	})

	t.Run("deadline during model call", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		loop := &mockAgentLoop{nextFn: func(ctx context.Context, _ int) (*reactqa.AgentLoopResult, error) {
			<-ctx.Done()
			return nil, &reactqa.ProviderError{Op: "completion", Err: ctx.Err()}
		}}

		result := executor.New[*mockLoopData](loop, executor.DefaultConfig()).Execute(ctx, &mockLoopData{})

		assert.Equal(t, reactqa.TerminationContextCanceled, result.TerminationReason)
		assert.Equal(t, 1, result.Iterations)
		assert.ErrorIs(t, result.Error, context.DeadlineExceeded)
	})

	t.Run("canceled between iterations", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		loop := &mockAgentLoop{nextFn: func(context.Context, int) (*reactqa.AgentLoopResult, error) {
			cancel()
			return &reactqa.AgentLoopResult{Action: reactqa.LAContinue}, nil
		}}

		result := executor.New[*mockLoopData](loop, executor.DefaultConfig()).Execute(ctx, &mockLoopData{})

		assert.Equal(t, reactqa.TerminationContextCanceled, result.TerminationReason)
		assert.Equal(t, 1, result.Iterations)
	})
}
