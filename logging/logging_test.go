package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/reactqa"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	level := zerolog.GlobalLevel()
	logger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	})
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestInit(t *testing.T) {
	type input struct {
		config Config
	}

	type expected struct {
		level  zerolog.Level
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{name: "defaults", input: input{config: Config{}}, expected: expected{level: zerolog.InfoLevel}},
		{name: "debug json", input: input{config: Config{Level: "debug", Format: "json"}}, expected: expected{level: zerolog.DebugLevel}},
		{name: "upper case level", input: input{config: Config{Level: "WARN"}}, expected: expected{level: zerolog.WarnLevel}},
		{name: "unknown level", input: input{config: Config{Level: "loud"}}, expected: expected{hasErr: true}},
		{name: "unknown format", input: input{config: Config{Format: "xml"}}, expected: expected{hasErr: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			restoreGlobals(t)

			err := Init(tc.input.config, &bytes.Buffer{})

			if tc.expected.hasErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.level, zerolog.GlobalLevel())
		})
	}
}

func TestInit_JSONOutput(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Init(Config{Level: "info", Format: "json"}, &buf))
	log.Debug().Msg("hidden")
	log.Info().Str("k", "v").Msg("shown")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0]["message"])
	assert.Equal(t, "v", got[0]["k"])
}

func TestHook(t *testing.T) {
	restoreGlobals(t)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	h := NewHook(zerolog.New(&buf))
	ctx := reactqa.ContextWithEpisodeID(context.Background(), "ep-1")

	h.OnBeforeExecution(ctx, reactqa.BeforeExecutionEvent{EpisodeID: "ep-1", Question: "What is 2 + 2?"})
	h.OnBeforeToolCall(ctx, &reactqa.BeforeToolCallEvent{ToolName: "calculator", Args: map[string]any{"expression": "2 + 2"}})
	h.OnAfterToolCall(ctx, reactqa.AfterToolCallEvent{ToolName: "calculator", Error: errors.New("boom")})
	h.OnParseError(ctx, reactqa.ParseErrorEvent{Source: reactqa.ParseErrorSourceStep, Raw: "gibberish", Error: errors.New("no step")})
	h.OnAfterModelCall(ctx, reactqa.AfterModelCallEvent{Model: "mock", Error: &reactqa.ProviderError{Op: "completion", Err: errors.New("reset")}})
	h.OnAfterExecution(ctx, reactqa.AfterExecutionEvent{
		EpisodeID:         "ep-1",
		TerminationReason: reactqa.TerminationCapExceeded,
		Iterations:        3,
		Error:             reactqa.ErrCapExceeded,
		Duration:          time.Second,
	})

	got := lines(t, &buf)
	require.Len(t, got, 6)
	for _, line := range got {
		assert.Equal(t, "ep-1", line["episode_id"])
	}

	assert.Equal(t, "info", got[0]["level"])
	assert.Equal(t, "What is 2 + 2?", got[0]["question"])

	assert.Equal(t, "debug", got[1]["level"])
	assert.Equal(t, map[string]any{"expression": "2 + 2"}, got[1]["args"])

	assert.Equal(t, "warn", got[2]["level"])
	assert.Equal(t, "boom", got[2]["error"])

	assert.Equal(t, "step", got[3]["source"])
	assert.Equal(t, "error", got[4]["level"])

	assert.Equal(t, "warn", got[5]["level"])
	assert.Equal(t, "cap_exceeded", got[5]["reason"])
	assert.Equal(t, float64(3), got[5]["iterations"])
}

func TestHook_WithoutEpisode(t *testing.T) {
	restoreGlobals(t)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	h := NewHook(zerolog.New(&buf))

	h.OnBeforeModelCall(context.Background(), reactqa.BeforeModelCallEvent{Model: "mock", Prompt: "hello"})

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "episode_id")
	assert.Equal(t, float64(5), got[0]["prompt_len"])
}

func TestGlobalHook(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "info", Format: "json"}, &buf))

	NewGlobalHook().OnBeforeExecution(context.Background(), reactqa.BeforeExecutionEvent{Question: "q"})

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "episode: started", got[0]["message"])
}
