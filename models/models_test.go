package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestParseProvider(t *testing.T) {
	type input struct {
		name string
	}

	type expected struct {
		provider Provider
		hasErr   bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{name: "gemini", input: input{name: "gemini"}, expected: expected{provider: ProviderGemini}},
		{name: "case and space insensitive", input: input{name: " OpenAI "}, expected: expected{provider: ProviderOpenAI}},
		{name: "github", input: input{name: "github"}, expected: expected{provider: ProviderGitHub}},
		{name: "unknown", input: input{name: "cohere"}, expected: expected{hasErr: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProvider(tt.input.name)

			if tt.expected.hasErr {
				assert.ErrorIs(t, err, ErrUnknownProvider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.provider, p)
		})
	}
}

func TestProvider_DefaultModel(t *testing.T) {
	assert.Equal(t, DefaultGeminiModel, ProviderGemini.DefaultModel())
	assert.Equal(t, DefaultOpenAIModel, ProviderOpenAI.DefaultModel())
	assert.Equal(t, DefaultGitHubModel, ProviderGitHub.DefaultModel())
}

func TestNew_MissingToken(t *testing.T) {
	for _, p := range Providers {
		t.Run(string(p), func(t *testing.T) {
			_, err := New(context.Background(), Spec{Provider: p})
			assert.ErrorIs(t, err, ErrMissingToken)
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Spec{Provider: "cohere", APIKey: "k"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewGitHubModel_MissingToken(t *testing.T) {
	_, err := NewGitHubModel(GitHubGPT4oMini, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_OpenAICompatibleEndpoint(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "pong"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	model, err := New(context.Background(), Spec{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)

	text, err := llms.GenerateFromSinglePrompt(context.Background(), model, "ping")
	require.NoError(t, err)

	assert.Equal(t, "pong", text)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, DefaultOpenAIModel, gotModel)
}

func TestGitHubModelGenerate(t *testing.T) {
	token := os.Getenv("REACTQA_TEST_GITHUB_TOKEN")
	if token == "" {
		t.Skip("REACTQA_TEST_GITHUB_TOKEN not set")
	}

	model, err := NewGitHubModel(GitHubGPT4oMini, token)
	require.NoError(t, err, "failed to create GitHub model")

	text, err := llms.GenerateFromSinglePrompt(
		context.Background(), model, "Reply with exactly: Hello from GitHub Models",
	)
	require.NoError(t, err, "GenerateContent failed")
	assert.NotEmpty(t, text)
}
