// Package models constructs langchaingo models for the supported providers.
//
// Every constructor returns an llms.Model. The structured adapter only needs
// GenerateContent, so any other langchaingo backend works as well.
package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names a model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderGitHub Provider = "github"
)

// Providers lists the supported providers.
var Providers = []Provider{ProviderGemini, ProviderOpenAI, ProviderGitHub}

var (
	// ErrMissingToken is returned when a provider is constructed without a credential.
	ErrMissingToken = errors.New("missing provider credential")

	// ErrUnknownProvider is returned for a provider name outside [Providers].
	ErrUnknownProvider = errors.New("unknown provider")
)

// ParseProvider converts a case-insensitive name into a Provider.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGitHub:
		return DefaultGitHubModel
	default:
		return DefaultGeminiModel
	}
}

// Spec selects and configures a model.
type Spec struct {
	Provider Provider
	APIKey   string
	Model    string

	// BaseURL overrides the provider endpoint. Only the OpenAI-compatible providers use it.
	BaseURL string
}

// New builds the model described by spec.
func New(ctx context.Context, spec Spec) (llms.Model, error) {
	if spec.APIKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingToken, spec.Provider)
	}
	model := spec.Model
	if model == "" {
		model = spec.Provider.DefaultModel()
	}

	switch spec.Provider {
	case ProviderGemini:
		return NewGeminiModel(ctx, model, spec.APIKey)
	case ProviderOpenAI:
		return NewOpenAIModel(model, spec.APIKey, spec.BaseURL)
	case ProviderGitHub:
		var opts []openai.Option
		if spec.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(spec.BaseURL))
		}
		return NewGitHubModel(model, spec.APIKey, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, spec.Provider)
	}
}

// NewGeminiModel creates a model backed by the Google AI Gemini API.
func NewGeminiModel(ctx context.Context, model, apiKey string) (*googleai.GoogleAI, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return llm, nil
}

// NewOpenAIModel creates a model backed by the OpenAI API, or by any OpenAI-compatible
// endpoint when baseURL is set.
func NewOpenAIModel(model, apiKey, baseURL string) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return llm, nil
}
