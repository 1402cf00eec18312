package models

// Default model identifiers per provider.
const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGitHubModel = "openai/gpt-4o-mini"
)

// Gemini models available through the Google AI API.
const (
	Gemini15Flash = "gemini-1.5-flash"
	Gemini15Pro   = "gemini-1.5-pro"
	Gemini20Flash = "gemini-2.0-flash"
	Gemini25Flash = "gemini-2.5-flash"
	Gemini25Pro   = "gemini-2.5-pro"
)

// OpenAI models.
const (
	OpenAIGPT41     = "gpt-4.1"
	OpenAIGPT41Mini = "gpt-4.1-mini"
	OpenAIGPT4o     = "gpt-4o"
	OpenAIGPT4oMini = "gpt-4o-mini"
)

// GitHub Models identifiers use the "publisher/model" format. Query
// https://models.github.ai/catalog/models for the full catalog.
const (
	GitHubGPT41     = "openai/gpt-4.1"
	GitHubGPT4oMini = "openai/gpt-4o-mini"
	GitHubLlama33   = "meta-llama/llama-3.3-70b-instruct"
)
