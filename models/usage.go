package models

import "github.com/tmc/langchaingo/llms"

// Usage is the token usage of one completion, normalized across providers.
type Usage struct {
	InputTokens       int
	OutputTokens      int
	TotalTokens       int
	CachedInputTokens int
	ReasoningTokens   int
}

// UsageOf reads the token counts langchaingo reports in the GenerationInfo of the first
// choice. Providers that report nothing yield a zero Usage.
func UsageOf(resp *llms.ContentResponse) Usage {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return Usage{}
	}
	info := resp.Choices[0].GenerationInfo
	if info == nil {
		return Usage{}
	}

	u := Usage{
		// OpenAI and Google report PromptTokens, Anthropic InputTokens, Bedrock input_tokens.
		InputTokens:       firstInt(info, "PromptTokens", "InputTokens", "input_tokens"),
		OutputTokens:      firstInt(info, "CompletionTokens", "OutputTokens", "output_tokens"),
		CachedInputTokens: firstInt(info, "PromptCachedTokens", "CacheReadInputTokens", "CachedTokens"),
		ReasoningTokens:   firstInt(info, "ReasoningTokens", "CompletionReasoningTokens", "ThinkingTokens"),
	}
	u.TotalTokens = firstInt(info, "TotalTokens", "total_tokens")
	if u.TotalTokens == 0 {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	return u
}

// firstInt returns the first positive count among keys.
func firstInt(info map[string]any, keys ...string) int {
	for _, key := range keys {
		if v := toInt(info[key]); v > 0 {
			return v
		}
	}
	return 0
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
