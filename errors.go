package reactqa

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when a tool name is not in the registry.
	ErrUnknownTool = errors.New("tool not found")

	// ErrInvalidToolInput is returned when tool input cannot be mapped onto the tool's
	// parameter schema or fails validation.
	ErrInvalidToolInput = errors.New("invalid tool input")

	// ErrCapExceeded is recorded when an episode runs out of iterations.
	ErrCapExceeded = errors.New("iteration cap exceeded")

	// ErrNoJSON is returned when no JSON value can be recovered from a completion.
	ErrNoJSON = errors.New("no JSON found in response")

	// ErrEmptyResponse is returned when the provider answered without any choices.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ProviderError is a transport, auth or quota failure talking to the model provider.
// It aborts the episode.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError is a successful completion whose text could not be parsed into the expected
// shape. It is recoverable: the loop re-prompts with corrective feedback.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ToolError is a failure inside a single tool call. The loop turns it into an observation.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
