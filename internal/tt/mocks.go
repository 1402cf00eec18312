// Package tt holds test doubles shared by the package tests.
package tt

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/reactqa"
)

// -----------------------------------------------------------------------------
// MockModel - implements llms.Model
// -----------------------------------------------------------------------------

// MockModel is a configurable llms.Model that answers from a queue.
//
// Each call consumes one queued entry. An entry is either a completion text or an error.
// When the queue is empty the model returns DefaultResponse.
type MockModel struct {
	mu        sync.Mutex
	queue     []mockReply
	callCount int

	// DefaultResponse is returned once the queue is exhausted.
	DefaultResponse string

	// CapturedPrompts stores the text of every prompt, in call order.
	CapturedPrompts []string

	// CapturedOptions stores the resolved call options of every call, in call order.
	CapturedOptions []llms.CallOptions
}

type mockReply struct {
	content string
	raw     *llms.ContentResponse
	err     error
}

// NewMockModel creates a MockModel whose default response is a final answer.
func NewMockModel() *MockModel {
	return &MockModel{DefaultResponse: "Thought: done\nFinal Answer: done"}
}

// AddResponse queues a completion text.
func (m *MockModel) AddResponse(content string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{content: content})
	return m
}

// AddResponses queues several completion texts.
func (m *MockModel) AddResponses(contents ...string) *MockModel {
	for _, c := range contents {
		m.AddResponse(c)
	}
	return m
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response (e.g., empty Choices slice).
func (m *MockModel) AddRawResponse(resp *llms.ContentResponse) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{raw: resp})
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
	return m
}

// CallCount returns the number of times the model has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the most recent prompt, or an empty string.
func (m *MockModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CapturedPrompts) == 0 {
		return ""
	}
	return m.CapturedPrompts[len(m.CapturedPrompts)-1]
}

// GenerateContent implements llms.Model.
func (m *MockModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++
	m.CapturedPrompts = append(m.CapturedPrompts, promptText(messages))
	m.CapturedOptions = append(m.CapturedOptions, opts)

	if idx >= len(m.queue) {
		return textResponse(m.DefaultResponse), nil
	}
	reply := m.queue[idx]
	switch {
	case reply.err != nil:
		return nil, reply.err
	case reply.raw != nil:
		return reply.raw, nil
	default:
		return textResponse(reply.content), nil
	}
}

// Call implements llms.Model.
func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}
}

func promptText(messages []llms.MessageContent) string {
	var sb strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
}

// Compile-time check that MockModel implements llms.Model.
var _ llms.Model = (*MockModel)(nil)

// ErrProvider is a canned transport failure for provider error tests.
var ErrProvider = errors.New("connection reset by peer")

// -----------------------------------------------------------------------------
// MockTool - implements reactqa.Tool
// -----------------------------------------------------------------------------

// MockTool is a reactqa.Tool backed by a function. It records the arguments of each call.
type MockTool struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)

	mu    sync.Mutex
	calls []map[string]any
}

// NewMockTool creates a tool that returns output for every call.
func NewMockTool(name string, output any) *MockTool {
	return &MockTool{
		name:        name,
		description: "Mock tool " + name,
		fn: func(context.Context, map[string]any) (any, error) {
			return output, nil
		},
	}
}

// WithSchema sets the parameter schema.
func (t *MockTool) WithSchema(schema map[string]any) *MockTool {
	t.schema = schema
	return t
}

// WithDescription sets the description.
func (t *MockTool) WithDescription(description string) *MockTool {
	t.description = description
	return t
}

// WithFunc replaces the tool behavior.
func (t *MockTool) WithFunc(fn func(ctx context.Context, args map[string]any) (any, error)) *MockTool {
	t.fn = fn
	return t
}

// WithError makes every call fail with err.
func (t *MockTool) WithError(err error) *MockTool {
	t.fn = func(context.Context, map[string]any) (any, error) {
		return nil, err
	}
	return t
}

// Name implements reactqa.Tool.
func (t *MockTool) Name() string { return t.name }

// Description implements reactqa.Tool.
func (t *MockTool) Description() string { return t.description }

// ParameterSchema implements reactqa.Tool.
func (t *MockTool) ParameterSchema() map[string]any { return t.schema }

// Call implements reactqa.Tool.
func (t *MockTool) Call(ctx context.Context, args map[string]any) (any, error) {
	t.mu.Lock()
	t.calls = append(t.calls, args)
	t.mu.Unlock()
	return t.fn(ctx, args)
}

// Calls returns the arguments of every call, in order.
func (t *MockTool) Calls() []map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]map[string]any, len(t.calls))
	copy(out, t.calls)
	return out
}

// Compile-time check that MockTool implements reactqa.Tool.
var _ reactqa.Tool = (*MockTool)(nil)
