// Package session answers questions one episode at a time and keeps the conversation
// history between them.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/agents/react"
	"github.com/rickchristie/reactqa/memory"
)

// EmptyQuestionAnswer is returned for a blank question without running an episode.
const EmptyQuestionAnswer = "Please ask a question."

// Runner runs one episode. *react.Agent implements it.
type Runner interface {
	Run(ctx context.Context, question string, history []reactqa.Turn) *react.Result
}

// Session owns the agent and the conversation memory. Episodes are serialized, so the
// memory is only written between episodes.
type Session struct {
	mu            sync.Mutex
	runner        Runner
	memory        *memory.Buffer
	memoryEnabled bool
}

// Option configures a Session.
type Option func(*Session)

// WithMemory enables or disables the conversation memory. It is enabled by default.
func WithMemory(enabled bool) Option {
	return func(s *Session) {
		s.memoryEnabled = enabled
	}
}

// WithBuffer sets the buffer that stores the conversation.
func WithBuffer(b *memory.Buffer) Option {
	return func(s *Session) {
		s.memory = b
	}
}

// New creates a Session around runner.
func New(runner Runner, opts ...Option) *Session {
	s := &Session{
		runner:        runner,
		memory:        memory.NewBuffer(),
		memoryEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerQuestion runs one episode and returns its answer. It never fails.
func (s *Session) AnswerQuestion(ctx context.Context, question string) string {
	return s.Ask(ctx, question).Answer
}

// Ask runs one episode and returns the full result.
//
// When memory is enabled, the question and answer are appended after an episode that
// produced an answer (done or failed). Aborted episodes leave the memory untouched.
func (s *Session) Ask(ctx context.Context, question string) *react.Result {
	question = strings.TrimSpace(question)
	if question == "" {
		return &react.Result{Answer: EmptyQuestionAnswer, State: react.StateFailed}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var history []reactqa.Turn
	if s.memoryEnabled {
		history = s.memory.Turns()
	}

	result := s.runner.Run(ctx, question, history)
	if s.memoryEnabled && result.State != react.StateAborted {
		s.memory.AppendExchange(question, result.Answer)
	}
	return result
}

// InitConversation starts a new conversation by clearing the memory.
func (s *Session) InitConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Clear()
}

// EndConversation ends the conversation by clearing the memory.
func (s *Session) EndConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Clear()
}

// GetHistory returns the conversation as "Human: ..." and "Assistant: ..." lines.
func (s *Session) GetHistory() []string {
	return s.memory.Lines()
}

// MemoryEnabled reports whether answered questions are remembered.
func (s *Session) MemoryEnabled() bool {
	return s.memoryEnabled
}
