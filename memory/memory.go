// Package memory holds the conversation history of a session.
package memory

import (
	"sync"

	"github.com/rickchristie/reactqa"
)

// Buffer is an append-only list of conversation turns. Clear is the only way to drop
// turns. It is safe for concurrent use.
type Buffer struct {
	mu    sync.RWMutex
	turns []reactqa.Turn
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds turns in order.
func (b *Buffer) Append(turns ...reactqa.Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turns...)
}

// AppendExchange records a question and its answer.
func (b *Buffer) AppendExchange(question, answer string) {
	b.Append(
		reactqa.Turn{Role: reactqa.RoleHuman, Text: question},
		reactqa.Turn{Role: reactqa.RoleAssistant, Text: answer},
	)
}

// Turns returns a copy of the stored turns, oldest first.
func (b *Buffer) Turns() []reactqa.Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]reactqa.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Len returns the number of stored turns.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}

// Clear drops every turn.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
}

// Render returns the turns as "Role: text" lines.
func (b *Buffer) Render() string {
	return reactqa.RenderHistory(b.Turns())
}

// Lines returns one "Role: text" string per turn.
func (b *Buffer) Lines() []string {
	turns := b.Turns()
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.String()
	}
	return out
}
