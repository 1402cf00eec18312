package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/reactqa"
)

// RecordingHook implements every hook interface and records the events it sees.
type RecordingHook struct {
	mu     sync.Mutex
	events []reactqa.HookEvent
}

// NewRecordingHook creates an empty RecordingHook.
func NewRecordingHook() *RecordingHook {
	return &RecordingHook{}
}

func (h *RecordingHook) record(e reactqa.HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

// Events returns the recorded events in order.
func (h *RecordingHook) Events() []reactqa.HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]reactqa.HookEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Names returns the short name of every recorded event, in order.
func (h *RecordingHook) Names() []string {
	events := h.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = EventName(e)
	}
	return names
}

func (h *RecordingHook) OnBeforeExecution(_ context.Context, e reactqa.BeforeExecutionEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterExecution(_ context.Context, e reactqa.AfterExecutionEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeIteration(_ context.Context, e reactqa.BeforeIterationEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterIteration(_ context.Context, e reactqa.AfterIterationEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeModelCall(_ context.Context, e reactqa.BeforeModelCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterModelCall(_ context.Context, e reactqa.AfterModelCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeToolCall(_ context.Context, e *reactqa.BeforeToolCallEvent) {
	cp := *e
	h.record(&cp)
}

func (h *RecordingHook) OnAfterToolCall(_ context.Context, e reactqa.AfterToolCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnParseError(_ context.Context, e reactqa.ParseErrorEvent) {
	h.record(e)
}

// EventName returns a short name for an event, used to compare event sequences.
func EventName(e reactqa.HookEvent) string {
	switch e.(type) {
	case reactqa.BeforeExecutionEvent:
		return "before_execution"
	case reactqa.AfterExecutionEvent:
		return "after_execution"
	case reactqa.BeforeIterationEvent:
		return "before_iteration"
	case reactqa.AfterIterationEvent:
		return "after_iteration"
	case reactqa.BeforeModelCallEvent:
		return "before_model_call"
	case reactqa.AfterModelCallEvent:
		return "after_model_call"
	case *reactqa.BeforeToolCallEvent:
		return "before_tool_call"
	case reactqa.AfterToolCallEvent:
		return "after_tool_call"
	case reactqa.ParseErrorEvent:
		return "parse_error"
	default:
		return fmt.Sprintf("%T", e)
	}
}
