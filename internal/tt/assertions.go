package tt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rickchristie/reactqa"
)

// Of returns the recorded events of type T, in order.
func Of[T reactqa.HookEvent](h *RecordingHook) []T {
	var out []T
	for _, e := range h.Events() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// AssertEventNames asserts the exact sequence of recorded event names.
func AssertEventNames(t *testing.T, expected []string, h *RecordingHook) {
	t.Helper()
	assert.Equal(t, expected, h.Names(), "event sequence mismatch")
}

// CountEvents returns how many events of each name were recorded.
func CountEvents(h *RecordingHook) map[string]int {
	counts := make(map[string]int)
	for _, name := range h.Names() {
		counts[name]++
	}
	return counts
}

// Scratchpad builds entries from (thought, action, input, observation) tuples for
// comparisons in tests. Pass empty strings for absent fields.
func Scratchpad(rows ...[4]string) []*reactqa.ScratchpadEntry {
	out := make([]*reactqa.ScratchpadEntry, len(rows))
	for i, r := range rows {
		out[i] = &reactqa.ScratchpadEntry{
			Thought:     r[0],
			ActionName:  r[1],
			ActionInput: r[2],
			Observation: r[3],
		}
	}
	return out
}
