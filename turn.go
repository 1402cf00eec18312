package reactqa

import (
	"fmt"
	"strings"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleHuman     Role = "Human"
	RoleAssistant Role = "Assistant"
)

// Turn is a single message in the conversation history.
type Turn struct {
	Role Role
	Text string
}

// String renders the turn as "Role: text".
func (t Turn) String() string {
	return fmt.Sprintf("%s: %s", t.Role, t.Text)
}

// RenderHistory renders turns one per line, in order. It returns an empty string for no turns.
func RenderHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

// ScratchpadEntry is one Thought/Action/Observation step of an episode.
//
// An entry is appended for every loop iteration, including the final one. ActionName and
// ActionInput are empty when the iteration did not call a tool. Note carries corrective
// feedback for the model (for example when its output was malformed) and is rendered right
// after the observation.
type ScratchpadEntry struct {
	Thought     string
	ActionName  string
	ActionInput string
	Observation string
	Note        string
}

// HasAction reports whether the entry records a tool call.
func (e *ScratchpadEntry) HasAction() bool {
	return e.ActionName != ""
}
