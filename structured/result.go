package structured

import (
	"encoding/json"
	"fmt"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/internal/jsonx"
)

// Result is the outcome of a structured completion.
//
// Exactly one of Value and Err is meaningful. Raw always holds the completion text so a
// failed result can be inspected or logged.
type Result struct {
	Value any
	Raw   string
	Stage jsonx.Stage
	Err   *reactqa.ParseError
}

// OK reports whether the result holds a validated value.
func (r *Result) OK() bool {
	return r != nil && r.Err == nil
}

// Object returns the value as a JSON object, or nil.
func (r *Result) Object() map[string]any {
	if !r.OK() {
		return nil
	}
	obj, _ := r.Value.(map[string]any)
	return obj
}

// Decode stores the value in dst through its JSON form.
func (r *Result) Decode(dst any) error {
	if !r.OK() {
		if r == nil {
			return fmt.Errorf("decode: nil result")
		}
		return r.Err
	}
	data, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// FunctionCall is the outcome of [Adapter.SelectFunction].
//
// An empty Name means the model decided no tool is needed. Parameters may then carry an
// "answer" the model volunteered.
type FunctionCall struct {
	Name       string
	Parameters map[string]any
	Raw        string
	Err        *reactqa.ParseError
}

// None reports whether the model chose not to call a function.
func (f *FunctionCall) None() bool {
	return f.Err == nil && f.Name == ""
}
