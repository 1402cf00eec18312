package reactqa

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a single callable capability the agent can use.
//
// Responsibility design:
//   - Tool: accept validated arguments, execute logic, return raw output
//   - Registry (toolchain): coerce model input into arguments, validate them against
//     ParameterSchema, call the tool, format output as an observation
//
// Tools should focus on business logic only. A returned string is used as the observation
// verbatim; any other value is formatted by the registry.
type Tool interface {
	// Name returns the tool's identifier used in Action lines and function calls.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's parameters.
	// Returns nil if the tool takes no parameters.
	ParameterSchema() map[string]any

	// Call executes the tool with arguments that already passed schema validation.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolSpec describes a tool for prompt rendering and function selection.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// SpecOf returns the ToolSpec of a tool.
func SpecOf(t Tool) ToolSpec {
	return ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.ParameterSchema(),
	}
}

// ToolCall is a request to invoke a tool by name.
//
// Args takes precedence when set. Otherwise Input is the raw text the model wrote after
// "Action Input:" and the registry maps it onto the tool's schema.
type ToolCall struct {
	Name  string
	Input string
	Args  map[string]any
}

// ToolFunc is a convenience type for creating tools from functions with typed I/O.
// Arguments are decoded into I through their JSON representation, so I should carry
// json tags matching the parameter schema.
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the LLM.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call decodes args into I and runs the tool function.
func (t *ToolFunc[I, O]) Call(ctx context.Context, args map[string]any) (any, error) {
	var input I
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToolInput, err)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToolInput, err)
		}
	}
	output, err := t.fn(ctx, input)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc[struct{}, string])(nil)
