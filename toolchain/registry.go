package toolchain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/schema"
)

type entry struct {
	tool   reactqa.Tool
	schema *schema.Schema
}

// Registry is a fixed set of tools resolved by name.
//
// Registry is NOT thread-safe for registration. Register all tools before the first
// Invoke; Invoke itself may be called concurrently.
type Registry struct {
	entries map[string]*entry
	order   []string
	hooks   *hooks.Registry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// WithHooks sets the registry that receives tool call events.
func (r *Registry) WithHooks(h *hooks.Registry) *Registry {
	r.hooks = h
	return r
}

// Register adds a tool. Names must be unique and schemas must compile.
func (r *Registry) Register(tool reactqa.Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("register tool: empty name")
	}
	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("register tool: %q already registered", name)
	}
	compiled, err := schema.Compile(tool.ParameterSchema())
	if err != nil {
		return fmt.Errorf("register tool %q: %w", name, err)
	}
	r.entries[name] = &entry{tool: tool, schema: compiled}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tools ...reactqa.Tool) *Registry {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (reactqa.Tool, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// ListSpecs returns the spec of every tool in registration order.
func (r *Registry) ListSpecs() []reactqa.ToolSpec {
	specs := make([]reactqa.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, reactqa.SpecOf(r.entries[name].tool))
	}
	return specs
}

// CatalogPrompt renders the tool list for the prompt, one tool per block with its
// parameters as YAML.
func (r *Registry) CatalogPrompt() string {
	var sb strings.Builder
	for i, name := range r.order {
		e := r.entries[name]
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, e.tool.Description())

		props, _ := e.schema.Raw()["properties"].(map[string]any)
		if len(props) == 0 {
			continue
		}
		data, err := yaml.Marshal(props)
		if err != nil {
			continue
		}
		sb.WriteString("  Parameters:\n")
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				sb.WriteString("    ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
		if required := schema.Required(e.schema.Raw()); len(required) > 0 {
			fmt.Fprintf(&sb, "  Required: %s\n", strings.Join(required, ", "))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Invoke resolves, validates and runs a tool call, returning the observation text.
func (r *Registry) Invoke(ctx context.Context, call reactqa.ToolCall) (string, error) {
	e, ok := r.entries[call.Name]
	if !ok {
		err := fmt.Errorf("%w: %q", reactqa.ErrUnknownTool, call.Name)
		r.hooks.FireAfterToolCall(ctx, reactqa.AfterToolCallEvent{ToolName: call.Name, Error: err})
		return "", err
	}

	args, err := coerce(call, e.schema.Raw())
	if err == nil {
		args = schema.ApplyDefaults(e.schema.Raw(), args)
		if verr := e.schema.Validate(args); verr != nil {
			err = fmt.Errorf("%w: %v", reactqa.ErrInvalidToolInput, verr)
		}
	}
	if err != nil {
		r.hooks.FireAfterToolCall(ctx, reactqa.AfterToolCallEvent{ToolName: call.Name, Error: err})
		return "", err
	}

	before := &reactqa.BeforeToolCallEvent{ToolName: call.Name, Args: args}
	r.hooks.FireBeforeToolCall(ctx, before)
	args = before.Args

	start := time.Now()
	output, err := safeCall(ctx, e.tool, args)
	var text string
	if err == nil {
		text, err = FormatOutput(output)
		if err != nil {
			err = &reactqa.ToolError{Tool: call.Name, Err: err}
		}
	}

	r.hooks.FireAfterToolCall(ctx, reactqa.AfterToolCallEvent{
		ToolName: call.Name,
		Args:     args,
		Output:   text,
		Duration: time.Since(start),
		Error:    err,
	})
	return text, err
}

func safeCall(ctx context.Context, tool reactqa.Tool, args map[string]any) (output any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &reactqa.ToolError{Tool: tool.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	output, err = tool.Call(ctx, args)
	if err != nil {
		return nil, &reactqa.ToolError{Tool: tool.Name(), Err: err}
	}
	return output, nil
}

// FormatOutput renders tool output as observation text.
func FormatOutput(output any) (string, error) {
	switch v := output.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	data, err := yaml.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
