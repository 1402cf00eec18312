package toolchain

import (
	"fmt"
	"strings"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/internal/jsonx"
	"github.com/rickchristie/reactqa/schema"
)

// emptyInputs are inputs models write for tools that take no arguments.
var emptyInputs = map[string]bool{
	"":     true,
	"none": true,
	"null": true,
	"n/a":  true,
	"{}":   true,
}

// coerce maps a tool call onto arguments for the given parameter schema.
func coerce(call reactqa.ToolCall, raw map[string]any) (map[string]any, error) {
	if call.Args != nil {
		return call.Args, nil
	}

	text := CleanInput(call.Input)

	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "```") {
		if obj, _, err := jsonx.ExtractObject(text); err == nil {
			return obj, nil
		}
	}

	if emptyInputs[strings.ToLower(text)] && len(schema.Required(raw)) == 0 {
		return map[string]any{}, nil
	}

	if name, ok := schema.SoleStringProperty(raw); ok {
		return map[string]any{name: text}, nil
	}

	if len(schema.Properties(raw)) == 0 {
		return map[string]any{}, nil
	}

	return nil, fmt.Errorf("%w: cannot map %q onto parameters %s",
		reactqa.ErrInvalidToolInput, text, strings.Join(schema.Properties(raw), ", "))
}

// CleanInput trims whitespace, a wrapping pair of quotes and single-line backticks
// from raw action input.
func CleanInput(input string) string {
	s := strings.TrimSpace(input)
	for _, q := range []string{`"`, "'", "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && !strings.HasPrefix(s, "```") {
			s = strings.TrimSpace(s[1 : len(s)-1])
			break
		}
	}
	return s
}
