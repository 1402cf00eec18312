package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/schema"
)

// StarlarkMaxSteps bounds the work a single snippet may do.
const StarlarkMaxSteps = 5_000_000

const starlarkMaxOutput = 8000

// StarlarkInput is the input of the starlark tool.
type StarlarkInput struct {
	Command string `json:"command"`
}

// starlarkFileOptions enables the Python-like dialect models tend to write.
var starlarkFileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// NewStarlark creates the starlark tool, a sandboxed interpreter for a Python dialect.
//
// Snippets have no access to files, the network or the environment. The only modules
// available are math and json. Output is whatever the snippet prints.
func NewStarlark() *reactqa.ToolFunc[StarlarkInput, string] {
	return reactqa.NewToolFunc(
		NameStarlark,
		"Execute Python-like Starlark code to perform complex calculations, data analysis, or programming tasks. "+
			"Use print() to show results. The math and json modules are available; imports, files and network are not.",
		schema.Object(map[string]*schema.Property{
			"command": schema.String("Starlark (Python dialect) code to run").MinLength(1),
		}, "command"),
		func(ctx context.Context, in StarlarkInput) (string, error) {
			return RunStarlark(ctx, stripCodeFence(in.Command))
		},
	)
}

// RunStarlark executes src and returns its printed output.
func RunStarlark(ctx context.Context, src string) (string, error) {
	out := cappedBuffer{max: starlarkMaxOutput * utf8.UTFMax}
	thread := &starlark.Thread{
		Name: "tool",
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
			out.WriteString("\n")
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, errors.New("load is disabled")
		},
	}
	thread.SetMaxExecutionSteps(StarlarkMaxSteps)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	predeclared := starlark.StringDict{
		"math": math.Module,
		"json": json.Module,
	}
	_, err := starlark.ExecFileOptions(starlarkFileOptions, thread, "snippet.star", src, predeclared)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return "", fmt.Errorf("%s", evalErr.Backtrace())
		}
		return "", err
	}

	output := strings.TrimRight(out.String(), "\n")
	if output == "" {
		return "Code executed successfully with no output. Use print() to show results.", nil
	}
	return truncate(output, starlarkMaxOutput), nil
}

// cappedBuffer collects printed output and drops everything past max bytes.
type cappedBuffer struct {
	b   strings.Builder
	max int
}

func (c *cappedBuffer) WriteString(s string) {
	room := c.max - c.b.Len()
	if room <= 0 {
		return
	}
	if len(s) > room {
		s = s[:room]
	}
	c.b.WriteString(s)
}

func (c *cappedBuffer) String() string { return c.b.String() }

func (c *cappedBuffer) Len() int { return c.b.Len() }

// stripCodeFence removes a surrounding ``` fence, with or without a language tag.
func stripCodeFence(src string) string {
	s := strings.TrimSpace(src)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
