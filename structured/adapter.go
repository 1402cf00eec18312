// Package structured turns a plain text-completion model into free-text, JSON and
// function-selection calls.
//
// Every model call goes through a [Pacer] first. Transport, auth and quota failures come
// back as *reactqa.ProviderError. Completions that arrive but cannot be parsed are never
// returned as errors: they come back inside a [Result] or [FunctionCall] carrying a
// *reactqa.ParseError and the raw text.
package structured

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/internal/jsonx"
	"github.com/rickchristie/reactqa/models"
	"github.com/rickchristie/reactqa/schema"
)

// Adapter wraps an llms.Model.
type Adapter struct {
	model     llms.Model
	modelName string
	pacer     *Pacer
	hooks     *hooks.Registry
	callOpts  []llms.CallOption
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPacer sets the pacer. A nil pacer keeps the shared one.
func WithPacer(p *Pacer) Option {
	return func(a *Adapter) {
		if p != nil {
			a.pacer = p
		}
	}
}

// WithHooks sets the registry that receives model call and parse error events.
func WithHooks(r *hooks.Registry) Option {
	return func(a *Adapter) {
		a.hooks = r
	}
}

// WithModelName sets the model identifier reported in events.
func WithModelName(name string) Option {
	return func(a *Adapter) {
		a.modelName = name
	}
}

// WithCallOptions adds options passed to every model call, such as llms.WithTemperature.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(a *Adapter) {
		a.callOpts = append(a.callOpts, opts...)
	}
}

// New creates an Adapter over model.
func New(model llms.Model, opts ...Option) *Adapter {
	a := &Adapter{
		model:     model,
		modelName: "model",
		pacer:     SharedPacer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ModelName returns the model identifier reported in events.
func (a *Adapter) ModelName() string {
	return a.modelName
}

// Pacer returns the pacer in use.
func (a *Adapter) Pacer() *Pacer {
	return a.pacer
}

// CompleteText issues one completion for prompt. Any error is a *reactqa.ProviderError.
func (a *Adapter) CompleteText(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	if err := a.pacer.Wait(ctx); err != nil {
		return "", &reactqa.ProviderError{Op: "pacing", Err: err}
	}

	a.hooks.FireBeforeModelCall(ctx, reactqa.BeforeModelCallEvent{
		Model:  a.modelName,
		Prompt: prompt,
	})

	start := time.Now()
	text, usage, err := a.generate(ctx, prompt, opts)
	if err != nil {
		err = &reactqa.ProviderError{Op: "completion", Err: err}
	}

	a.hooks.FireAfterModelCall(ctx, reactqa.AfterModelCallEvent{
		Model:        a.modelName,
		Prompt:       prompt,
		Response:     text,
		Duration:     time.Since(start),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Error:        err,
	})
	return text, err
}

func (a *Adapter) generate(ctx context.Context, prompt string, opts []llms.CallOption) (string, models.Usage, error) {
	callOpts := make([]llms.CallOption, 0, len(a.callOpts)+len(opts))
	callOpts = append(callOpts, a.callOpts...)
	callOpts = append(callOpts, opts...)

	resp, err := a.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, callOpts...)
	if err != nil {
		return "", models.Usage{}, err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", models.Usage{}, reactqa.ErrEmptyResponse
	}
	return resp.Choices[0].Content, models.UsageOf(resp), nil
}

// CompleteStructured asks for JSON matching rawSchema and recovers it from the completion.
//
// The returned error is non-nil only for provider failures and for a rawSchema that does
// not compile. A completion without usable JSON, or with JSON that violates the schema,
// yields a Result whose Err is set.
func (a *Adapter) CompleteStructured(ctx context.Context, prompt string, rawSchema map[string]any) (*Result, error) {
	s, err := schema.Compile(rawSchema)
	if err != nil {
		return nil, fmt.Errorf("structured completion: %w", err)
	}

	text, err := a.CompleteText(ctx, annotate(prompt, s))
	if err != nil {
		return nil, err
	}

	value, stage, err := jsonx.Extract(text)
	if err != nil {
		return a.failed(ctx, reactqa.ParseErrorSourceStructured, text, err), nil
	}
	if err := s.Validate(value); err != nil {
		return a.failed(ctx, reactqa.ParseErrorSourceStructured, text, err), nil
	}
	return &Result{Value: value, Raw: text, Stage: stage}, nil
}

func (a *Adapter) failed(ctx context.Context, source reactqa.ParseErrorSource, raw string, err error) *Result {
	a.hooks.FireParseError(ctx, reactqa.ParseErrorEvent{Source: source, Raw: raw, Error: err})
	return &Result{Raw: raw, Err: &reactqa.ParseError{Raw: raw, Err: err}}
}

func annotate(prompt string, s *schema.Schema) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(prompt, "\n"))
	sb.WriteString("\n\nRespond ONLY with valid JSON matching this schema:\n")
	sb.WriteString(s.String())
	sb.WriteString("\nDo not add explanations or any text outside the JSON.")
	return sb.String()
}

// selectionSchema is the envelope every function selection must match.
var selectionSchema = schema.Object(map[string]*schema.Property{
	"function_name": schema.String("Name of the function to call, or null when no call is needed").Nullable(),
	"parameters":    schema.Nested("Arguments for the function, or null", nil).Nullable(),
	"answer":        schema.String("Answer to give when function_name is null").Nullable(),
}, "function_name")

// SelectFunction asks the model to pick one of specs, or none.
//
// The returned error is non-nil only for provider failures. Unparsable output, an unknown
// function name or parameters that violate the function's schema yield a FunctionCall
// whose Err is set.
func (a *Adapter) SelectFunction(ctx context.Context, prompt string, specs []reactqa.ToolSpec) (*FunctionCall, error) {
	res, err := a.CompleteStructured(ctx, selectionPrompt(prompt, specs), selectionSchema)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return &FunctionCall{Raw: res.Raw, Err: res.Err}, nil
	}

	obj := res.Object()
	name, _ := obj["function_name"].(string)
	name = strings.TrimSpace(name)
	params, _ := obj["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}

	if name == "" {
		if answer, ok := obj["answer"].(string); ok && answer != "" {
			if _, set := params["answer"]; !set {
				params["answer"] = answer
			}
		}
		return &FunctionCall{Parameters: params, Raw: res.Raw}, nil
	}

	spec, ok := findSpec(specs, name)
	if !ok {
		return a.failedCall(ctx, res.Raw, fmt.Errorf("%w: %q", reactqa.ErrUnknownTool, name)), nil
	}
	ps, err := schema.Compile(spec.Parameters)
	if err != nil {
		return nil, fmt.Errorf("select function %s: %w", name, err)
	}
	if err := ps.Validate(params); err != nil {
		return a.failedCall(ctx, res.Raw, fmt.Errorf("%w: %v", reactqa.ErrInvalidToolInput, err)), nil
	}
	return &FunctionCall{Name: name, Parameters: params, Raw: res.Raw}, nil
}

func (a *Adapter) failedCall(ctx context.Context, raw string, err error) *FunctionCall {
	a.hooks.FireParseError(ctx, reactqa.ParseErrorEvent{
		Source: reactqa.ParseErrorSourceFunction,
		Raw:    raw,
		Error:  err,
	})
	return &FunctionCall{Raw: raw, Err: &reactqa.ParseError{Raw: raw, Err: err}}
}

func findSpec(specs []reactqa.ToolSpec, name string) (reactqa.ToolSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return reactqa.ToolSpec{}, false
}

func selectionPrompt(prompt string, specs []reactqa.ToolSpec) string {
	catalog, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		catalog = []byte("[]")
	}
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(prompt, "\n"))
	sb.WriteString("\n\nYou can call one of these functions:\n")
	sb.Write(catalog)
	sb.WriteString("\n\nSet function_name to the function to call and parameters to its arguments. ")
	sb.WriteString("If no function is needed, set function_name to null and put your reply in answer.")
	return sb.String()
}
