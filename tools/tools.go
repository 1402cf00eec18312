// Package tools provides the tools the agent can call: web search, arithmetic, the
// clock, Wikipedia, arXiv and a sandboxed Starlark interpreter.
//
// Every tool is a reactqa.Tool built with reactqa.NewToolFunc. Network tools take their
// endpoint and HTTP client from [Option]s so tests can point them at httptest servers.
package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rickchristie/reactqa"
)

// Tool names.
const (
	NameWebSearch  = "web_search"
	NameCalculator = "calculator"
	NameDateTime   = "get_datetime"
	NameWikipedia  = "wikipedia"
	NameArxiv      = "arxiv"
	NameStarlark   = "starlark"
)

// DefaultUserAgent is sent with every outbound request.
const DefaultUserAgent = "reactqa/1.0 (+https://github.com/rickchristie/reactqa)"

// maxBodySize bounds how much of a response body a tool reads.
const maxBodySize = 2 << 20

type options struct {
	client    *http.Client
	baseURL   string
	userAgent string
	clock     reactqa.TimeProvider
}

// Option configures a tool.
type Option func(*options)

// WithHTTPClient sets the HTTP client used by network tools.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithBaseURL overrides the endpoint of a network tool.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header of outbound requests.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeProvider sets the clock used by get_datetime.
func WithTimeProvider(tp reactqa.TimeProvider) Option {
	return func(o *options) {
		o.clock = tp
	}
}

func buildOptions(defaultBaseURL string, opts []Option) *options {
	o := &options{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   defaultBaseURL,
		userAgent: DefaultUserAgent,
		clock:     reactqa.NewDefaultTimeProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fetch performs a GET request and returns the body.
func (o *options) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return body, nil
}

// constructors maps tool names to constructors.
var constructors = map[string]func(opts ...Option) reactqa.Tool{
	NameWebSearch:  func(opts ...Option) reactqa.Tool { return NewWebSearch(opts...) },
	NameCalculator: func(...Option) reactqa.Tool { return NewCalculator() },
	NameDateTime:   func(opts ...Option) reactqa.Tool { return NewDateTime(opts...) },
	NameWikipedia:  func(opts ...Option) reactqa.Tool { return NewWikipedia(opts...) },
	NameArxiv:      func(opts ...Option) reactqa.Tool { return NewArxiv(opts...) },
	NameStarlark:   func(...Option) reactqa.Tool { return NewStarlark() },
}

// DefaultNames is the tool set enabled when none is configured.
var DefaultNames = []string{NameWebSearch, NameCalculator, NameDateTime}

// Available returns every known tool name, sorted.
func Available() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName builds the named tools in the given order. Options apply to every tool, so
// pass only options meant for all of them (HTTP client, user agent, clock).
func ByName(names []string, opts ...Option) ([]reactqa.Tool, error) {
	out := make([]reactqa.Tool, 0, len(names))
	for _, name := range names {
		ctor, ok := constructors[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %v)", reactqa.ErrUnknownTool, name, Available())
		}
		out = append(out, ctor(opts...))
	}
	return out, nil
}
