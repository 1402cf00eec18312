package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/schema"
)

// DuckDuckGoHTMLURL is the JavaScript-free DuckDuckGo results page.
const DuckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"

// WebSearchInput is the input of the web_search tool.
type WebSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title string
	Body  string
	URL   string
}

// NewWebSearch creates the web_search tool over the DuckDuckGo HTML endpoint.
func NewWebSearch(opts ...Option) *reactqa.ToolFunc[WebSearchInput, string] {
	o := buildOptions(DuckDuckGoHTMLURL, opts)
	return reactqa.NewToolFunc(
		NameWebSearch,
		"Search the internet for current information using DuckDuckGo",
		schema.Object(map[string]*schema.Property{
			"query":       schema.String("The search query").MinLength(1),
			"max_results": schema.Integer("Maximum number of results to return (default: 3)").Min(1).Max(10).Default(3),
		}, "query"),
		func(ctx context.Context, in WebSearchInput) (string, error) {
			results, err := o.search(ctx, in.Query, in.MaxResults)
			if err != nil {
				return "", fmt.Errorf("search failed: %w", err)
			}
			return FormatSearchResults(in.Query, results), nil
		},
	)
}

func (o *options) search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	body, err := o.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return ParseDuckDuckGoHTML(body, maxResults)
}

// ParseDuckDuckGoHTML extracts up to limit organic results from a results page.
// Sponsored results are skipped.
func ParseDuckDuckGoHTML(page []byte, limit int) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("error parsing results page: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, SearchResult{
			Title: title,
			Body:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			URL:   resolveDuckDuckGoLink(href),
		})
		return len(results) < limit
	})
	return results, nil
}

// resolveDuckDuckGoLink unwraps DuckDuckGo redirect links ("//duckduckgo.com/l/?uddg=...").
func resolveDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// FormatSearchResults renders results as Title/Content/URL blocks separated by "---".
func FormatSearchResults(query string, results []SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Title: %s\nContent: %s\nURL: %s\n", orNA(r.Title), orNA(r.Body), orNA(r.URL))
	}
	return strings.Join(blocks, "\n---\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
