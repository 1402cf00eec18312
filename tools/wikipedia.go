package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/schema"
)

// WikipediaAPIURL is the MediaWiki action API of English Wikipedia.
const WikipediaAPIURL = "https://en.wikipedia.org/w/api.php"

const (
	wikipediaTopK         = 3
	wikipediaMaxSummary   = 4000
	wikipediaMaxQueryRune = 300
)

// WikipediaInput is the input of the wikipedia tool.
type WikipediaInput struct {
	Query string `json:"query"`
}

type wikipediaResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Index   int    `json:"index"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// NewWikipedia creates the wikipedia tool. It searches Wikipedia and returns the
// introduction of the best matching pages as Markdown.
func NewWikipedia(opts ...Option) *reactqa.ToolFunc[WikipediaInput, string] {
	o := buildOptions(WikipediaAPIURL, opts)
	return reactqa.NewToolFunc(
		NameWikipedia,
		"Search Wikipedia for encyclopedic information about people, places, concepts, and historical events",
		schema.Object(map[string]*schema.Property{
			"query": schema.String("What to look up on Wikipedia").MinLength(1),
		}, "query"),
		func(ctx context.Context, in WikipediaInput) (string, error) {
			return o.wikipedia(ctx, in.Query)
		},
	)
}

func (o *options) wikipedia(ctx context.Context, query string) (string, error) {
	if r := []rune(query); len(r) > wikipediaMaxQueryRune {
		query = string(r[:wikipediaMaxQueryRune])
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", fmt.Sprint(wikipediaTopK))
	params.Set("prop", "extracts")
	params.Set("exintro", "1")

	body, err := o.fetch(ctx, o.baseURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("wikipedia request failed: %w", err)
	}

	var resp wikipediaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("error parsing wikipedia response: %w", err)
	}

	pages := resp.Query.Pages
	if len(pages) == 0 {
		return "No good Wikipedia Search Result was found", nil
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		summary, err := htmltomarkdown.ConvertString(p.Extract)
		if err != nil {
			summary = p.Extract
		}
		summary = strings.TrimSpace(summary)
		if summary == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, summary))
	}
	if len(blocks) == 0 {
		return "No good Wikipedia Search Result was found", nil
	}
	return truncate(strings.Join(blocks, "\n\n"), wikipediaMaxSummary), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
