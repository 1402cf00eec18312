package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/schema"
)

// ArxivAPIURL is the arXiv Atom query API.
const ArxivAPIURL = "https://export.arxiv.org/api/query"

const arxivMaxSummary = 4000

// ArxivInput is the input of the arxiv tool.
type ArxivInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// NewArxiv creates the arxiv tool.
func NewArxiv(opts ...Option) *reactqa.ToolFunc[ArxivInput, string] {
	o := buildOptions(ArxivAPIURL, opts)
	return reactqa.NewToolFunc(
		NameArxiv,
		"Search arXiv for academic papers and research publications in science, mathematics, computer science, and other fields",
		schema.Object(map[string]*schema.Property{
			"query":       schema.String("Search terms, an author or an arXiv identifier").MinLength(1),
			"max_results": schema.Integer("Maximum number of papers to return (default: 3)").Min(1).Max(10).Default(3),
		}, "query"),
		func(ctx context.Context, in ArxivInput) (string, error) {
			return o.arxiv(ctx, in.Query, in.MaxResults)
		},
	)
}

func (o *options) arxiv(ctx context.Context, query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(maxResults))

	body, err := o.fetch(ctx, o.baseURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return "", fmt.Errorf("error parsing arxiv feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return "No good Arxiv Result was found", nil
	}

	blocks := make([]string, len(feed.Items))
	for i, item := range feed.Items {
		authors := make([]string, 0, len(item.Authors))
		for _, a := range item.Authors {
			if a != nil {
				authors = append(authors, strings.TrimSpace(a.Name))
			}
		}
		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format("2006-01-02")
		} else if len(published) >= 10 {
			published = published[:10]
		}
		// Atom <summary> lands in Description.
		blocks[i] = fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
			published, collapse(item.Title), strings.Join(authors, ", "), collapse(item.Description))
	}
	return truncate(strings.Join(blocks, "\n\n"), arxivMaxSummary), nil
}

// collapse joins the whitespace-wrapped lines of Atom text fields.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
