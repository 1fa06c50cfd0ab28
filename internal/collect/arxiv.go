package collect

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const arxivBaseURL = "http://export.arxiv.org"

// ArxivSource searches the arXiv Atom API for paper titles.
type ArxivSource struct {
	fetcher  *fetch.Fetcher
	baseURL  string
	maxItems int
	logger   *slog.Logger
}

// NewArxivSource creates an ArxivSource returning up to maxItems titles.
func NewArxivSource(fetcher *fetch.Fetcher, baseURL string, maxItems int, logger *slog.Logger) *ArxivSource {
	if baseURL == "" {
		baseURL = arxivBaseURL
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArxivSource{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxItems: maxItems,
		logger:   logger,
	}
}

func (a *ArxivSource) Kind() SourceKind { return Research }

// Fetch returns title-only snippets.
func (a *ArxivSource) Fetch(ctx context.Context, topic string) []Snippet {
	queryURL := fmt.Sprintf("%s/api/query?search_query=all:%s&start=0&max_results=%d",
		a.baseURL, url.QueryEscape(topic), a.maxItems)

	resp, ok := a.fetcher.Get(ctx, queryURL, nil)
	if !ok {
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		a.logger.Error("arxiv parse error", "topic", topic, "error", err)
		return nil
	}

	var out []Snippet
	for _, item := range feed.Items {
		if len(out) >= a.maxItems {
			break
		}
		if title := normalizeSpace(item.Title); title != "" {
			out = append(out, Snippet{Source: Research, Text: title})
		}
	}
	return out
}
