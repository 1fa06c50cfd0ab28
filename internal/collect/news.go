package collect

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const (
	newsBaseURL     = "https://news.google.com"
	defaultMaxItems = 3
)

// NewsSource searches the Google News RSS feed.
type NewsSource struct {
	fetcher  *fetch.Fetcher
	baseURL  string
	maxItems int
	logger   *slog.Logger
}

// NewNewsSource creates a NewsSource returning up to maxItems snippets.
func NewNewsSource(fetcher *fetch.Fetcher, baseURL string, maxItems int, logger *slog.Logger) *NewsSource {
	if baseURL == "" {
		baseURL = newsBaseURL
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsSource{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxItems: maxItems,
		logger:   logger,
	}
}

func (n *NewsSource) Kind() SourceKind { return News }

// Fetch returns "{title}. {summary}" snippets.
func (n *NewsSource) Fetch(ctx context.Context, topic string) []Snippet {
	params := url.Values{
		"q":    {topic},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}
	resp, ok := n.fetcher.Get(ctx, n.baseURL+"/rss/search?"+params.Encode(), nil)
	if !ok {
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		n.logger.Error("news feed parse error", "topic", topic, "error", err)
		return nil
	}

	var out []Snippet
	for _, item := range feed.Items {
		if len(out) >= n.maxItems {
			break
		}
		title := normalizeSpace(item.Title)
		summary := htmlToText(item.Description)
		if title == "" && summary == "" {
			continue
		}
		out = append(out, Snippet{Source: News, Text: title + ". " + summary})
	}
	return out
}

// htmlToText flattens an HTML fragment to whitespace-normalized text.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeSpace(fragment)
	}
	return normalizeSpace(doc.Text())
}
