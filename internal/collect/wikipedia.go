package collect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const wikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1"

// WikipediaSource looks up the page summary for a topic.
type WikipediaSource struct {
	fetcher *fetch.Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewWikipediaSource creates a WikipediaSource. An empty baseURL uses the
// public REST API.
func NewWikipediaSource(fetcher *fetch.Fetcher, baseURL string, logger *slog.Logger) *WikipediaSource {
	if baseURL == "" {
		baseURL = wikipediaBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WikipediaSource{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (w *WikipediaSource) Kind() SourceKind { return Encyclopedia }

// Fetch returns at most one snippet: the page extract.
func (w *WikipediaSource) Fetch(ctx context.Context, topic string) []Snippet {
	resp, ok := w.fetcher.Get(ctx, summaryURL(w.baseURL, topic), nil)
	if !ok {
		return nil
	}

	var page struct {
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		w.logger.Error("wikipedia decode error", "topic", topic, "error", err)
		return nil
	}

	extract := strings.TrimSpace(page.Extract)
	if extract == "" {
		return nil
	}
	return []Snippet{{Source: Encyclopedia, Text: "Wikipedia: " + extract}}
}

// summaryURL builds the summary endpoint; spaces become underscores and the
// slug is percent-encoded.
func summaryURL(base, topic string) string {
	slug := strings.ReplaceAll(topic, " ", "_")
	return base + "/page/summary/" + url.QueryEscape(slug)
}
