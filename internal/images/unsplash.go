// Package images finds an illustrative picture for a post.
package images

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const unsplashBaseURL = "https://api.unsplash.com"

// Lookup returns a direct image URL for a query, or "" when none is found.
type Lookup interface {
	Lookup(ctx context.Context, query string) string
}

// Unsplash asks the Unsplash API for one random landscape photo.
type Unsplash struct {
	fetcher   *fetch.Fetcher
	baseURL   string
	accessKey string
	logger    *slog.Logger
}

// NewUnsplash creates an Unsplash lookup.
func NewUnsplash(fetcher *fetch.Fetcher, baseURL, accessKey string, logger *slog.Logger) *Unsplash {
	if baseURL == "" {
		baseURL = unsplashBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Unsplash{
		fetcher:   fetcher,
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		logger:    logger,
	}
}

// Lookup returns urls.regular of a random photo matching query. Absence is
// reported as "" and is not an error.
func (u *Unsplash) Lookup(ctx context.Context, query string) string {
	params := url.Values{
		"query":       {query},
		"client_id":   {u.accessKey},
		"orientation": {"landscape"},
	}

	resp, ok := u.fetcher.Get(ctx, u.baseURL+"/photos/random?"+params.Encode(), nil)
	if !ok {
		u.logger.Warn("no image found", "query", query)
		return ""
	}

	var photo struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	}
	if err := json.Unmarshal(resp.Body, &photo); err != nil {
		u.logger.Warn("unexpected image response", "query", query, "error", err)
		return ""
	}
	return strings.TrimSpace(photo.URLs.Regular)
}

// Disabled never returns an image.
type Disabled struct{}

func (Disabled) Lookup(context.Context, string) string { return "" }
