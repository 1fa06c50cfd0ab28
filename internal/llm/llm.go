package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/config"
	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

// Provider is the interface for text-generation backends.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}

// ErrUnavailable means the endpoint never answered with a usable response.
var ErrUnavailable = errors.New("generation endpoint unavailable")

// UnexpectedResponseError is returned when a response decodes but does not
// have the expected shape.
type UnexpectedResponseError struct {
	Provider string
	Body     string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected %s response: %s", e.Provider, e.Body)
}

// CreateProvider creates a generation provider based on configuration.
// SDK-backed providers reuse policy for their retry loop; the Hugging Face
// provider gets a fetcher with the configured generation timeout.
func CreateProvider(cfg config.Generation, apiKey string, policy fetch.Policy, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}

	var p Provider
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		p = NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL, cfg.Timeout, policy)
	case "anthropic":
		p = NewAnthropicProvider(apiKey, cfg.Model, cfg.BaseURL, cfg.Timeout, policy)
	default:
		client := &http.Client{Timeout: cfg.Timeout}
		p = NewHuggingFaceProvider(cfg.Model, cfg.BaseURL, apiKey, fetch.New(client, policy))
	}

	logger.Info("using generation provider", "provider", p.Name())
	return p
}
