// Package pipeline wires the components of one posting run together.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/auth"
	"github.com/hasibx0/ai-blogger-bot/internal/collect"
	"github.com/hasibx0/ai-blogger-bot/internal/compose"
	"github.com/hasibx0/ai-blogger-bot/internal/config"
	"github.com/hasibx0/ai-blogger-bot/internal/deliver"
	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
	"github.com/hasibx0/ai-blogger-bot/internal/images"
	"github.com/hasibx0/ai-blogger-bot/internal/llm"
	"github.com/hasibx0/ai-blogger-bot/internal/notify"
	"github.com/hasibx0/ai-blogger-bot/internal/topic"
)

// FromConfig builds a pipeline from configuration and resolved secrets.
// When withDelivery is false the result can only Prepare posts.
func FromConfig(ctx context.Context, cfg *config.Config, secrets *config.Secrets, withDelivery bool, logger *slog.Logger) (*Pipeline, error) {
	mode, err := compose.ParseRenderMode(cfg.RenderMode)
	if err != nil {
		return nil, err
	}

	policy := fetch.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     cfg.Retry.Backoff,
		Logger:      logger,
	}
	fetcher := fetch.New(&http.Client{Timeout: cfg.Retry.HTTPTimeout}, policy)

	provider := llm.CreateProvider(cfg.Generation, secrets.GenerationAPIKey, policy, logger)

	var lookup images.Lookup = images.Disabled{}
	if cfg.Image.Enabled {
		lookup = images.NewUnsplash(fetcher, cfg.Image.BaseURL, secrets.ImageAPIKey, logger)
	}

	c := Components{
		Topics:    topic.NewPicker(cfg.Topic.Seed, cfg.Topic.Catalog, nil),
		Gatherer:  collect.NewFromConfig(cfg.Context, fetcher, logger),
		Generator: llm.NewGenerator(provider, cfg.Generation.MaxNewTokens, cfg.Generation.MaxChars, logger),
		Images:    lookup,
		Assembler: compose.NewAssembler(mode),
	}

	if withDelivery {
		c.Delivery, err = NewAdapter(ctx, cfg, secrets, logger)
		if err != nil {
			return nil, err
		}
		c.Notifier = newNotifier(cfg, secrets, logger)
	}

	return New(c, logger), nil
}

// NewAdapter creates the delivery adapter selected by delivery.method.
func NewAdapter(ctx context.Context, cfg *config.Config, secrets *config.Secrets, logger *slog.Logger) (deliver.Adapter, error) {
	switch strings.ToLower(cfg.Delivery.Method) {
	case deliver.MethodEmail:
		return deliver.NewEmailAdapter(deliver.EmailSettings{
			Host:     cfg.Delivery.Email.Host,
			Port:     cfg.Delivery.Email.Port,
			User:     secrets.EmailUser,
			Password: secrets.EmailPassword,
			To:       secrets.EmailTo,
		}, logger)

	case deliver.MethodBlogger:
		oauthCfg, err := auth.LoadClientConfig(secrets.ClientSecretFile, cfg.Delivery.Blogger.Scopes...)
		if err != nil {
			return nil, err
		}
		creds := auth.NewProvider(oauthCfg, secrets.TokenFile, cfg.Delivery.Blogger.CallbackAddr)
		ts, err := creds.TokenSource(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtaining blogger credentials: %w", err)
		}
		return deliver.NewBloggerAdapter(ctx, secrets.BlogID, ts, logger)
	}
	return nil, fmt.Errorf("unknown delivery method %q", cfg.Delivery.Method)
}

func newNotifier(cfg *config.Config, secrets *config.Secrets, logger *slog.Logger) notify.Notifier {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}
	n, err := notify.NewTelegram(secrets.TelegramToken, secrets.TelegramChatID, "", nil)
	if err != nil {
		logger.Warn("telegram notifications disabled", "error", err)
		return nil
	}
	return n
}
