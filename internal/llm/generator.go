package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	DefaultMaxTokens = 700
	DefaultMaxChars  = 6000

	fallbackSuffix  = " - AI Evolution Blog Post (Fallback)"
	truncatedMarker = "..."
)

const blogPrompt = "Write a ~600 word SEO optimized blog post about %s. " +
	"Use headings and short paragraphs. Context: %s"

// Generator turns a topic and context into article text. It never fails:
// any provider error yields Fallback(topic).
type Generator struct {
	provider  Provider
	maxTokens int
	maxChars  int
	logger    *slog.Logger
}

// NewGenerator creates a Generator. Non-positive limits use the defaults.
func NewGenerator(provider Provider, maxTokens, maxChars int, logger *slog.Logger) *Generator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, maxTokens: maxTokens, maxChars: maxChars, logger: logger}
}

// Fallback is the deterministic placeholder article for topic.
func Fallback(topic string) string {
	return topic + fallbackSuffix
}

// BuildPrompt builds the article instruction sent to the provider.
func BuildPrompt(topic, contextBlob string) string {
	return fmt.Sprintf(blogPrompt, topic, contextBlob)
}

// Generate returns the cleaned article, or the fallback on any failure.
func (g *Generator) Generate(ctx context.Context, topic, contextBlob string) string {
	if g.provider == nil {
		g.logger.Warn("no generation provider configured, using fallback", "topic", topic)
		return Fallback(topic)
	}

	text, err := g.provider.Generate(ctx, BuildPrompt(topic, contextBlob), g.maxTokens)
	if err != nil {
		g.logger.Error("generation failed, using fallback",
			"provider", g.provider.Name(),
			"topic", topic,
			"error", err,
		)
		return Fallback(topic)
	}

	text = clean(text, g.maxChars)
	if text == "" {
		g.logger.Warn("generation returned empty text, using fallback", "provider", g.provider.Name())
		return Fallback(topic)
	}
	return text
}

func clean(text string, maxChars int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	return truncate(text, maxChars, truncatedMarker)
}

// truncate cuts s to max runes and appends marker when it did cut.
func truncate(s string, max int, marker string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + marker
}
