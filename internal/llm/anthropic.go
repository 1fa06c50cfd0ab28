package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const anthropicModel = "claude-haiku-4-5"

// AnthropicProvider generates text with the Anthropic messages API.
type AnthropicProvider struct {
	Model  string
	client anthropic.Client
	policy fetch.Policy
}

// NewAnthropicProvider creates a new Anthropic provider with SDK retries
// disabled in favour of policy.
func NewAnthropicProvider(apiKey, model, baseURL string, timeout time.Duration, policy fetch.Policy) *AnthropicProvider {
	if model == "" {
		model = anthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &AnthropicProvider{
		Model:  model,
		client: anthropic.NewClient(opts...),
		policy: policy,
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic/" + a.Model }

// Generate sends a prompt and concatenates the text blocks of the reply.
func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var text string
	err := a.policy.Run(ctx, a.Name(), func(ctx context.Context) error {
		resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.Model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return err
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return backoff.Permanent(&UnexpectedResponseError{Provider: "anthropic", Body: "no text content"})
		}
		text = sb.String()
		return nil
	})
	return text, err
}
