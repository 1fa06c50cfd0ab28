package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const openAIModel = "gpt-4o-mini"

// OpenAIProvider generates text with the OpenAI chat completions API.
type OpenAIProvider struct {
	Model  string
	client openai.Client
	policy fetch.Policy
}

// NewOpenAIProvider creates a new OpenAI provider. The SDK's own retries are
// disabled so policy alone decides how often a call is attempted.
func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration, policy fetch.Policy) *OpenAIProvider {
	if model == "" {
		model = openAIModel
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

	return &OpenAIProvider{
		Model:  model,
		client: openai.NewClient(opts...),
		policy: policy,
	}
}

func (o *OpenAIProvider) Name() string { return "openai/" + o.Model }

// Generate sends a prompt to OpenAI and returns the first choice.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var text string
	err := o.policy.Run(ctx, o.Name(), func(ctx context.Context) error {
		resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(o.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			MaxCompletionTokens: openai.Int(int64(maxTokens)),
			Temperature:         openai.Float(0.7),
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(&UnexpectedResponseError{Provider: "openai", Body: "no choices"})
		}
		text = resp.Choices[0].Message.Content
		return nil
	})
	return text, err
}
