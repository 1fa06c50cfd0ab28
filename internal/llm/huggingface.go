package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

const (
	huggingFaceBaseURL = "https://api-inference.huggingface.co"
	huggingFaceModel   = "gpt2"
)

// HuggingFaceProvider calls the Hugging Face inference API.
type HuggingFaceProvider struct {
	Model   string
	BaseURL string
	token   string
	fetcher *fetch.Fetcher
}

// NewHuggingFaceProvider creates a new Hugging Face provider.
func NewHuggingFaceProvider(model, baseURL, token string, fetcher *fetch.Fetcher) *HuggingFaceProvider {
	if model == "" {
		model = huggingFaceModel
	}
	if baseURL == "" {
		baseURL = huggingFaceBaseURL
	}
	return &HuggingFaceProvider{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		fetcher: fetcher,
	}
}

func (h *HuggingFaceProvider) Name() string { return "huggingface/" + h.Model }

// Generate posts {inputs, parameters} and reads generated_text from the
// first element of the returned list.
func (h *HuggingFaceProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens":   maxTokens,
			"return_full_text": false,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+h.token)

	// A malformed reply (e.g. the model still loading) costs one attempt.
	var text string
	var lastErr error
	_, ok := h.fetcher.DoCheck(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    h.BaseURL + "/models/" + h.Model,
		Header: header,
		Body:   data,
	}, func(resp *fetch.Response) error {
		text, lastErr = parseGeneratedText(resp.Body)
		return lastErr
	})
	if !ok {
		var unexpected *UnexpectedResponseError
		if errors.As(lastErr, &unexpected) {
			return "", unexpected
		}
		return "", ErrUnavailable
	}
	return text, nil
}

func parseGeneratedText(body []byte) (string, error) {
	unexpected := &UnexpectedResponseError{Provider: "huggingface", Body: truncate(string(body), 200, "")}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
		return "", unexpected
	}

	text, ok := items[0]["generated_text"].(string)
	if !ok {
		return "", unexpected
	}
	return text, nil
}
