package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/oceanops/maritime-agent/internal/domain/analysis"
)

const maxTokens = 1024

// Client talks to an OpenAI-compatible completion endpoint (Ollama's /v1
// surface in the default deployment). One prompt in, one complete text out;
// streaming stays disabled.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	// The timeout bounds the whole round trip; an expired call surfaces as
	// a GenerationError like any other transport failure.
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends the prompt and returns the text of the first choice, or ""
// when the envelope carried none. No retries: a single failure degrades the
// analysis instead of aborting it.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	resp, err := c.api.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     c.model,
		Prompt:    promptText,
		MaxTokens: maxTokens,
		Stream:    false,
	})
	if err != nil {
		return "", &analysis.GenerationError{Cause: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Text, nil
}
