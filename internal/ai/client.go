// Package ai wraps the Gemini oracle: prompt assembly, the model call, and
// decoding the model's JSON reply into action requests.
package ai

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Oracle is the LLM as the rest of the system sees it: text in, raw text
// out, or an error. Nothing downstream of a failed call runs.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Generate sends the prompt and returns the model's raw text. The call is
// bounded by the configured timeout; there is no retry.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.4),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 1024,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
