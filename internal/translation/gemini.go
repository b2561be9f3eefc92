package translation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no Gemini model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend calls the Gemini generate content API.
type GeminiBackend struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiBackend creates a Gemini backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string, temperature float32) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini %w", ErrNoAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

// Complete sends prompt as a single user turn.
func (b *GeminiBackend) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(b.temperature),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), config)
	if err != nil {
		return Completion{}, fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Completion{}, ErrEmptyResponse
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return Completion{Text: text, Tokens: tokens}, nil
}

// Name returns the provider name
func (b *GeminiBackend) Name() string {
	return "gemini/" + b.model
}
