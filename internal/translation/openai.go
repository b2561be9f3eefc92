package translation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend calls the chat completions API. With more than one key the
// requests rotate round-robin across a pool of clients.
type OpenAIBackend struct {
	clients     []*openai.Client
	next        int
	model       string
	temperature float32
}

// NewOpenAIBackend creates a backend for the given keys. Empty keys are ignored.
func NewOpenAIBackend(keys []string, model string, temperature float32) (*OpenAIBackend, error) {
	var configs []openai.ClientConfig
	for _, key := range keys {
		if key != "" {
			configs = append(configs, openai.DefaultConfig(key))
		}
	}
	return NewOpenAIBackendWithConfigs(configs, model, temperature)
}

// NewOpenAIBackendWithConfigs creates a backend from explicit client configs.
func NewOpenAIBackendWithConfigs(configs []openai.ClientConfig, model string, temperature float32) (*OpenAIBackend, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("OpenAI %w", ErrNoAPIKey)
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	clients := make([]*openai.Client, 0, len(configs))
	for _, cfg := range configs {
		clients = append(clients, openai.NewClientWithConfig(cfg))
	}
	return &OpenAIBackend{
		clients:     clients,
		model:       model,
		temperature: temperature,
	}, nil
}

// Complete sends prompt as a single user message.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	client := b.clients[b.next%len(b.clients)]
	b.next++

	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: b.temperature,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{
		Text:   resp.Choices[0].Message.Content,
		Tokens: resp.Usage.TotalTokens,
	}, nil
}

// Name returns the provider name
func (b *OpenAIBackend) Name() string {
	return "openai/" + b.model
}

// PoolSize returns the number of API keys in rotation.
func (b *OpenAIBackend) PoolSize() int {
	return len(b.clients)
}
