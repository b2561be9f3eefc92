package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when no OpenAI key is configured.
var ErrNoAPIKey = errors.New("OpenAI API key not found. Set OPENAI_API_KEY or [openai] api_key in the config file")

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return NewListerWithConfig(apiKey, openai.DefaultConfig(apiKey))
}

// NewListerWithConfig creates a lister for a custom endpoint. cfg must carry
// the same apiKey.
func NewListerWithConfig(apiKey string, cfg openai.ClientConfig) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
	}
}

// ChatModels returns the sorted ids of the chat models
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chat []string
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chat = append(chat, model.ID)
		}
	}
	sort.Strings(chat)
	return chat, nil
}

func isChatModel(id string) bool {
	for _, excluded := range []string{"tts", "audio", "realtime", "transcribe", "image", "embedding", "dall-e", "whisper", "moderation"} {
		if strings.Contains(id, excluded) {
			return false
		}
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.HasPrefix(id, "o")
}

// ListAvailableModels prints the chat models, marking current
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, current string) error {
	chat, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat/Translation Models:")
	if len(chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}
	for _, model := range chat {
		marker := " "
		if model == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, model)
	}
	return nil
}
