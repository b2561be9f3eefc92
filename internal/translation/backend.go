package translation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Completion is the text generated for one prompt and the tokens the service
// billed for it.
type Completion struct {
	Text   string
	Tokens int
}

// Backend sends one prompt to a text generation service.
type Backend interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error)

	// Name returns the provider name
	Name() string
}

// FallbackBackend tries primary first and falls back to secondary on error.
type FallbackBackend struct {
	primary  Backend
	fallback Backend
	logger   *zap.Logger
}

// NewFallbackBackend wraps primary with a fallback backend.
func NewFallbackBackend(primary, fallback Backend, logger *zap.Logger) *FallbackBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackBackend{primary: primary, fallback: fallback, logger: logger}
}

// Complete tries the primary backend, then the fallback.
func (f *FallbackBackend) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	c, err := f.primary.Complete(ctx, prompt, maxTokens)
	if err == nil {
		return c, nil
	}
	f.logger.Warn("primary translation provider failed, falling back",
		zap.String("primary", f.primary.Name()),
		zap.String("fallback", f.fallback.Name()),
		zap.Error(err))

	c, fbErr := f.fallback.Complete(ctx, prompt, maxTokens)
	if fbErr != nil {
		return Completion{}, fmt.Errorf("both providers failed: primary=%v, fallback=%w", err, fbErr)
	}
	return c, nil
}

// Name returns the provider name
func (f *FallbackBackend) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", f.primary.Name(), f.fallback.Name())
}

// New builds the backend named by provider.
func New(ctx context.Context, provider string, cfg BackendConfig) (Backend, error) {
	switch provider {
	case "openai", "":
		b, err := NewOpenAIBackend(cfg.OpenAIKeys, cfg.OpenAIModel, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "gemini":
		b, err := NewGeminiBackend(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, provider)
	}
}

// BackendConfig carries the credentials and model choices for New.
type BackendConfig struct {
	OpenAIKeys  []string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
	Temperature float32
}
