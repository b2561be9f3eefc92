package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNewOpenAIBackend_NoAPIKey(t *testing.T) {
	_, err := NewOpenAIBackend([]string{"", ""}, "", 0.3)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestNewOpenAIBackend_DefaultModel(t *testing.T) {
	b, err := NewOpenAIBackend([]string{"k1", "k2"}, "", 0.3)
	if err != nil {
		t.Fatalf("NewOpenAIBackend failed: %v", err)
	}
	if b.Name() != "openai/"+openai.GPT3Dot5Turbo {
		t.Errorf("Name() = %q", b.Name())
	}
	if b.PoolSize() != 2 {
		t.Errorf("PoolSize() = %d, want 2", b.PoolSize())
	}
}

func TestOpenAIBackend_CompleteRotatesKeys(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		auths = append(auths, r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("MaxTokens = %d, want 1000", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":" Details A "},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":30,"completion_tokens":4,"total_tokens":34}}`))
	}))
	defer srv.Close()

	var configs []openai.ClientConfig
	for _, key := range []string{"key-a", "key-b"} {
		cfg := openai.DefaultConfig(key)
		cfg.BaseURL = srv.URL + "/v1"
		configs = append(configs, cfg)
	}
	b, err := NewOpenAIBackendWithConfigs(configs, "", 0.3)
	if err != nil {
		t.Fatalf("NewOpenAIBackendWithConfigs failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		c, err := b.Complete(context.Background(), "translate 详情A", 1000)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if c.Text != " Details A " || c.Tokens != 34 {
			t.Errorf("Complete() = %+v", c)
		}
	}

	want := []string{"Bearer key-a", "Bearer key-b", "Bearer key-a"}
	if strings.Join(auths, ",") != strings.Join(want, ",") {
		t.Errorf("Authorization headers = %v, want %v", auths, want)
	}
}

func TestOpenAIBackend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("key")
	cfg.BaseURL = srv.URL + "/v1"
	b, _ := NewOpenAIBackendWithConfigs([]openai.ClientConfig{cfg}, "", 0.3)

	if _, err := b.Complete(context.Background(), "x", 10); err == nil {
		t.Error("Expected error for rate limited response")
	}
}

func TestNewGeminiBackend_NoAPIKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), "", "", 0.3)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "babelfish", BackendConfig{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

func TestFallbackBackend(t *testing.T) {
	failing := &fakeBackend{fn: func(int, string) (Completion, error) {
		return Completion{}, errors.New("down")
	}}
	working := &fakeBackend{fn: func(int, string) (Completion, error) {
		return Completion{Text: "ok", Tokens: 2}, nil
	}}

	got, err := NewFallbackBackend(failing, working, nil).Complete(context.Background(), "p", 10)
	if err != nil || got.Text != "ok" {
		t.Errorf("Complete() = %+v, %v", got, err)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls = %d, %d", failing.calls, working.calls)
	}

	working.calls = 0
	if _, err := NewFallbackBackend(working, failing, nil).Complete(context.Background(), "p", 10); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if working.calls != 1 || failing.calls != 1 {
		t.Error("Fallback must not be called when primary succeeds")
	}

	if _, err := NewFallbackBackend(failing, failing, nil).Complete(context.Background(), "p", 10); err == nil {
		t.Error("Expected error when both providers fail")
	}
}

func TestTranslate_OpenAIIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	backend, err := NewOpenAIBackend([]string{apiKey}, "", 0.3)
	if err != nil {
		t.Fatalf("NewOpenAIBackend failed: %v", err)
	}
	client := NewClient(backend, nil, DefaultOptions(), nil)

	got := client.Translate(context.Background(), "客户工作单位需要电话核实")
	if got.Failed() {
		t.Fatalf("Translate failed: %v", got.Err)
	}
	t.Logf("Translation: %s", got.Text)
}

func TestTranslate_GeminiIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	backend, err := NewGeminiBackend(context.Background(), apiKey, "", 0.3)
	if err != nil {
		t.Fatalf("NewGeminiBackend failed: %v", err)
	}
	client := NewClient(backend, nil, DefaultOptions(), nil)

	got := client.Translate(context.Background(), "客户工作单位需要电话核实")
	if got.Failed() {
		t.Fatalf("Translate failed: %v", got.Err)
	}
	t.Logf("Translation: %s", got.Text)
}
