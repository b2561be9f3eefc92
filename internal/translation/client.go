package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FailurePrefix marks text that could not be translated.
const FailurePrefix = "[Translation failed] "

// Result is the outcome of translating one field. Text is never empty for
// non-empty input: on failure it holds the original text behind FailurePrefix
// and Err says why.
type Result struct {
	Text   string
	Tokens int
	Cached bool
	Err    error
}

// Failed reports whether Text is a failure marker.
func (r Result) Failed() bool {
	return r.Err != nil
}

// TokenRecorder receives the tokens billed for each successful call.
type TokenRecorder interface {
	AddTokens(n int)
}

// Options tune a Client.
type Options struct {
	SourceLanguage string
	TargetLanguage string
	MaxTokens      int

	// Retries is the number of extra attempts after a failed call.
	Retries    int
	BackoffMin time.Duration
	BackoffMax time.Duration

	// Pause is the minimum spacing between two calls. Zero disables pacing.
	Pause time.Duration

	// BreakerFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Cache reuses the translation of identical text within a run.
	Cache bool
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		SourceLanguage:  "Chinese",
		TargetLanguage:  "English",
		MaxTokens:       1000,
		Retries:         2,
		BackoffMin:      500 * time.Millisecond,
		BackoffMax:      5 * time.Second,
		Pause:           500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Client translates single fields. It is not safe for concurrent use.
type Client struct {
	backend  Backend
	recorder TokenRecorder
	opts     Options
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	cache    *Cache
	logger   *zap.Logger
}

// NewClient wraps backend. recorder may be nil.
func NewClient(backend Backend, recorder TokenRecorder, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}

	limit := rate.Inf
	if opts.Pause > 0 {
		limit = rate.Every(opts.Pause)
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = DefaultOptions().BreakerFailures
	}

	c := &Client{
		backend:  backend,
		recorder: recorder,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
	if opts.Cache {
		c.cache = NewCache()
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    backend.Name(),
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("translation circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Prompt builds the instruction sent for text.
func (c *Client) Prompt(text string) string {
	return fmt.Sprintf("Translate the following %s credit review content into %s. "+
		"Preserve financial and underwriting terminology. "+
		"Respond with only the translated text, nothing else.\n\n%s",
		c.opts.SourceLanguage, c.opts.TargetLanguage, text)
}

// Translate returns the translation of text. Empty or whitespace-only text
// returns an empty Result without calling the service.
func (c *Client) Translate(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(text); ok {
			return Result{Text: cached, Cached: true}
		}
	}

	completion, err := c.complete(ctx, c.Prompt(text))
	if err != nil {
		return Result{Text: FailurePrefix + text, Err: err}
	}

	// Billed even when the answer turns out empty.
	if c.recorder != nil {
		c.recorder.AddTokens(completion.Tokens)
	}

	translated := strings.TrimSpace(completion.Text)
	if translated == "" {
		return Result{Text: FailurePrefix + text, Tokens: completion.Tokens, Err: ErrEmptyResponse}
	}
	if c.cache != nil {
		c.cache.Add(text, translated)
	}

	return Result{Text: translated, Tokens: completion.Tokens}
}

func (c *Client) complete(ctx context.Context, prompt string) (Completion, error) {
	b := &backoff.Backoff{
		Min:    c.opts.BackoffMin,
		Max:    c.opts.BackoffMax,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Completion{}, err
		}

		v, err := c.breaker.Execute(func() (interface{}, error) {
			return c.backend.Complete(ctx, prompt, c.opts.MaxTokens)
		})
		if err == nil {
			return v.(Completion), nil
		}

		if attempt >= c.opts.Retries || !retryable(ctx, err) {
			return Completion{}, err
		}

		delay := b.Duration()
		c.logger.Debug("retrying translation",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests)
}
