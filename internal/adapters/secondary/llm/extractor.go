package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/cohere"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderCohere    Provider = "cohere"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.2
)

// Options configures an Extractor.
type Options struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Extractor sends a prompt to an LLM and returns its text answer.
type Extractor struct {
	opts Options

	once  sync.Once
	model llms.Model
	err   error
}

// NewExtractor creates an Extractor. The provider client is built on first use.
func NewExtractor(opts Options) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Extractor{opts: opts}
}

// NewExtractorWithModel creates an Extractor around an existing model.
func NewExtractorWithModel(model llms.Model, timeout time.Duration) *Extractor {
	e := NewExtractor(Options{Timeout: timeout})
	e.once.Do(func() { e.model = model })

	return e
}

// Extract returns the model's answer to prompt.
func (e *Extractor) Extract(ctx context.Context, prompt string) (string, error) {
	model, err := e.load()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	start := time.Now()

	answer, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", classify(err)
	}

	log.Debug().
		Str("provider", string(e.opts.Provider)).
		Dur("took", time.Since(start)).
		Int("prompt_chars", len(prompt)).
		Int("answer_chars", len(answer)).
		Msg("llm answered")

	if strings.TrimSpace(answer) == "" {
		return "", &domain.Error{Kind: domain.ErrParse, Resource: "llm response", Body: "empty answer"}
	}

	return answer, nil
}

func (e *Extractor) load() (llms.Model, error) {
	e.once.Do(func() {
		e.model, e.err = newModel(e.opts)
	})

	return e.model, e.err
}

func newModel(opts Options) (llms.Model, error) {
	if opts.APIKey == "" && opts.Provider != ProviderOllama {
		return nil, fmt.Errorf("%w: no api key configured for %s", domain.ErrAuth, opts.Provider)
	}

	var (
		model llms.Model
		err   error
	)

	switch opts.Provider {
	case ProviderOpenAI, "":
		o := []openai.Option{openai.WithToken(opts.APIKey)}
		if opts.Model != "" {
			o = append(o, openai.WithModel(opts.Model))
		}
		if opts.BaseURL != "" {
			o = append(o, openai.WithBaseURL(opts.BaseURL))
		}
		model, err = openai.New(o...)
	case ProviderAnthropic:
		o := []anthropic.Option{anthropic.WithToken(opts.APIKey)}
		if opts.Model != "" {
			o = append(o, anthropic.WithModel(opts.Model))
		}
		if opts.BaseURL != "" {
			o = append(o, anthropic.WithBaseURL(opts.BaseURL))
		}
		model, err = anthropic.New(o...)
	case ProviderCohere:
		o := []cohere.Option{cohere.WithToken(opts.APIKey)}
		if opts.Model != "" {
			o = append(o, cohere.WithModel(opts.Model))
		}
		if opts.BaseURL != "" {
			o = append(o, cohere.WithBaseURL(opts.BaseURL))
		}
		model, err = cohere.New(o...)
	case ProviderOllama:
		var o []ollama.Option
		if opts.Model != "" {
			o = append(o, ollama.WithModel(opts.Model))
		}
		if opts.BaseURL != "" {
			o = append(o, ollama.WithServerURL(opts.BaseURL))
		}
		model, err = ollama.New(o...)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", opts.Provider, err)
	}

	return model, nil
}

// classify maps provider errors onto the domain taxonomy. Providers report
// HTTP failures as plain strings, so matching is textual.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	const resource = "llm request"
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.Error{Kind: domain.ErrTimeout, Resource: resource, Err: err}
	case containsAny(msg, "429", "quota", "rate limit", "rate_limit"):
		return &domain.Error{Kind: domain.ErrQuota, Resource: resource, Err: err}
	case containsAny(msg, "401", "403", "unauthorized", "invalid api key", "invalid_api_key", "authentication"):
		return &domain.Error{Kind: domain.ErrAuth, Resource: resource, Err: err}
	case containsAny(msg, "empty response", "no content"):
		return &domain.Error{Kind: domain.ErrParse, Resource: resource, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &domain.Error{Kind: domain.ErrTimeout, Resource: resource, Err: err}
		}

		return &domain.Error{Kind: domain.ErrNetwork, Resource: resource, Err: err}
	}

	return &domain.Error{Kind: domain.ErrAPI, Resource: resource, Err: err}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
