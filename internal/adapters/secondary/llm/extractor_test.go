package llm

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	answer  string
	err     error
	block   bool
	prompts []string
}

func (f *fakeModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}

	if f.block {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if f.err != nil {
		return nil, f.err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.answer}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestExtractor_Extract(t *testing.T) {
	model := &fakeModel{answer: "1. Use early returns."}
	extractor := NewExtractorWithModel(model, time.Second)

	answer, err := extractor.Extract(context.Background(), "summarize this")

	require.NoError(t, err)
	assert.Equal(t, "1. Use early returns.", answer)
	assert.Equal(t, []string{"summarize this"}, model.prompts)
}

func TestExtractor_EmptyAnswer(t *testing.T) {
	extractor := NewExtractorWithModel(&fakeModel{answer: "  \n"}, time.Second)

	_, err := extractor.Extract(context.Background(), "prompt")

	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestExtractor_Timeout(t *testing.T) {
	extractor := NewExtractorWithModel(&fakeModel{block: true}, 10*time.Millisecond)

	_, err := extractor.Extract(context.Background(), "prompt")

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.True(t, domain.IsRetryable(err))
}

func TestExtractor_Cancelled(t *testing.T) {
	extractor := NewExtractorWithModel(&fakeModel{block: true}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx, "prompt")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_MissingAPIKey(t *testing.T) {
	extractor := NewExtractor(Options{Provider: ProviderAnthropic})

	_, err := extractor.Extract(context.Background(), "prompt")

	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestExtractor_UnsupportedProvider(t *testing.T) {
	extractor := NewExtractor(Options{Provider: "vertafore", APIKey: "k"})

	_, err := extractor.Extract(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "rate limited", err: errors.New("API returned unexpected status code: 429"), kind: domain.ErrQuota},
		{name: "quota", err: errors.New("You exceeded your current quota"), kind: domain.ErrQuota},
		{name: "unauthorized", err: errors.New("status code: 401 Unauthorized"), kind: domain.ErrAuth},
		{name: "bad key", err: errors.New("Incorrect API key provided: invalid_api_key"), kind: domain.ErrAuth},
		{name: "deadline", err: context.DeadlineExceeded, kind: domain.ErrTimeout},
		{name: "empty", err: errors.New("empty response from model"), kind: domain.ErrParse},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, kind: domain.ErrNetwork},
		{name: "other", err: errors.New("status code: 500"), kind: domain.ErrAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.kind)
		})
	}
}
