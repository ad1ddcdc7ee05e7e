package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *OpenAIProvider {
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:       "test-key",
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	})
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k"})

	assert.Equal(t, "gpt-4o-mini", p.chatModel)
	assert.Equal(t, "text-embedding-3-small", p.embeddingModel)
	assert.Equal(t, 3, p.maxRetries)
	assert.Equal(t, 2*time.Second, p.initialDelay)
	assert.Equal(t, 2.0, p.backoffFactor)
}

func TestIsRetryable(t *testing.T) {
	p := newTestProvider()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			want: true,
		},
		{
			name: "internal server error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusInternalServerError},
			want: true,
		},
		{
			name: "bad gateway",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadGateway},
			want: true,
		},
		{
			name: "service unavailable",
			err:  &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable},
			want: true,
		},
		{
			name: "gateway timeout",
			err:  &openai.APIError{HTTPStatusCode: http.StatusGatewayTimeout},
			want: true,
		},
		{
			name: "bad request is not retryable",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			want: false,
		},
		{
			name: "unauthorized is not retryable",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized},
			want: false,
		},
		{
			name: "request error is retryable",
			err:  &openai.RequestError{HTTPStatusCode: 0, Err: errors.New("connection reset")},
			want: true,
		},
		{
			name: "embedding count mismatch is retryable",
			err:  fmt.Errorf("%w: got 0 vectors for 1 texts", errEmbeddingCountMismatch),
			want: true,
		},
		{
			name: "plain error is not retryable",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.isRetryable(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	p := newTestProvider()

	t.Run("api error keeps status code", func(t *testing.T) {
		cause := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
		err := p.wrapError("embedding", cause)

		var provErr *ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "embedding", provErr.Operation())
		assert.Equal(t, 429, provErr.StatusCode())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("plain error has no status", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := p.wrapError("chat_completion", cause)

		var provErr *ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, 0, provErr.StatusCode())
		assert.ErrorIs(t, err, cause)
	})
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	p := newTestProvider()

	calls := 0
	err := p.withRetry(context.Background(), func() error {
		calls++
		return errors.New("fatal")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesUntilSuccess(t *testing.T) {
	p := newTestProvider()

	calls := 0
	err := p.withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsRetries(t *testing.T) {
	p := newTestProvider()

	calls := 0
	err := p.withRetry(context.Background(), func() error {
		calls++
		return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestProviderErrorMessage(t *testing.T) {
	withStatus := NewProviderError("embedding", 502, "upstream died", nil)
	assert.Equal(t, "provider embedding failed (status 502): upstream died", withStatus.Error())

	withoutStatus := NewProviderError("embedding", 0, "no route", nil)
	assert.Equal(t, "provider embedding failed: no route", withoutStatus.Error())
}
