package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
)

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *flakyProvider) GenerateResponse(ctx context.Context, prompt string, history []core.Message) (*core.ModelResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("transient failure")
	}
	return &core.ModelResponse{Content: "ok", TokenCount: 2}, nil
}

func TestRetryProvider_ReturnsFirstSuccess(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	p := NewRetryProvider(inner, func(o *RetryOptions) {
		o.InitialInterval = time.Millisecond
		o.MaxRetries = 5
	})

	resp, err := p.GenerateResponse(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryProvider_ExhaustsBudget(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	p := NewRetryProvider(inner, func(o *RetryOptions) {
		o.InitialInterval = time.Millisecond
		o.MaxRetries = 2
	})

	_, err := p.GenerateResponse(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls) // first attempt plus two retries
}

func TestRetryProvider_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakyProvider{failures: 100}
	p := NewRetryProvider(inner, func(o *RetryOptions) {
		o.InitialInterval = 50 * time.Millisecond
		o.MaxRetries = 10
	})

	_, err := p.GenerateResponse(ctx, "prompt", nil)
	require.Error(t, err)
	assert.Less(t, inner.calls, 3)
}
