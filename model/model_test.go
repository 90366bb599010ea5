package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
)

func TestMockProvider_QueueTakesPrecedence(t *testing.T) {
	p := NewMockProvider()
	p.AddResponse("hello", "registered")
	p.Enqueue("first", "second")

	r1, err := p.GenerateResponse(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", r1.Content)

	r2, err := p.GenerateResponse(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", r2.Content)

	// Queue drained; exact-prompt lookup applies.
	r3, err := p.GenerateResponse(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "registered", r3.Content)
}

func TestMockProvider_FallbackAndTracking(t *testing.T) {
	p := NewMockProvider(func(o *MockOptions) { o.Fallback = "canned" })

	r, err := p.GenerateResponse(context.Background(), "anything", []core.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "canned", r.Content)

	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, []string{"anything"}, p.Prompts())
}

func TestMockProvider_DefaultEcho(t *testing.T) {
	p := NewMockProvider()
	r, err := p.GenerateResponse(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Contains(t, r.Content, "ping")
}

func TestMockProvider_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewMockProvider()
	_, err := p.GenerateResponse(ctx, "ping", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
