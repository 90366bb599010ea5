package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/reagent/core"
)

// MockProvider is a deterministic in-memory core.ModelProvider useful for
// tests and examples. Responses are served in two ways: an ordered queue
// consumed call by call, and exact-prompt lookups registered via AddResponse.
// The queue takes precedence when non-empty.
type MockProvider struct {
	mu        sync.Mutex
	queue     []string
	responses map[string]string
	fallback  string
	calls     int
	prompts   []string
}

// MockOptions configures a MockProvider.
type MockOptions struct {
	// Fallback is returned when neither the queue nor a registered prompt
	// matches. Empty falls back to an echoing default.
	Fallback string
}

// NewMockProvider constructs an empty MockProvider.
func NewMockProvider(optFns ...func(o *MockOptions)) *MockProvider {
	opts := MockOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MockProvider{
		responses: make(map[string]string),
		fallback:  opts.Fallback,
	}
}

// AddResponse registers a canned completion for an exact prompt.
func (m *MockProvider) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends completions to the ordered queue. Queued responses are
// served before prompt lookups, one per GenerateResponse call.
func (m *MockProvider) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// GenerateResponse implements core.ModelProvider.
func (m *MockProvider) GenerateResponse(ctx context.Context, prompt string, history []core.Message) (*core.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.prompts = append(m.prompts, prompt)

	var content string
	switch {
	case len(m.queue) > 0:
		content = m.queue[0]
		m.queue = m.queue[1:]
	case m.responses[prompt] != "":
		content = m.responses[prompt]
	case m.fallback != "":
		content = m.fallback
	default:
		content = fmt.Sprintf("Mock response to: %s", prompt)
	}

	return &core.ModelResponse{Content: content, TokenCount: len(content) / 4}, nil
}

// Calls returns how many times GenerateResponse has been invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of all prompts seen so far, in call order.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

var _ core.ModelProvider = (*MockProvider)(nil)
