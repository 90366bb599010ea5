// Package anthropic provides a model provider backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/reagent/core"
)

// Options configures the Anthropic provider (model id, temperature, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Provider wraps the Anthropic Messages API behind core.ModelProvider.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// NewProvider creates a provider using the official client. The API key is
// read from the environment when not supplied.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewProviderFromClient creates a provider from an existing client.
func NewProviderFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// GenerateResponse implements core.ModelProvider. The prompt carries the
// full instructions for the round; history is replayed as alternating
// user/assistant messages ahead of it.
func (p *Provider) GenerateResponse(ctx context.Context, prompt string, history []core.Message) (*core.ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       p.opts.Model,
		Messages:    p.buildMessages(prompt, history),
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}

	if system := extractSystem(history); len(system) > 0 {
		params.System = system
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}

	return &core.ModelResponse{
		Content:    b.String(),
		TokenCount: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}

func (p *Provider) buildMessages(prompt string, history []core.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, msg := range history {
		if msg.Content == "" || msg.Role == "system" {
			continue
		}
		switch msg.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
	return messages
}

func extractSystem(history []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range history {
		if msg.Role == "system" && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

var _ core.ModelProvider = (*Provider)(nil)
