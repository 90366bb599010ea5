// Package openai provides a model provider backed by the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/reagent/core"
)

// Options configure the OpenAI provider. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Provider wraps the OpenAI Chat Completions API behind core.ModelProvider.
type Provider struct {
	client *openai.Client
	opts   Options
}

// NewProvider creates a provider using the official client with credentials
// from the environment.
func NewProvider(optFns ...func(o *Options)) *Provider {
	client := openai.NewClient()
	return NewProviderFromClient(&client, optFns...)
}

// NewProviderFromClient creates a provider from an existing client.
func NewProviderFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// GenerateResponse implements core.ModelProvider. History is replayed as
// chat messages ahead of the prompt, which is sent as the final user turn.
func (p *Provider) GenerateResponse(ctx context.Context, prompt string, history []core.Message) (*core.ModelResponse, error) {
	messages := buildMessages(prompt, history)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               p.opts.Model,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxCompletionTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &core.ModelResponse{
		Content:    resp.Choices[0].Message.Content,
		TokenCount: int(resp.Usage.TotalTokens),
	}, nil
}

func buildMessages(prompt string, history []core.Message) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))
	return messages
}

var _ core.ModelProvider = (*Provider)(nil)
