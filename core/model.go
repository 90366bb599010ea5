package core

import "context"

// Message is one turn of prior conversation handed to the model provider.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ModelResponse is a completed generation.
type ModelResponse struct {
	Content    string `json:"content"`
	TokenCount int    `json:"tokenCount"`
}

// ModelProvider is the stateless request/response boundary to a language
// model. Concrete vendor adapters live under the model package.
type ModelProvider interface {
	GenerateResponse(ctx context.Context, prompt string, history []Message) (*ModelResponse, error)
}

// PromptGenerator combines system instructions, the tool catalog and
// truncated history into the prompt text sent to the model.
type PromptGenerator interface {
	GeneratePrompt(input string, tools []ToolDefinition, history []Message) string
}
