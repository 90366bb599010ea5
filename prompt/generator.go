// Package prompt builds the model prompt for a reasoning round. The generated
// text combines the system instructions, the wire-format contract the model
// must emit, the current tool catalog and a truncated slice of conversation
// history.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/reagent/core"
)

const systemInstructions = `You are a reasoning assistant that solves tasks step by step.
For every turn, think about the request, decide whether a tool is needed and
respond with a single JSON document matching the format below. Do not include
any text outside the JSON document.`

const wireFormat = `{
  "thought": {
    "reasoning": "why you are taking this step",
    "plan": "what you will do next"
  },
  "action": {
    "tool": "tool_name",
    "params": {"param": "value"}
  }
}

Rules:
- "thought.reasoning" and "thought.plan" are always required.
- Include "action" only when a tool from the catalog should be executed.
- Omit "action" entirely when you can answer directly.
- Use only tools listed in the catalog, with their exact names and parameters.`

// Options configures a Generator.
type Options struct {
	// MaxHistory bounds how many trailing history messages are included in
	// the prompt. Zero or negative falls back to the default.
	MaxHistory int
	// ExtraInstructions is appended verbatim after the system instructions.
	ExtraInstructions string
}

// Generator is the default core.PromptGenerator. It is stateless and safe for
// concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator creates a Generator with optional overrides.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := Options{MaxHistory: 10}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = 10
	}
	return &Generator{opts: opts}
}

// GeneratePrompt implements core.PromptGenerator.
func (g *Generator) GeneratePrompt(input string, tools []core.ToolDefinition, history []core.Message) string {
	var b strings.Builder

	b.WriteString(systemInstructions)
	if g.opts.ExtraInstructions != "" {
		b.WriteString("\n\n")
		b.WriteString(g.opts.ExtraInstructions)
	}

	b.WriteString("\n\nResponse format:\n")
	b.WriteString(wireFormat)

	b.WriteString("\n\nAvailable tools:\n")
	b.WriteString(renderCatalog(tools))

	if len(history) > 0 {
		b.WriteString("\nConversation history:\n")
		b.WriteString(renderHistory(history, g.opts.MaxHistory))
	}

	b.WriteString("\nUser request: ")
	b.WriteString(input)

	return b.String()
}

func renderCatalog(tools []core.ToolDefinition) string {
	if len(tools) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, t := range tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			schema = []byte("{}")
		}
		fmt.Fprintf(&b, "- %s: %s\n  parameters: %s\n", t.Name, t.Description, schema)
	}
	return b.String()
}

func renderHistory(history []core.Message, maxMessages int) string {
	if len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

var _ core.PromptGenerator = (*Generator)(nil)
