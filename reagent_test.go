package reagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/tool"
)

func TestReagent_EndToEnd(t *testing.T) {
	ctx := context.Background()

	provider := model.NewMockProvider()
	provider.Enqueue(
		`{
  "thought": {"reasoning": "need the echo tool", "plan": "call echo"},
  "action": {"tool": "echo", "params": {"text": "hello"}}
}`,
		`{"thought":{"reasoning":"echoed","plan":"wrap up"},"next_step":{"plan":"finish"}}`,
		`{"thought":{"reasoning":"the tool echoed hello","plan":"report to the user"}}`,
	)

	agent, err := New(provider)
	require.NoError(t, err)
	defer agent.Close(ctx) //nolint:errcheck

	agent.RegisterTool(tool.NewFunctionTool(
		"echo",
		"Echoes text",
		core.InputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{"type": "string"},
			},
			Required: []string{"text"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			return params["text"], nil
		},
	))

	result := agent.Process(ctx, "say hello", "u1", nil)
	require.Len(t, result.ToolResults, 1)
	assert.Equal(t, "hello", result.ToolResults[0].Data)
	assert.Contains(t, result.Content, "echoed hello")

	// Memory defaults on and records the session.
	require.NotNil(t, agent.Memory())
}

func TestReagent_DisableMemory(t *testing.T) {
	agent, err := New(model.NewMockProvider(), func(o *Options) { o.DisableMemory = true })
	require.NoError(t, err)
	assert.Nil(t, agent.Memory())
	require.NoError(t, agent.Close(context.Background()))
}

func TestReagent_CustomToolManagerForbidsRegisterTool(t *testing.T) {
	reg := tool.NewRegistry()
	agent, err := New(model.NewMockProvider(), func(o *Options) { o.ToolManager = reg })
	require.NoError(t, err)
	assert.Panics(t, func() { agent.RegisterTool(nil) })
}
