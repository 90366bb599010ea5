package core

import "context"

// InputSchema is the JSON-Schema-like parameter contract of a tool. Only the
// subset actually validated (required fields, property types) needs to be
// populated.
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// ToolDefinition declaratively describes an externally executed capability.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolResponse is the normalized outcome of a tool execution.
type ToolResponse struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ToolManager exposes the catalog of available tools and executes them. The
// concrete manager (process lifecycle, wire protocol, timeouts) lives outside
// this library; tool.Registry provides an in-process reference.
type ToolManager interface {
	GetAvailableTools(ctx context.Context) ([]ToolDefinition, error)
	ExecuteTool(ctx context.Context, name string, params map[string]any) (ToolResponse, error)
}
