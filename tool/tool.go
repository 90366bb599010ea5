// Package tool implements the tool-calling subsystem: an in-process
// ToolManager (Registry) for locally defined tools and the Invoker that
// validates model-requested actions against a tool's parameter schema before
// dispatching execution. No error escapes the Invoker boundary as a panic or
// raw exception; failures are normalized into core.ToolResponse values or
// typed validation errors.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/reagent/core"
)

// Tool is a locally registered capability. Implementations should provide
// clear names (snake_case recommended), a description the model can act on
// and a schema covering at least the required fields.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does, provided to the model to guide tool selection.
	Description() string

	// InputSchema returns the parameter contract used for validation and
	// model guidance.
	InputSchema() core.InputSchema

	// Call executes the tool with already-validated arguments.
	Call(ctx context.Context, params map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// ToolNotFoundError reports an action naming a tool absent from the catalog.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found in catalog", e.Tool)
}

// MissingParametersError reports required schema fields absent from an
// action's params.
type MissingParametersError struct {
	Tool   string
	Fields []string
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("tool %q missing required parameters: %v", e.Tool, e.Fields)
}
