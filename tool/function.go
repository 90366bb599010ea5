package tool

import (
	"context"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// registrable tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates supplied arguments against that schema before execution
//   - Normalizes failures so callers receive *ToolError with consistent
//     codes (VALIDATION_ERROR for schema mismatch, EXECUTION_ERROR for
//     function failures; custom codes preserved if the function returns
//     *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is
// safe for concurrent use by multiple goroutines.
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// Schema describing accepted arguments
	schema core.InputSchema
	// User supplied implementation
	fn func(ctx context.Context, params map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  core.InputSchema{
//	    Type: "object",
//	    Properties: map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    Required: []string{"a", "b"},
//	  },
//	  func(ctx context.Context, params map[string]any) (any, error) {
//	    return params["a"].(float64) + params["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	schema core.InputSchema,
	fn func(ctx context.Context, params map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection, equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type SumArgs struct {
//	  A float64 `json:"a" description:"First addend"`
//	  B float64 `json:"b" description:"Second addend"`
//	}
//
//	sumTool := NewFunctionToolFromStruct("calculate_sum", "Calculate the sum", SumArgs{}, sumFn)
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, params map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in catalog lookups and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// InputSchema returns the schema describing expected arguments.
func (t *FunctionTool) InputSchema() core.InputSchema { return t.schema }

// Call validates params against the declared schema then invokes the
// underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
func (t *FunctionTool) Call(ctx context.Context, params map[string]any) (any, error) {
	if err := util.ValidateParameters(params, t.schema); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: "parameter validation failed: " + err.Error(),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(ctx, params)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return result, nil
}

var _ Tool = (*FunctionTool)(nil)
