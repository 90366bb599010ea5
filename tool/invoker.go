package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/util"
	"github.com/hupe1980/reagent/logging"
)

// Invoker validates a model-requested action against the catalog exposed by
// a ToolManager and dispatches execution.
//
// Error semantics:
//
//	tool absent from catalog    -> *ToolNotFoundError (no dispatch)
//	required params missing     -> *MissingParametersError plus a structured
//	                               failure response (no dispatch)
//	manager returns an error    -> normalized {Success:false, Error} response
//	manager panics              -> recovered into the same normalized shape
//
// The Invoker applies no internal timeout; cancellation policy belongs to
// the ToolManager and the caller's context.
type Invoker struct {
	manager core.ToolManager
	logger  logging.Logger
}

// InvokerOptions configures an Invoker.
type InvokerOptions struct {
	Logger logging.Logger
}

// NewInvoker creates an Invoker backed by the given manager.
func NewInvoker(manager core.ToolManager, optFns ...func(o *InvokerOptions)) *Invoker {
	opts := InvokerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{manager: manager, logger: opts.Logger}
}

// Invoke looks the action's tool up in the currently available catalog,
// checks required fields and executes. The returned response is always well
// formed; the error return carries only the typed validation failures.
func (i *Invoker) Invoke(ctx context.Context, action *core.Action) (resp core.ToolResponse, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("tool.invoke.panic", "tool", action.Tool, "panic", fmt.Sprintf("%v", r))
			resp = core.ToolResponse{Success: false, Error: fmt.Sprintf("tool %s panicked: %v", action.Tool, r)}
			err = nil
		}
	}()

	def, found, lookupErr := i.lookup(ctx, action.Tool)
	if lookupErr != nil {
		return core.ToolResponse{Success: false, Error: lookupErr.Error()}, nil
	}
	if !found {
		i.logger.Warn("tool.invoke.not_found", "tool", action.Tool)
		return core.ToolResponse{}, &ToolNotFoundError{Tool: action.Tool}
	}

	if missing := util.MissingRequiredFields(def.InputSchema, action.Params); len(missing) > 0 {
		i.logger.Warn("tool.invoke.missing_params", "tool", action.Tool, "missing", strings.Join(missing, ","))
		resp := core.ToolResponse{
			Success: false,
			Error:   fmt.Sprintf("Missing required parameters: %s", strings.Join(missing, ", ")),
		}
		return resp, &MissingParametersError{Tool: action.Tool, Fields: missing}
	}

	result, execErr := i.manager.ExecuteTool(ctx, action.Tool, action.Params)
	if execErr != nil {
		i.logger.Error("tool.invoke.error", "tool", action.Tool, "error", execErr.Error())
		return core.ToolResponse{Success: false, Error: execErr.Error()}, nil
	}

	i.logger.Debug("tool.invoke.done", "tool", action.Tool, "success", result.Success, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (i *Invoker) lookup(ctx context.Context, name string) (core.ToolDefinition, bool, error) {
	tools, err := i.manager.GetAvailableTools(ctx)
	if err != nil {
		return core.ToolDefinition{}, false, fmt.Errorf("list tools: %w", err)
	}
	for _, def := range tools {
		if def.Name == name {
			return def, true, nil
		}
	}
	return core.ToolDefinition{}, false, nil
}
