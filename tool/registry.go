package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
)

// Registry is an in-process core.ToolManager for locally defined tools. The
// concrete production manager (external tool servers, their lifecycle and
// wire protocol) lives outside this library; Registry makes the orchestrator
// usable without one.
//
// Concurrency: registration and execution may happen from multiple
// goroutines; the tool map is guarded by an RWMutex.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{tools: make(map[string]Tool), logger: opts.Logger}
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// RegisterTools adds multiple tools at once.
func (r *Registry) RegisterTools(tools ...Tool) {
	for _, t := range tools {
		r.Register(t)
	}
}

// Unregister removes a tool by name, reporting whether it was registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.tools[name]
	delete(r.tools, name)
	return exists
}

// GetAvailableTools implements core.ToolManager returning the catalog sorted
// by name for deterministic prompts.
func (r *Registry) GetAvailableTools(ctx context.Context) ([]core.ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]core.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, core.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// ExecuteTool implements core.ToolManager dispatching to the named tool. The
// result is wrapped in a ToolResponse; execution errors surface as Go errors
// so the Invoker can normalize them.
func (r *Registry) ExecuteTool(ctx context.Context, name string, params map[string]any) (core.ToolResponse, error) {
	r.mu.RLock()
	t, exists := r.tools[name]
	r.mu.RUnlock()
	if !exists {
		return core.ToolResponse{}, NewToolError(name, "tool is not registered", "NOT_REGISTERED")
	}

	result, err := t.Call(ctx, params)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return core.ToolResponse{}, toolErr
		}
		return core.ToolResponse{}, &ToolError{Tool: name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}

	return core.ToolResponse{
		Success:  true,
		Data:     result,
		Metadata: map[string]any{"tool": name},
	}, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ core.ToolManager = (*Registry)(nil)

// String implements fmt.Stringer for debugging.
func (r *Registry) String() string {
	return fmt.Sprintf("tool.Registry(%v)", r.Names())
}
