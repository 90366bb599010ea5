// Package reagent provides a high-level façade over the reasoning
// orchestrator and its collaborators (model provider, tool registry, memory
// provider & logging) enabling quick construction of tool-using agents. Most
// applications interact with this package by:
//  1. Creating a Reagent via New() with a model provider (other services
//     default to in-memory implementations)
//  2. Registering one or more tools
//  3. Calling Process() per user request
//
// The façade delegates the loop to agent.Orchestrator while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable memory provider
// and a structured logger.
package reagent

import (
	"context"

	"github.com/hupe1980/reagent/agent"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/memory"
	"github.com/hupe1980/reagent/tool"
)

// Version of the reagent module.
const Version = "0.1.0"

// Options configures the Reagent instance.
type Options struct {
	// ToolManager executes requested tool calls. Defaults to an empty
	// in-process registry.
	ToolManager core.ToolManager

	// Memory persists reasoning records and serves retrieval. Defaults to
	// the in-memory provider. Set to nil explicitly via DisableMemory.
	Memory core.MemoryProvider

	// Prompts overrides the default prompt generator.
	Prompts core.PromptGenerator

	// MaxIterations bounds the reasoning rounds per invocation (default 3).
	MaxIterations int

	// Debug augments responses with in-session reasoning history.
	Debug bool

	// DisableMemory turns off persistence entirely.
	DisableMemory bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Reagent is the high-level façade aggregating the orchestrator and services.
type Reagent struct {
	opts         Options
	orchestrator *agent.Orchestrator
	registry     *tool.Registry
	memory       core.MemoryProvider
}

// New creates a Reagent around a model provider with optional overrides. Any
// unset service is initialized with an in-memory implementation. The memory
// provider is initialized as part of construction.
func New(model core.ModelProvider, optFns ...func(o *Options)) (*Reagent, error) {
	opts := Options{
		MaxIterations: 3,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var registry *tool.Registry
	if opts.ToolManager == nil {
		registry = tool.NewRegistry(func(ro *tool.RegistryOptions) { ro.Logger = opts.Logger })
		opts.ToolManager = registry
	}

	if opts.DisableMemory {
		opts.Memory = nil
	} else if opts.Memory == nil {
		opts.Memory = memory.NewInMemoryProvider()
	}
	if opts.Memory != nil {
		if err := opts.Memory.Initialize(context.Background()); err != nil {
			return nil, err
		}
	}

	orchestrator := agent.New(model, opts.ToolManager, func(ao *agent.Options) {
		ao.Memory = opts.Memory
		ao.Prompts = opts.Prompts
		ao.MaxIterations = opts.MaxIterations
		ao.Debug = opts.Debug
		ao.Logger = opts.Logger
	})

	return &Reagent{
		opts:         opts,
		orchestrator: orchestrator,
		registry:     registry,
		memory:       opts.Memory,
	}, nil
}

// RegisterTool adds a tool to the built-in registry. It panics when a custom
// ToolManager was supplied; register tools with that manager instead.
func (r *Reagent) RegisterTool(t tool.Tool) {
	if r.registry == nil {
		panic("reagent: RegisterTool requires the built-in registry; a custom ToolManager was supplied")
	}
	r.registry.Register(t)
}

// Process runs one reasoning session for input on behalf of userID.
func (r *Reagent) Process(ctx context.Context, input, userID string, history []core.Message) *agent.Result {
	return r.orchestrator.Process(ctx, input, userID, history)
}

// Memory exposes the configured memory provider (nil when disabled).
func (r *Reagent) Memory() core.MemoryProvider { return r.memory }

// Close flushes pending memory writes and releases provider resources.
func (r *Reagent) Close(ctx context.Context) error {
	r.orchestrator.Close()
	if r.memory != nil {
		return r.memory.Cleanup(ctx)
	}
	return nil
}
