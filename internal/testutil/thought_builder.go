package testutil

import "github.com/hupe1980/reagent/core"

// ThoughtBuilder provides a fluent helper for constructing reasoning records
// in tests. Example:
//
//	tp := NewThoughtBuilder().Reasoning("check the weather").Action("weather", map[string]any{"city": "Berlin"}).Build()
type ThoughtBuilder struct {
	tp core.ThoughtProcess
}

// NewThoughtBuilder creates a builder with minimal valid thought fields.
func NewThoughtBuilder() *ThoughtBuilder {
	return &ThoughtBuilder{tp: core.ThoughtProcess{
		Thought: core.Thought{Reasoning: "test reasoning", Plan: "test plan"},
	}}
}

// Reasoning sets thought.reasoning (chainable).
func (b *ThoughtBuilder) Reasoning(r string) *ThoughtBuilder { b.tp.Thought.Reasoning = r; return b }

// Plan sets thought.plan (chainable).
func (b *ThoughtBuilder) Plan(p string) *ThoughtBuilder { b.tp.Thought.Plan = p; return b }

// Action sets the requested tool call (chainable).
func (b *ThoughtBuilder) Action(tool string, params map[string]any) *ThoughtBuilder {
	b.tp.Action = &core.Action{Tool: tool, Params: params}
	return b
}

// Observation sets the tool result (chainable).
func (b *ThoughtBuilder) Observation(result any) *ThoughtBuilder {
	b.tp.Observation = &core.Observation{Result: result}
	return b
}

// NextStep sets the continuation plan (chainable).
func (b *ThoughtBuilder) NextStep(plan string) *ThoughtBuilder {
	b.tp.NextStep = &core.NextStep{Plan: plan}
	return b
}

// Error sets an error_handling block with the given message (chainable).
func (b *ThoughtBuilder) Error(msg string) *ThoughtBuilder {
	b.tp.ErrorHandling = &core.ErrorHandling{Error: msg}
	return b
}

// Build returns a pointer to the constructed record.
func (b *ThoughtBuilder) Build() *core.ThoughtProcess {
	tp := b.tp
	return &tp
}
