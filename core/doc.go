// Package core defines the shared contracts of the reagent library: the
// structured reasoning record (ThoughtProcess) exchanged with language
// models, the durable memory model (MemoryEntry, MemoryProvider), the tool
// catalog contracts (ToolDefinition, ToolManager) and the external provider
// interfaces (ModelProvider, PromptGenerator).
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (sqlite stores, vendor SDK adapters, external tool servers) to be
// added without introducing dependency cycles.
package core
