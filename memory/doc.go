// Package memory contains concrete MemoryProvider implementations. The
// provider interface and entry types reside in the core package. Import
// github.com/hupe1980/reagent/core and depend on core.MemoryProvider in your
// code; select an implementation (the in-memory reference store or the
// sqlite-backed durable store) at wiring time.
//
// Both implementations share one filter/score pipeline so search, relevance
// ranking and summaries behave identically regardless of backend.
package memory
