package testutil

import (
	"time"

	"github.com/hupe1980/reagent/core"
)

// EntryBuilder provides a fluent helper for constructing memory entries in
// tests. Example:
//
//	e := NewEntryBuilder().User("alice").Text("likes espresso").Importance(0.9).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EntryBuilder struct {
	entry core.MemoryEntry
}

// NewEntryBuilder creates a builder with default user "user-1" and type FACT.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{entry: core.MemoryEntry{
		UserID: "user-1",
		Type:   core.MemoryTypeFact,
	}}
}

// User sets the owning user id (chainable).
func (b *EntryBuilder) User(id string) *EntryBuilder { b.entry.UserID = id; return b }

// Type sets the memory type (chainable).
func (b *EntryBuilder) Type(t core.MemoryType) *EntryBuilder { b.entry.Type = t; return b }

// Text sets plain string content (chainable).
func (b *EntryBuilder) Text(t string) *EntryBuilder {
	b.entry.Content = core.TextContent{Text: t}
	return b
}

// Structured sets structured content (chainable).
func (b *EntryBuilder) Structured(v any) *EntryBuilder {
	b.entry.Content = core.StructuredContent{Value: v}
	return b
}

// Tags sets the tag list (chainable).
func (b *EntryBuilder) Tags(tags ...string) *EntryBuilder { b.entry.Tags = tags; return b }

// Importance sets the importance weight (chainable).
func (b *EntryBuilder) Importance(v float64) *EntryBuilder { b.entry.Importance = v; return b }

// Metadata sets a metadata key (chainable).
func (b *EntryBuilder) Metadata(key string, value any) *EntryBuilder {
	if b.entry.Metadata == nil {
		b.entry.Metadata = map[string]any{}
	}
	b.entry.Metadata[key] = value
	return b
}

// Timestamp sets an explicit timestamp. Providers ignore caller-supplied
// timestamps on Store; this is for building expected values.
func (b *EntryBuilder) Timestamp(t time.Time) *EntryBuilder { b.entry.Timestamp = t; return b }

// Build returns the constructed entry.
func (b *EntryBuilder) Build() core.MemoryEntry {
	if b.entry.Content == nil {
		b.entry.Content = core.TextContent{Text: "test content"}
	}
	return b.entry
}
