package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MemoryType classifies a memory entry.
type MemoryType string

// Built-in memory types. Providers accept arbitrary values; these cover the
// types the library itself writes.
const (
	MemoryTypeThoughtProcess MemoryType = "THOUGHT_PROCESS"
	MemoryTypeConversation   MemoryType = "CONVERSATION"
	MemoryTypeFact           MemoryType = "FACT"
	MemoryTypeTask           MemoryType = "TASK"
)

// MemoryContent is the content of a memory entry: either plain text or an
// arbitrary structured value. Modeled as a closed sum so scoring and
// serialization can switch exhaustively instead of runtime type-sniffing.
type MemoryContent interface {
	// Raw returns the underlying value (string or structured).
	Raw() any
	// String returns the text used for matching and scoring; structured
	// values are JSON-stringified.
	String() string

	isMemoryContent()
}

// TextContent is plain string content. Round-trips through JSON as a bare
// string.
type TextContent struct {
	Text string
}

func (c TextContent) isMemoryContent() {}

// Raw returns the text value.
func (c TextContent) Raw() any { return c.Text }

// String returns the text value.
func (c TextContent) String() string { return c.Text }

// MarshalJSON encodes the content as a JSON string.
func (c TextContent) MarshalJSON() ([]byte, error) { return json.Marshal(c.Text) }

// StructuredContent wraps an arbitrary JSON-serializable value.
type StructuredContent struct {
	Value any
}

func (c StructuredContent) isMemoryContent() {}

// Raw returns the wrapped value.
func (c StructuredContent) Raw() any { return c.Value }

// String returns the JSON form of the wrapped value.
func (c StructuredContent) String() string {
	b, err := json.Marshal(c.Value)
	if err != nil {
		return fmt.Sprintf("%v", c.Value)
	}
	return string(b)
}

// MarshalJSON encodes the wrapped value directly.
func (c StructuredContent) MarshalJSON() ([]byte, error) { return json.Marshal(c.Value) }

// ContentOf wraps v in the appropriate MemoryContent variant: strings become
// TextContent, everything else StructuredContent. Values that already are a
// MemoryContent pass through unchanged.
func ContentOf(v any) MemoryContent {
	switch c := v.(type) {
	case MemoryContent:
		return c
	case string:
		return TextContent{Text: c}
	default:
		return StructuredContent{Value: c}
	}
}

// DecodeContent converts a raw JSON document into the matching content
// variant: JSON strings become TextContent, everything else structured.
func DecodeContent(raw json.RawMessage) (MemoryContent, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return TextContent{Text: s}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode memory content: %w", err)
	}
	return StructuredContent{Value: v}, nil
}

// MemoryEntry is one durable, taggable, user-scoped context record.
// ID and Timestamp are assigned by the provider on store and are immutable;
// only Update may mutate the remaining fields afterwards.
type MemoryEntry struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Type       MemoryType     `json:"type"`
	Content    MemoryContent  `json:"content"`
	Tags       []string       `json:"tags,omitempty"`
	Importance float64        `json:"importance,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// UnmarshalJSON decodes an entry, resolving the content sum type from the
// raw JSON shape.
func (e *MemoryEntry) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID         string          `json:"id"`
		UserID     string          `json:"userId"`
		Type       MemoryType      `json:"type"`
		Content    json.RawMessage `json:"content"`
		Tags       []string        `json:"tags"`
		Importance float64         `json:"importance"`
		Metadata   map[string]any  `json:"metadata"`
		Timestamp  time.Time       `json:"timestamp"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	content, err := DecodeContent(w.Content)
	if err != nil {
		return err
	}
	*e = MemoryEntry{
		ID:         w.ID,
		UserID:     w.UserID,
		Type:       w.Type,
		Content:    content,
		Tags:       w.Tags,
		Importance: w.Importance,
		Metadata:   w.Metadata,
		Timestamp:  w.Timestamp,
	}
	return nil
}

// EntryUpdate carries the mutable subset of an entry for Update. Nil fields
// are left unchanged.
type EntryUpdate struct {
	Type       *MemoryType
	Content    MemoryContent
	Tags       []string
	Importance *float64
	Metadata   map[string]any
}

// SortField selects the key used to order search results.
type SortField string

// Supported sort keys.
const (
	SortByTimestamp  SortField = "timestamp"
	SortByImportance SortField = "importance"
)

// SortOrder selects the direction used to order search results.
type SortOrder string

// Supported sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchOptions filters, sorts and paginates a memory search. Zero values
// mean "no constraint"; the default sort is timestamp descending.
type SearchOptions struct {
	UserID        string
	Types         []MemoryType
	Tags          []string
	StartDate     *time.Time
	EndDate       *time.Time
	MinImportance *float64
	Metadata      map[string]any
	Query         string
	ExactMatch    bool
	SortBy        SortField
	SortOrder     SortOrder
	Offset        int
	Limit         int
}

// SearchResult is one page of filtered entries. Total counts matches before
// pagination; HasMore reports whether offset+limit < total.
type SearchResult struct {
	Entries []MemoryEntry
	Total   int
	HasMore bool
}

// SummaryOptions overrides the defaults of GetSummary (10 entries, sorted by
// importance descending).
type SummaryOptions struct {
	Limit  int
	SortBy SortField
}

// MemoryProvider defines persistence + retrieval for agent context. All
// operations other than Initialize/Cleanup fail with ErrNotInitialized when
// called before Initialize. Implementations must support concurrent reads
// and serialize mutations so ids stay unique and updates are not lost.
type MemoryProvider interface {
	Initialize(ctx context.Context) error
	Cleanup(ctx context.Context) error

	// Store persists a new entry, assigning ID and Timestamp. Any caller
	// supplied values for those fields are ignored.
	Store(ctx context.Context, entry MemoryEntry) (*MemoryEntry, error)

	// StoreThoughtProcess persists a reasoning record as a THOUGHT_PROCESS
	// entry tagged "thought_process" with importance 0.5 unless the metadata
	// carries an "importance" override.
	StoreThoughtProcess(ctx context.Context, tp *ThoughtProcess, userID string, metadata map[string]any) (*MemoryEntry, error)

	Search(ctx context.Context, opts SearchOptions) (*SearchResult, error)

	// GetByID returns the entry or nil when absent.
	GetByID(ctx context.Context, id string) (*MemoryEntry, error)

	// Update mutates the entry's mutable fields, returning NotFoundError
	// when the id is unknown.
	Update(ctx context.Context, id string, update EntryUpdate) (*MemoryEntry, error)

	// Delete removes the entry, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	ClearUserMemories(ctx context.Context, userID string) error

	// GetSummary renders the user's top entries grouped by type, content
	// truncated to 100 characters.
	GetSummary(ctx context.Context, userID string, opts *SummaryOptions) (string, error)

	// GetRelevantMemories returns up to limit entries of the user ranked by
	// relevance to the query (substring and keyword hits weighted by
	// importance). Limit defaults to 5 when <= 0.
	GetRelevantMemories(ctx context.Context, query, userID string, limit int) ([]MemoryEntry, error)
}
