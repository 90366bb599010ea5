package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/util"
)

// InMemoryProvider is the process-local reference MemoryProvider backed by a
// single map.
//
// Concurrency: reads take a shared lock, mutations an exclusive one, so ids
// stay unique and concurrent updates serialize (last write wins). Suitable
// for tests, demos and single-process agents; use SQLiteProvider when
// entries must survive restarts.
type InMemoryProvider struct {
	mu          sync.RWMutex
	entries     map[string]core.MemoryEntry
	initialized bool
}

// NewInMemoryProvider creates an uninitialized in-memory provider. Call
// Initialize before use.
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{}
}

// Initialize prepares the provider for use.
func (p *InMemoryProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		p.entries = make(map[string]core.MemoryEntry)
	}
	p.initialized = true
	return nil
}

// Cleanup drops all entries and returns the provider to its uninitialized
// state.
func (p *InMemoryProvider) Cleanup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	p.initialized = false
	return nil
}

// Store persists a new entry. ID and Timestamp are assigned here; caller
// supplied values are ignored.
func (p *InMemoryProvider) Store(ctx context.Context, entry core.MemoryEntry) (*core.MemoryEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}

	entry.ID = util.NewID()
	entry.Timestamp = time.Now().UTC()
	entry.Tags = cloneTags(entry.Tags)
	entry.Metadata = cloneMetadata(entry.Metadata)

	p.entries[entry.ID] = entry

	out := cloneEntry(entry)
	return &out, nil
}

// StoreThoughtProcess persists a reasoning record as a THOUGHT_PROCESS entry
// tagged "thought_process".
func (p *InMemoryProvider) StoreThoughtProcess(ctx context.Context, tp *core.ThoughtProcess, userID string, metadata map[string]any) (*core.MemoryEntry, error) {
	entry, err := newThoughtEntry(tp, userID, metadata)
	if err != nil {
		return nil, err
	}
	return p.Store(ctx, entry)
}

// Search runs the filter/sort/paginate pipeline over all stored entries.
func (p *InMemoryProvider) Search(ctx context.Context, opts core.SearchOptions) (*core.SearchResult, error) {
	entries, err := p.snapshot(func(core.MemoryEntry) bool { return true })
	if err != nil {
		return nil, err
	}
	return applySearch(entries, opts), nil
}

// GetByID returns a copy of the entry, or nil when absent.
func (p *InMemoryProvider) GetByID(ctx context.Context, id string) (*core.MemoryEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}
	entry, ok := p.entries[id]
	if !ok {
		return nil, nil
	}
	out := cloneEntry(entry)
	return &out, nil
}

// Update mutates the entry's mutable fields. ID and Timestamp are preserved.
func (p *InMemoryProvider) Update(ctx context.Context, id string, update core.EntryUpdate) (*core.MemoryEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}
	entry, ok := p.entries[id]
	if !ok {
		return nil, &core.NotFoundError{ID: id}
	}

	if update.Type != nil {
		entry.Type = *update.Type
	}
	if update.Content != nil {
		entry.Content = update.Content
	}
	if update.Tags != nil {
		entry.Tags = cloneTags(update.Tags)
	}
	if update.Importance != nil {
		entry.Importance = *update.Importance
	}
	if update.Metadata != nil {
		entry.Metadata = cloneMetadata(update.Metadata)
	}

	p.entries[id] = entry
	out := cloneEntry(entry)
	return &out, nil
}

// Delete removes the entry, reporting whether it existed.
func (p *InMemoryProvider) Delete(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return false, core.ErrNotInitialized
	}
	_, ok := p.entries[id]
	delete(p.entries, id)
	return ok, nil
}

// ClearUserMemories removes every entry belonging to the user.
func (p *InMemoryProvider) ClearUserMemories(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return core.ErrNotInitialized
	}
	for id, e := range p.entries {
		if e.UserID == userID {
			delete(p.entries, id)
		}
	}
	return nil
}

// GetSummary renders the user's top entries grouped by type.
func (p *InMemoryProvider) GetSummary(ctx context.Context, userID string, opts *core.SummaryOptions) (string, error) {
	entries, err := p.snapshot(func(e core.MemoryEntry) bool { return e.UserID == userID })
	if err != nil {
		return "", err
	}

	limit := defaultSummaryLimit
	sortBy := core.SortByImportance
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if opts.SortBy != "" {
			sortBy = opts.SortBy
		}
	}

	sortEntries(entries, sortBy, core.SortDesc)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return renderSummary(userID, entries), nil
}

// GetRelevantMemories returns the user's entries ranked by relevance to the
// query.
func (p *InMemoryProvider) GetRelevantMemories(ctx context.Context, query, userID string, limit int) ([]core.MemoryEntry, error) {
	entries, err := p.snapshot(func(e core.MemoryEntry) bool { return e.UserID == userID })
	if err != nil {
		return nil, err
	}
	return relevantMemories(entries, query, userID, limit), nil
}

// snapshot copies matching entries under the read lock so pipeline work runs
// without holding it. Entries are returned in timestamp order to keep
// tie-breaking deterministic.
func (p *InMemoryProvider) snapshot(keep func(core.MemoryEntry) bool) ([]core.MemoryEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}
	entries := make([]core.MemoryEntry, 0, len(p.entries))
	for _, e := range p.entries {
		if keep(e) {
			entries = append(entries, cloneEntry(e))
		}
	}
	sortEntries(entries, core.SortByTimestamp, core.SortAsc)
	return entries, nil
}

func cloneEntry(e core.MemoryEntry) core.MemoryEntry {
	e.Tags = cloneTags(e.Tags)
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func cloneMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
