package memory

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/hupe1980/reagent/core"
)

// defaultRelevanceLimit caps GetRelevantMemories results when the caller
// passes a non-positive limit.
const defaultRelevanceLimit = 5

// defaultSummaryLimit caps GetSummary input when no override is given.
const defaultSummaryLimit = 10

// summaryContentLength is the truncation bound applied to each rendered
// entry in a summary.
const summaryContentLength = 100

// applySearch runs the full filter/sort/paginate pipeline over entries.
// Filters apply in fixed order: user, type, tags, date range, importance,
// metadata subset, free-text query. Total counts matches before pagination.
func applySearch(entries []core.MemoryEntry, opts core.SearchOptions) *core.SearchResult {
	filtered := make([]core.MemoryEntry, 0, len(entries))
	for _, e := range entries {
		if matchesFilters(e, opts) {
			filtered = append(filtered, e)
		}
	}

	sortEntries(filtered, opts.SortBy, opts.SortOrder)

	total := len(filtered)
	page, hasMore := paginate(filtered, opts.Offset, opts.Limit)

	return &core.SearchResult{Entries: page, Total: total, HasMore: hasMore}
}

func matchesFilters(e core.MemoryEntry, opts core.SearchOptions) bool {
	if opts.UserID != "" && e.UserID != opts.UserID {
		return false
	}
	if len(opts.Types) > 0 && !containsType(opts.Types, e.Type) {
		return false
	}
	if len(opts.Tags) > 0 && !hasAnyTag(e.Tags, opts.Tags) {
		return false
	}
	if opts.StartDate != nil && e.Timestamp.Before(*opts.StartDate) {
		return false
	}
	if opts.EndDate != nil && e.Timestamp.After(*opts.EndDate) {
		return false
	}
	if opts.MinImportance != nil && e.Importance < *opts.MinImportance {
		return false
	}
	if len(opts.Metadata) > 0 && !metadataSubset(e.Metadata, opts.Metadata) {
		return false
	}
	if opts.Query != "" && !matchesQuery(e.Content, opts.Query, opts.ExactMatch) {
		return false
	}
	return true
}

func containsType(types []core.MemoryType, t core.MemoryType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// hasAnyTag reports whether the entry carries at least one of the requested tags.
func hasAnyTag(entryTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range entryTags {
			if t == w {
				return true
			}
		}
	}
	return false
}

// metadataSubset reports whether every requested key is present with an
// exactly equal value.
func metadataSubset(have, want map[string]any) bool {
	for k, v := range want {
		got, ok := have[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

// matchesQuery tests the entry content against a case-insensitive free-text
// query: substring containment for partial mode, full equality for exact.
// Structured content is tested against its JSON-stringified form.
func matchesQuery(content core.MemoryContent, query string, exact bool) bool {
	if content == nil {
		return false
	}
	text := strings.ToLower(content.String())
	q := strings.ToLower(query)
	if exact {
		return text == q
	}
	return strings.Contains(text, q)
}

func sortEntries(entries []core.MemoryEntry, by core.SortField, order core.SortOrder) {
	if by == "" {
		by = core.SortByTimestamp
	}
	if order == "" {
		order = core.SortDesc
	}
	sort.SliceStable(entries, func(i, j int) bool {
		var less bool
		switch by {
		case core.SortByImportance:
			less = entries[i].Importance < entries[j].Importance
		default:
			less = entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		if order == core.SortDesc {
			return !less && !equalKey(entries[i], entries[j], by)
		}
		return less
	})
}

func equalKey(a, b core.MemoryEntry, by core.SortField) bool {
	if by == core.SortByImportance {
		return a.Importance == b.Importance
	}
	return a.Timestamp.Equal(b.Timestamp)
}

func paginate(entries []core.MemoryEntry, offset, limit int) ([]core.MemoryEntry, bool) {
	total := len(entries)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []core.MemoryEntry{}, false
	}
	if limit <= 0 {
		return entries[offset:], false
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return entries[offset:end], offset+limit < total
}

// relevantMemories ranks the user's entries against the query. Base score is
// 1.0 for a full lower-cased substring hit plus 0.5 per query word longer
// than 3 characters found in the content, weighted by entry importance (0.5
// when unset). Ties keep insertion order.
func relevantMemories(entries []core.MemoryEntry, query, userID string, limit int) []core.MemoryEntry {
	if limit <= 0 {
		limit = defaultRelevanceLimit
	}

	type scored struct {
		entry core.MemoryEntry
		score float64
	}

	q := strings.ToLower(query)
	words := strings.Fields(q)

	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		text := strings.ToLower(contentString(e.Content))

		score := 0.0
		if q != "" && strings.Contains(text, q) {
			score = 1.0
		}
		for _, w := range words {
			if len(w) > 3 && strings.Contains(text, w) {
				score += 0.5
			}
		}

		importance := e.Importance
		if importance == 0 {
			importance = 0.5
		}
		ranked = append(ranked, scored{entry: e, score: score * importance})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	result := make([]core.MemoryEntry, len(ranked))
	for i, s := range ranked {
		result[i] = s.entry
	}
	return result
}

// renderSummary groups entries by type (first-seen order) and renders each
// content truncated to summaryContentLength characters.
func renderSummary(userID string, entries []core.MemoryEntry) string {
	if len(entries) == 0 {
		return "No memories stored for user " + userID + "."
	}

	var order []core.MemoryType
	groups := make(map[core.MemoryType][]core.MemoryEntry)
	for _, e := range entries {
		if _, seen := groups[e.Type]; !seen {
			order = append(order, e.Type)
		}
		groups[e.Type] = append(groups[e.Type], e)
	}

	var b strings.Builder
	b.WriteString("Memory summary for " + userID + ":\n")
	for _, t := range order {
		b.WriteString("\n" + string(t) + ":\n")
		for _, e := range groups[t] {
			b.WriteString("- " + truncate(contentString(e.Content), summaryContentLength) + "\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func contentString(c core.MemoryContent) string {
	if c == nil {
		return ""
	}
	return c.String()
}

// newThoughtEntry builds the entry persisted for one reasoning round. The
// record is snapshotted through JSON so later mutation of tp cannot leak
// into stored content. Importance defaults to 0.5 unless metadata overrides.
func newThoughtEntry(tp *core.ThoughtProcess, userID string, metadata map[string]any) (core.MemoryEntry, error) {
	raw, err := json.Marshal(tp)
	if err != nil {
		return core.MemoryEntry{}, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.MemoryEntry{}, err
	}

	importance := 0.5
	switch v := metadata["importance"].(type) {
	case float64:
		importance = v
	case int:
		importance = float64(v)
	}

	return core.MemoryEntry{
		UserID:     userID,
		Type:       core.MemoryTypeThoughtProcess,
		Content:    core.StructuredContent{Value: doc},
		Tags:       []string{"thought_process"},
		Importance: importance,
		Metadata:   metadata,
	}, nil
}
