package memory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/testutil"
)

// Interface compliance (compile-time assertions)
var _ core.MemoryProvider = (*InMemoryProvider)(nil)

func newProvider(t *testing.T) *InMemoryProvider {
	t.Helper()
	p := NewInMemoryProvider()
	require.NoError(t, p.Initialize(context.Background()))
	return p
}

func TestInMemoryProvider_NotInitialized(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProvider()

	_, err := p.Store(ctx, testutil.NewEntryBuilder().Build())
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	_, err = p.Search(ctx, core.SearchOptions{})
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	_, err = p.GetByID(ctx, "x")
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	_, err = p.Delete(ctx, "x")
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	assert.ErrorIs(t, p.ClearUserMemories(ctx, "u"), core.ErrNotInitialized)
}

func TestInMemoryProvider_StoreAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	entry := testutil.NewEntryBuilder().Text("hello").Build()
	entry.ID = "caller-supplied"
	entry.Timestamp = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	before := time.Now().UTC()
	stored, err := p.Store(ctx, entry)
	require.NoError(t, err)

	assert.NotEqual(t, "caller-supplied", stored.ID)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.Before(before))

	got, err := p.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "hello", got.Content.String())
}

func TestInMemoryProvider_GetByIDAbsent(t *testing.T) {
	p := newProvider(t)
	got, err := p.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemoryProvider_StoreDeleteGet(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	stored, err := p.Store(ctx, testutil.NewEntryBuilder().Structured(map[string]any{"a": 1}).Build())
	require.NoError(t, err)

	ok, err := p.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := p.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = p.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryProvider_Update(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	stored, err := p.Store(ctx, testutil.NewEntryBuilder().Text("v1").Importance(0.3).Build())
	require.NoError(t, err)

	imp := 0.8
	updated, err := p.Update(ctx, stored.ID, core.EntryUpdate{
		Content:    core.TextContent{Text: "v2"},
		Importance: &imp,
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, stored.Timestamp, updated.Timestamp)
	assert.Equal(t, "v2", updated.Content.String())
	assert.Equal(t, 0.8, updated.Importance)

	_, err = p.Update(ctx, "missing", core.EntryUpdate{})
	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, core.IsNotFound(err))
}

func TestInMemoryProvider_SearchDefaults(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	for i := 0; i < 3; i++ {
		_, err := p.Store(ctx, testutil.NewEntryBuilder().Text("entry").Build())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	res, err := p.Search(ctx, core.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.HasMore)
	require.Len(t, res.Entries, 3)

	// Default sort is timestamp descending.
	for i := 1; i < len(res.Entries); i++ {
		assert.False(t, res.Entries[i-1].Timestamp.Before(res.Entries[i].Timestamp))
	}
}

func TestInMemoryProvider_SearchFilterPipeline(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Type(core.MemoryTypeFact).Text("Alice likes espresso").
		Tags("coffee", "preference").Importance(0.9).Metadata("source", "chat").Build())
	require.NoError(t, err)

	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Type(core.MemoryTypeTask).Text("Buy beans").
		Tags("todo").Importance(0.2).Build())
	require.NoError(t, err)

	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("bob").Type(core.MemoryTypeFact).Text("Bob likes espresso too").Build())
	require.NoError(t, err)

	t.Run("user filter", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("type filter", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{Types: []core.MemoryType{core.MemoryTypeTask}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("tag any match", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{Tags: []string{"todo", "unknown"}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("min importance", func(t *testing.T) {
		min := 0.5
		res, err := p.Search(ctx, core.SearchOptions{UserID: "alice", MinImportance: &min})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("metadata subset", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{Metadata: map[string]any{"source": "chat"}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)

		res, err = p.Search(ctx, core.SearchOptions{Metadata: map[string]any{"source": "email"}})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
	})

	t.Run("query partial is case-insensitive", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{Query: "ESPRESSO"})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("query exact", func(t *testing.T) {
		res, err := p.Search(ctx, core.SearchOptions{Query: "buy beans", ExactMatch: true})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("date range", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		res, err := p.Search(ctx, core.SearchOptions{StartDate: &future})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
	})
}

func TestInMemoryProvider_SearchPagination(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	for i := 0; i < 5; i++ {
		_, err := p.Store(ctx, testutil.NewEntryBuilder().Text("e").Build())
		require.NoError(t, err)
	}

	res, err := p.Search(ctx, core.SearchOptions{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.HasMore)

	res, err = p.Search(ctx, core.SearchOptions{Offset: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
	assert.False(t, res.HasMore)

	res, err = p.Search(ctx, core.SearchOptions{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 5, res.Total)
	assert.False(t, res.HasMore)
}

func TestInMemoryProvider_SearchSortByImportance(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	for _, imp := range []float64{0.2, 0.9, 0.5} {
		_, err := p.Store(ctx, testutil.NewEntryBuilder().Importance(imp).Build())
		require.NoError(t, err)
	}

	res, err := p.Search(ctx, core.SearchOptions{SortBy: core.SortByImportance, SortOrder: core.SortAsc})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, 0.2, res.Entries[0].Importance)
	assert.Equal(t, 0.9, res.Entries[2].Importance)

	res, err = p.Search(ctx, core.SearchOptions{SortBy: core.SortByImportance, SortOrder: core.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, 0.9, res.Entries[0].Importance)
}

func TestInMemoryProvider_GetRelevantMemories(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Text("espresso machines and grinder settings").Importance(0.5).Build())
	require.NoError(t, err)
	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Text("prefers espresso every morning").Importance(1.0).Build())
	require.NoError(t, err)
	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Text("unrelated note about taxes").Importance(1.0).Build())
	require.NoError(t, err)
	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("bob").Text("espresso for bob").Importance(1.0).Build())
	require.NoError(t, err)

	got, err := p.GetRelevantMemories(ctx, "espresso", "alice", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "alice", e.UserID)
	}
	// Full substring hit weighted by importance: 1.5*1.0 beats 1.5*0.5.
	assert.Contains(t, got[0].Content.String(), "every morning")
	assert.Contains(t, got[1].Content.String(), "grinder")
}

func TestInMemoryProvider_GetRelevantMemoriesDefaultLimit(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	for i := 0; i < 8; i++ {
		_, err := p.Store(ctx, testutil.NewEntryBuilder().User("alice").Text("espresso note").Build())
		require.NoError(t, err)
	}

	got, err := p.GetRelevantMemories(ctx, "espresso", "alice", 0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestInMemoryProvider_GetSummary(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	long := strings.Repeat("x", 150)
	_, err := p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Type(core.MemoryTypeFact).Text(long).Importance(0.9).Build())
	require.NoError(t, err)
	_, err = p.Store(ctx, testutil.NewEntryBuilder().
		User("alice").Type(core.MemoryTypeTask).Text("short task").Importance(0.4).Build())
	require.NoError(t, err)

	summary, err := p.GetSummary(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Contains(t, summary, "Memory summary for alice")
	assert.Contains(t, summary, string(core.MemoryTypeFact))
	assert.Contains(t, summary, string(core.MemoryTypeTask))
	assert.Contains(t, summary, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, summary, strings.Repeat("x", 101))
	assert.Contains(t, summary, "short task")
}

func TestInMemoryProvider_GetSummaryEmpty(t *testing.T) {
	p := newProvider(t)
	summary, err := p.GetSummary(context.Background(), "ghost", nil)
	require.NoError(t, err)
	assert.Contains(t, summary, "No memories stored")
}

func TestInMemoryProvider_StoreThoughtProcess(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	tp := testutil.NewThoughtBuilder().Reasoning("r").Plan("p").Build()

	entry, err := p.StoreThoughtProcess(ctx, tp, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, core.MemoryTypeThoughtProcess, entry.Type)
	assert.Equal(t, []string{"thought_process"}, entry.Tags)
	assert.Equal(t, 0.5, entry.Importance)

	entry2, err := p.StoreThoughtProcess(ctx, tp, "alice", map[string]any{"importance": 0.8})
	require.NoError(t, err)
	assert.Equal(t, 0.8, entry2.Importance)

	// Serialized form is queryable like any structured content.
	res, err := p.Search(ctx, core.SearchOptions{UserID: "alice", Tags: []string{"thought_process"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestInMemoryProvider_ClearUserMemories(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Store(ctx, testutil.NewEntryBuilder().User("alice").Build())
	require.NoError(t, err)
	_, err = p.Store(ctx, testutil.NewEntryBuilder().User("bob").Build())
	require.NoError(t, err)

	require.NoError(t, p.ClearUserMemories(ctx, "alice"))

	res, err := p.Search(ctx, core.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "bob", res.Entries[0].UserID)
}

func TestInMemoryProvider_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, err := p.Store(ctx, testutil.NewEntryBuilder().User("shared").Build())
			if err != nil {
				t.Errorf("store error: %v", err)
				return
			}
			if _, err := p.GetByID(ctx, stored.ID); err != nil {
				t.Errorf("get error: %v", err)
			}
			if _, err := p.Search(ctx, core.SearchOptions{UserID: "shared"}); err != nil {
				t.Errorf("search error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	res, err := p.Search(ctx, core.SearchOptions{UserID: "shared"})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Total)

	// All ids unique.
	seen := make(map[string]bool)
	for _, e := range res.Entries {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}
