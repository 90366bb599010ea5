package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/reagent/core"
)

// SQLiteProvider is a durable MemoryProvider backed by a single sqlite file
// (WAL mode). Entry ids are ULIDs, so lexical id order matches creation
// order. Filtering, scoring and summaries run through the same pipeline as
// the in-memory reference store.
type SQLiteProvider struct {
	path string

	mu          sync.Mutex
	db          *sql.DB
	entropy     *rand.Rand
	initialized bool
}

// NewSQLiteProvider creates a provider for the database at path. The file is
// opened (and created if absent) by Initialize.
func NewSQLiteProvider(path string) *SQLiteProvider {
	return &SQLiteProvider{
		path:    path,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Initialize opens the database and applies the schema.
func (p *SQLiteProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", p.path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	p.db = db
	p.initialized = true
	return nil
}

// Cleanup closes the database handle.
func (p *SQLiteProvider) Cleanup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil
	}
	p.initialized = false
	db := p.db
	p.db = nil
	return db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS memory_entries (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		type         TEXT NOT NULL,
		content      TEXT NOT NULL,
		content_kind TEXT NOT NULL DEFAULT 'text',
		tags         TEXT,
		importance   REAL NOT NULL DEFAULT 0,
		metadata     TEXT,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_user ON memory_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_entries_user_type ON memory_entries(user_id, type);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON memory_entries(created_at DESC);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (p *SQLiteProvider) handle() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}
	return p.db, nil
}

func (p *SQLiteProvider) newID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String()
}

// Store persists a new entry, assigning a ULID id and the current timestamp.
func (p *SQLiteProvider) Store(ctx context.Context, entry core.MemoryEntry) (*core.MemoryEntry, error) {
	db, err := p.handle()
	if err != nil {
		return nil, err
	}

	entry.ID = p.newID()
	entry.Timestamp = time.Now().UTC()

	contentJSON, kind, err := encodeContent(entry.Content)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := encodeNullable(entry.Tags, len(entry.Tags) > 0)
	if err != nil {
		return nil, err
	}
	metaJSON, err := encodeNullable(entry.Metadata, len(entry.Metadata) > 0)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO memory_entries (id, user_id, type, content, content_kind, tags, importance, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(entry.Type), contentJSON, kind, tagsJSON,
		entry.Importance, metaJSON, entry.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	out := cloneEntry(entry)
	return &out, nil
}

// StoreThoughtProcess persists a reasoning record as a THOUGHT_PROCESS entry
// tagged "thought_process".
func (p *SQLiteProvider) StoreThoughtProcess(ctx context.Context, tp *core.ThoughtProcess, userID string, metadata map[string]any) (*core.MemoryEntry, error) {
	entry, err := newThoughtEntry(tp, userID, metadata)
	if err != nil {
		return nil, err
	}
	return p.Store(ctx, entry)
}

// Search loads candidate rows (narrowed by user in SQL) and runs the shared
// filter/sort/paginate pipeline.
func (p *SQLiteProvider) Search(ctx context.Context, opts core.SearchOptions) (*core.SearchResult, error) {
	entries, err := p.loadEntries(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	return applySearch(entries, opts), nil
}

// GetByID returns the entry, or nil when absent.
func (p *SQLiteProvider) GetByID(ctx context.Context, id string) (*core.MemoryEntry, error) {
	db, err := p.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update mutates the entry's mutable fields inside one transaction,
// preserving id and timestamp.
func (p *SQLiteProvider) Update(ctx context.Context, id string, update core.EntryUpdate) (*core.MemoryEntry, error) {
	db, err := p.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
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

	contentJSON, kind, err := encodeContent(entry.Content)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := encodeNullable(entry.Tags, len(entry.Tags) > 0)
	if err != nil {
		return nil, err
	}
	metaJSON, err := encodeNullable(entry.Metadata, len(entry.Metadata) > 0)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE memory_entries SET type = ?, content = ?, content_kind = ?, tags = ?, importance = ?, metadata = ? WHERE id = ?`,
		string(entry.Type), contentJSON, kind, tagsJSON, entry.Importance, metaJSON, id)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes the entry, reporting whether a row existed.
func (p *SQLiteProvider) Delete(ctx context.Context, id string) (bool, error) {
	db, err := p.handle()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM memory_entries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearUserMemories removes every entry belonging to the user.
func (p *SQLiteProvider) ClearUserMemories(ctx context.Context, userID string) error {
	db, err := p.handle()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM memory_entries WHERE user_id = ?`, userID)
	return err
}

// GetSummary renders the user's top entries grouped by type.
func (p *SQLiteProvider) GetSummary(ctx context.Context, userID string, opts *core.SummaryOptions) (string, error) {
	entries, err := p.loadEntries(ctx, userID)
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
func (p *SQLiteProvider) GetRelevantMemories(ctx context.Context, query, userID string, limit int) ([]core.MemoryEntry, error) {
	entries, err := p.loadEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return relevantMemories(entries, query, userID, limit), nil
}

const selectColumns = `SELECT id, user_id, type, content, content_kind, tags, importance, metadata, created_at FROM memory_entries`

// loadEntries fetches rows in creation order, optionally narrowed to one
// user.
func (p *SQLiteProvider) loadEntries(ctx context.Context, userID string) ([]core.MemoryEntry, error) {
	db, err := p.handle()
	if err != nil {
		return nil, err
	}

	query := selectColumns + ` ORDER BY created_at ASC, id ASC`
	var args []any
	if userID != "" {
		query = selectColumns + ` WHERE user_id = ? ORDER BY created_at ASC, id ASC`
		args = append(args, userID)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.MemoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.MemoryEntry, error) {
	var e core.MemoryEntry
	var entryType, contentJSON, kind, createdAt string
	var tagsJSON, metadataJSON sql.NullString

	err := row.Scan(&e.ID, &e.UserID, &entryType, &contentJSON, &kind, &tagsJSON, &e.Importance, &metadataJSON, &createdAt)
	if err != nil {
		return e, err
	}

	e.Type = core.MemoryType(entryType)
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)

	content, err := decodeContent(contentJSON, kind)
	if err != nil {
		return e, err
	}
	e.Content = content

	if tagsJSON.Valid {
		if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
			return e, fmt.Errorf("decode tags: %w", err)
		}
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
			return e, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return e, nil
}

// encodeContent serializes a content variant together with its kind tag so
// the sum type survives a round trip through the database.
func encodeContent(c core.MemoryContent) (string, string, error) {
	if c == nil {
		c = core.TextContent{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", "", fmt.Errorf("encode content: %w", err)
	}
	kind := "structured"
	if _, ok := c.(core.TextContent); ok {
		kind = "text"
	}
	return string(b), kind, nil
}

func decodeContent(contentJSON, kind string) (core.MemoryContent, error) {
	if kind == "text" {
		var s string
		if err := json.Unmarshal([]byte(contentJSON), &s); err != nil {
			return nil, fmt.Errorf("decode text content: %w", err)
		}
		return core.TextContent{Text: s}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(contentJSON), &v); err != nil {
		return nil, fmt.Errorf("decode structured content: %w", err)
	}
	return core.StructuredContent{Value: v}, nil
}

func encodeNullable(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
