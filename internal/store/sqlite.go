package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// BM25 column weights: a match in the title counts double a match in the
// body, so an entry matching in both ranks at or above a body-only match.
const (
	titleWeight   = 2.0
	contentWeight = 1.0
)

// SQLiteStore implements Store using a single shared FTS5 table scoped by
// an explicit user_id predicate on every read and write. Isolation across
// users is achieved entirely through that predicate.
type SQLiteStore struct {
	mu        sync.RWMutex
	db        *sql.DB
	path      string
	closed    bool
	stopWords map[string]struct{}
}

// Verify interface implementation at compile time
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the index database at path.
// If path is empty, an in-memory store is created for testing.
// WAL mode is enabled for concurrent readers.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// modernc.org/sqlite may ignore DSN params; set pragmas explicitly
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{
		db:        db,
		path:      path,
		stopWords: BuildStopWordMap(DefaultStopWords),
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the FTS5 virtual table.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- One row per indexed entity. Only title and content are searchable;
	-- the remaining columns are stored payload. 'porter unicode61' stems
	-- English terms on both the index and query side.
	CREATE VIRTUAL TABLE IF NOT EXISTS search_entries USING fts5(
		entity_id UNINDEXED,
		entity_type UNINDEXED,
		user_id UNINDEXED,
		title,
		content,
		tags UNINDEXED,
		updated_at UNINDEXED,
		tokenize='porter unicode61'
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces the row keyed by (UserID, EntityType, EntityID).
// FTS5 virtual tables don't support REPLACE, so the prior row is deleted
// first inside the same transaction. UpdatedAt is stamped to now.
func (s *SQLiteStore) Upsert(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tags, err := marshalTags(entry.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM search_entries WHERE user_id = ? AND entity_type = ? AND entity_id = ?`,
		entry.UserID, string(entry.EntityType), entry.EntityID); err != nil {
		return fmt.Errorf("failed to replace entry %s/%s: %w", entry.EntityType, entry.EntityID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO search_entries (entity_id, entity_type, user_id, title, content, tags, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.EntityID, string(entry.EntityType), entry.UserID,
		entry.Title, entry.Content, tags, now.UnixNano()); err != nil {
		return fmt.Errorf("failed to index entry %s/%s: %w", entry.EntityType, entry.EntityID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	entry.UpdatedAt = now
	return nil
}

// Delete removes the row keyed by (userID, entityType, entityID).
// Deleting an absent row is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, userID string, entityType EntityType, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM search_entries WHERE user_id = ? AND entity_type = ? AND entity_id = ?`,
		userID, string(entityType), entityID); err != nil {
		return fmt.Errorf("failed to delete entry %s/%s: %w", entityType, entityID, err)
	}

	return nil
}

// Search executes a ranked full-text query scoped to userID.
//
// The raw query is reduced to lowercase terms with stop words removed,
// joined as an implicit-AND FTS5 MATCH expression. bm25() returns negative
// values where lower is better; scores are negated so higher is better.
// Ties are broken by updated_at descending, then entity_id, so result
// order is deterministic.
func (s *SQLiteStore) Search(ctx context.Context, userID, query string, limit int) ([]RankedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	terms := FilterStopWords(TokenizeQuery(query), s.stopWords)
	if len(terms) == 0 {
		return []RankedEntry{}, nil
	}
	matchExpr := strings.Join(terms, " ")

	stmt := fmt.Sprintf(`
		SELECT entity_id, entity_type, title, content, tags, updated_at,
		       bm25(search_entries, 0.0, 0.0, 0.0, %g, %g, 0.0, 0.0) AS score
		FROM search_entries
		WHERE search_entries MATCH ? AND user_id = ?
		ORDER BY score, updated_at DESC, entity_id
		LIMIT ?
	`, titleWeight, contentWeight)

	rows, err := s.db.QueryContext(ctx, stmt, matchExpr, userID, limit)
	if err != nil {
		// FTS5 rejects malformed match expressions; tokenization should
		// prevent these, but treat them as no results rather than failing
		if strings.Contains(err.Error(), "fts5:") || strings.Contains(err.Error(), "syntax error") {
			return []RankedEntry{}, nil
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	results := []RankedEntry{}
	for rows.Next() {
		var (
			entry      Entry
			entityType string
			tags       sql.NullString
			updatedAt  int64
			score      float64
		)
		if err := rows.Scan(&entry.EntityID, &entityType, &entry.Title, &entry.Content,
			&tags, &updatedAt, &score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		entry.EntityType = EntityType(entityType)
		entry.UserID = userID
		entry.UpdatedAt = time.Unix(0, updatedAt).UTC()
		if entry.Tags, err = unmarshalTags(tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		results = append(results, RankedEntry{Entry: entry, Score: -score})
	}

	return results, rows.Err()
}

// Count returns the number of entries owned by userID.
func (s *SQLiteStore) Count(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_entries WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Close closes the store. Idempotent.
// Forces a WAL checkpoint before closing.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalTags(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" || raw.String == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
