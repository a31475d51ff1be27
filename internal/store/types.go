// Package store provides the durable search index: one row per indexed
// entity, keyed by (user, entity type, entity id), queryable by ranked
// full-text relevance. SQLite FTS5 is the text-search primitive.
package store

import (
	"context"
	"time"
)

// EntityType tags the kind of source entity an index entry projects.
type EntityType string

const (
	EntityTypeTask     EntityType = "task"
	EntityTypeContact  EntityType = "contact"
	EntityTypeReport   EntityType = "report"
	EntityTypeChat     EntityType = "chat"
	EntityTypeDocument EntityType = "document"
)

// Entry is the searchable projection of one source entity.
//
// The triple (UserID, EntityType, EntityID) is unique: re-indexing the same
// entity replaces the prior row. An Entry has no identity of its own; it
// exists only to make its source discoverable and is created, updated, and
// deleted strictly in response to source-entity mutations.
type Entry struct {
	// EntityID is the primary key of the source entity. Opaque to the
	// index; its meaning depends on EntityType.
	EntityID string

	// EntityType routes the entry to a UI path and scopes uniqueness.
	EntityType EntityType

	// UserID is the owning account. Every store operation is scoped to
	// exactly one UserID; cross-user leakage is a correctness violation.
	UserID string

	// Title is a short human-readable label.
	Title string

	// Content is the searchable body text, possibly the concatenation of
	// several source fields.
	Content string

	// Tags is associative metadata. Stored for future filtering, never
	// scored in ranking.
	Tags []string

	// UpdatedAt is the time of the last index write. Stamped by Upsert.
	UpdatedAt time.Time
}

// RankedEntry is an Entry with its relevance score for one query.
// Scores are positive; higher is a better match.
type RankedEntry struct {
	Entry
	Score float64
}

// Store is the contract for the index store.
//
// Implementations must be safe for concurrent use. All methods accept a
// context for cancellation and timeout support.
type Store interface {
	// Upsert inserts entry or replaces the existing row matching
	// (UserID, EntityType, EntityID). It stamps UpdatedAt and never
	// errors on "already exists".
	Upsert(ctx context.Context, entry *Entry) error

	// Delete removes the matching row. Absent rows are a no-op, not an
	// error.
	Delete(ctx context.Context, userID string, entityType EntityType, entityID string) error

	// Search returns entries owned by userID whose title or content
	// match query, ordered by descending relevance and truncated to
	// limit. An unmatchable or empty-after-filtering query returns an
	// empty slice, not an error.
	Search(ctx context.Context, userID, query string, limit int) ([]RankedEntry, error)

	// Count returns the number of entries owned by userID.
	Count(ctx context.Context, userID string) (int, error)

	// Close releases the store. Idempotent.
	Close() error
}
