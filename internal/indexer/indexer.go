// Package indexer is the single write gateway to the search index.
//
// Entity-owning collaborators (task manager, contact manager, chat, ...)
// must call IndexEntity whenever the searchable fields of an entity change
// and RemoveFromIndex whenever an entity is deleted. The index is a derived
// projection: it is only as fresh as the calls it receives, and a missed
// RemoveFromIndex leaves a dangling entry until the next write.
//
// Index writes are not transactional with the source entity's own write.
// A crash between the two leaves the index stale until the next mutation;
// callers decide whether to retry, log, or fail their parent operation.
package indexer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	searcherrors "github.com/solosuccess/searchd/internal/errors"
	"github.com/solosuccess/searchd/internal/store"
)

// ErrNilStore is returned when attempting to create an Indexer without a store.
var ErrNilStore = errors.New("index store is required")

// Indexer builds index entries and writes them through the Store.
//
// Indexer is safe for concurrent use. Racing upserts to the same
// (user, type, id) are last-writer-wins; no version check is performed.
type Indexer struct {
	store store.Store
	mu    sync.RWMutex
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithStore sets the index store backend.
//
// This is a required option; New will return an error if no store is
// provided.
func WithStore(s store.Store) Option {
	return func(i *Indexer) {
		i.store = s
	}
}

// New creates a new Indexer with the given options.
//
// At minimum, WithStore must be provided:
//
//	idx, err := indexer.New(indexer.WithStore(s))
//
// Returns ErrNilStore if no store is provided.
func New(opts ...Option) (*Indexer, error) {
	i := &Indexer{}

	for _, opt := range opts {
		opt(i)
	}

	if i.store == nil {
		return nil, ErrNilStore
	}

	return i, nil
}

// IndexEntity upserts the searchable projection of one entity.
//
// Re-indexing the same (userID, entityType, entityID) replaces the prior
// entry; there is at most one entry per source entity. The entry is visible
// to queries as soon as the call returns.
func (i *Indexer) IndexEntity(ctx context.Context, userID string, entityType store.EntityType, entityID, title, content string, tags []string) error {
	if err := validateKey(userID, entityType, entityID); err != nil {
		return err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	entry := &store.Entry{
		EntityID:   entityID,
		EntityType: entityType,
		UserID:     userID,
		Title:      title,
		Content:    content,
		Tags:       tags,
	}

	if err := i.store.Upsert(ctx, entry); err != nil {
		slog.Error("index write failed",
			slog.String("entity_type", string(entityType)),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()))
		return searcherrors.IndexWriteError(err)
	}

	return nil
}

// RemoveFromIndex deletes the entry for one entity.
//
// Removing an entity that was never indexed is a no-op, not an error.
func (i *Indexer) RemoveFromIndex(ctx context.Context, userID string, entityType store.EntityType, entityID string) error {
	if err := validateKey(userID, entityType, entityID); err != nil {
		return err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if err := i.store.Delete(ctx, userID, entityType, entityID); err != nil {
		slog.Error("index delete failed",
			slog.String("entity_type", string(entityType)),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()))
		return searcherrors.IndexDeleteError(err)
	}

	return nil
}

// validateKey rejects entries that could not be deleted or replaced later.
func validateKey(userID string, entityType store.EntityType, entityID string) error {
	switch {
	case userID == "":
		return searcherrors.New(searcherrors.ErrCodeInvalidInput, "user id is required", nil)
	case entityType == "":
		return searcherrors.New(searcherrors.ErrCodeInvalidInput, "entity type is required", nil)
	case entityID == "":
		return searcherrors.New(searcherrors.ErrCodeInvalidInput, "entity id is required", nil)
	}
	return nil
}
