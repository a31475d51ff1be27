package search

import (
	"github.com/solosuccess/searchd/internal/store"
)

// DefaultPath is where unrecognized entity types navigate to.
// Unknown types degrade gracefully rather than erroring; the routing table
// below must be extended whenever a new entity type becomes indexable.
const DefaultPath = "/app/dashboard"

// entityPaths maps each indexable entity type to its UI route.
// Chat is the only per-entity route; see PathFor.
var entityPaths = map[store.EntityType]string{
	store.EntityTypeTask:     "/app/roadmap",
	store.EntityTypeContact:  "/app/network",
	store.EntityTypeReport:   "/app/competitor-stalker",
	store.EntityTypeChat:     "/app/chat",
	store.EntityTypeDocument: "/app/documents",
}

// PathFor returns the navigable UI route for an entity.
// Chat routes are parameterized by entity ID; every other route is fixed.
func PathFor(entityType store.EntityType, entityID string) string {
	path, ok := entityPaths[entityType]
	if !ok {
		return DefaultPath
	}
	if entityType == store.EntityTypeChat {
		return path + "/" + entityID
	}
	return path
}
