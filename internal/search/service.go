// Package search is the read path: it validates query input, executes the
// ranked search against the index store, and shapes rows into results the
// UI can render and navigate from.
package search

import (
	"context"
	"errors"
	"math"
	"time"

	searcherrors "github.com/solosuccess/searchd/internal/errors"
	"github.com/solosuccess/searchd/internal/store"
)

// Defaults mirroring the product behavior: queries under 2 characters are
// noise, 20 results fill the search dropdown, snippets are 150 characters.
const (
	DefaultLimit          = 20
	DefaultMinQueryLength = 2
	DefaultSnippetLength  = 150
)

// ErrNilStore is returned when attempting to create a Service without a store.
var ErrNilStore = errors.New("index store is required")

// Result is one search hit shaped for the UI boundary.
type Result struct {
	// ID is the source entity's primary key.
	ID string `json:"id"`

	// Type is the source entity type.
	Type store.EntityType `json:"type"`

	// Title is the entry's label.
	Title string `json:"title"`

	// Snippet is the leading slice of the content with an ellipsis marker.
	Snippet string `json:"snippet"`

	// Path is the UI route to navigate to the source entity.
	Path string `json:"path"`

	// Timestamp is the entry's last index write.
	Timestamp time.Time `json:"timestamp"`

	// Relevance is the rank normalized per result set: the top hit is 100
	// and the rest scale proportionally (floor 1).
	Relevance int `json:"relevance"`
}

// Service executes ranked searches. Safe for concurrent use.
type Service struct {
	store          store.Store
	limit          int
	minQueryLength int
	snippetLength  int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStore sets the index store backend. Required.
func WithStore(s store.Store) ServiceOption {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithLimit caps the number of results per search.
func WithLimit(limit int) ServiceOption {
	return func(svc *Service) {
		if limit > 0 {
			svc.limit = limit
		}
	}
}

// WithMinQueryLength sets the shortest query that executes a search.
func WithMinQueryLength(n int) ServiceOption {
	return func(svc *Service) {
		if n > 0 {
			svc.minQueryLength = n
		}
	}
}

// WithSnippetLength sets how much leading content a snippet carries.
func WithSnippetLength(n int) ServiceOption {
	return func(svc *Service) {
		if n > 0 {
			svc.snippetLength = n
		}
	}
}

// NewService creates a Service with the given options.
// Returns ErrNilStore if no store is provided.
func NewService(opts ...ServiceOption) (*Service, error) {
	svc := &Service{
		limit:          DefaultLimit,
		minQueryLength: DefaultMinQueryLength,
		snippetLength:  DefaultSnippetLength,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.store == nil {
		return nil, ErrNilStore
	}

	return svc, nil
}

// Search executes a ranked search for userID.
//
// Queries shorter than the minimum length return an empty slice immediately
// and never an error; that is the contract for trivial input. Storage
// failures are returned as a query error for the boundary to translate.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Result, error) {
	results := []Result{}

	if len(query) < s.minQueryLength {
		return results, nil
	}

	ranked, err := s.store.Search(ctx, userID, query, s.limit)
	if err != nil {
		return nil, searcherrors.QueryError(err)
	}

	for _, r := range ranked {
		results = append(results, Result{
			ID:        r.EntityID,
			Type:      r.EntityType,
			Title:     r.Title,
			Snippet:   snippet(r.Content, s.snippetLength),
			Path:      PathFor(r.EntityType, r.EntityID),
			Timestamp: r.UpdatedAt,
			Relevance: relevance(r.Score, ranked[0].Score),
		})
	}

	return results, nil
}

// snippet returns the first n runes of content followed by an ellipsis
// marker. The marker is always appended, even for short content.
func snippet(content string, n int) string {
	runes := []rune(content)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

// relevance normalizes a score against the best score of the result set,
// mapping the top hit to 100. Results within one set stay comparable no
// matter how the absolute bm25 values drift with corpus size.
func relevance(score, best float64) int {
	if best <= 0 || score <= 0 {
		return 100
	}
	r := int(math.Round(score / best * 100))
	if r < 1 {
		r = 1
	}
	if r > 100 {
		r = 100
	}
	return r
}
