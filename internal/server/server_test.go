package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solosuccess/searchd/internal/indexer"
	"github.com/solosuccess/searchd/internal/search"
	"github.com/solosuccess/searchd/internal/store"
)

// test tokens resolved by the static resolver
const (
	tokenAlice = "tok-alice"
	tokenBob   = "tok-bob"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := indexer.New(indexer.WithStore(st))
	require.NoError(t, err)

	svc, err := search.NewService(search.WithStore(st))
	require.NoError(t, err)

	resolver := NewStaticResolver(map[string]string{
		tokenAlice: "alice",
		tokenBob:   "bob",
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(idx, svc, st, resolver, logger, nil)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echoContentType, "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func indexEntity(t *testing.T, srv *Server, token, entityType, id, title, content string) {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"id":%q,"title":%q,"content":%q}`, entityType, id, title, content)
	rec := doJSON(t, srv, http.MethodPost, "/search/index", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func searchResults(t *testing.T, rec *httptest.ResponseRecorder) []search.Result {
	t.Helper()
	var results []search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	return results
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearch_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, token := range []string{"", "unknown-token"} {
		rec := doJSON(t, srv, http.MethodPost, "/search", token, `{"query":"anything"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestSearch_RoundTripOverHTTP(t *testing.T) {
	// Given: an indexed task
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "Launch plan", "Ship the MVP by Friday")

	// When: searching via the JSON body
	rec := doJSON(t, srv, http.MethodPost, "/search", tokenAlice, `{"query":"MVP"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Then: the shaped result comes back
	results := searchResults(t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].ID)
	assert.Equal(t, store.EntityTypeTask, results[0].Type)
	assert.Equal(t, "/app/roadmap", results[0].Path)
	assert.True(t, strings.HasSuffix(results[0].Snippet, "..."))
}

func TestSearch_QueryStringAlternative(t *testing.T) {
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "contact", "c1", "Jordan Lee", "fintech angel investor")

	rec := doJSON(t, srv, http.MethodPost, "/search?q=investor", tokenAlice, "")
	require.Equal(t, http.StatusOK, rec.Code)

	results := searchResults(t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, "/app/network", results[0].Path)
}

func TestSearch_NonStringQueryIsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "Launch plan", "Ship the MVP")

	for _, body := range []string{
		`{"query":["not","a","string"]}`,
		`{"query":{"nested":"object"}}`,
		`{"query":42}`,
		`{}`,
	} {
		rec := doJSON(t, srv, http.MethodPost, "/search", tokenAlice, body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.JSONEq(t, `[]`, rec.Body.String(), body)
	}
}

func TestSearch_ShortQueryIsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "A", "a b c")

	rec := doJSON(t, srv, http.MethodPost, "/search", tokenAlice, `{"query":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearch_TenantIsolationOverHTTP(t *testing.T) {
	// Given: alice's entity
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "report", "r1", "Teardown", "competitor pricing analysis")

	// When: bob searches the same terms
	rec := doJSON(t, srv, http.MethodPost, "/search", tokenBob, `{"query":"pricing analysis"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Then: nothing leaks
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestIndex_ValidatesTypeAndID(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"id":"t1","title":"x","content":"y"}`,
		`{"type":"task","title":"x","content":"y"}`,
	} {
		rec := doJSON(t, srv, http.MethodPost, "/search/index", tokenAlice, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRemove_DeletesFromIndex(t *testing.T) {
	// Given: an indexed entity
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "Launch plan", "Ship the MVP")

	// When: removing it
	rec := doJSON(t, srv, http.MethodDelete, "/search/index", tokenAlice, `{"type":"task","id":"t1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	// Then: it no longer matches
	rec = doJSON(t, srv, http.MethodPost, "/search", tokenAlice, `{"query":"MVP"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStats_CountsPerUser(t *testing.T) {
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "One", "alpha")
	indexEntity(t, srv, tokenAlice, "task", "t2", "Two", "beta")
	indexEntity(t, srv, tokenBob, "task", "t1", "Other", "gamma")

	rec := doJSON(t, srv, http.MethodGet, "/search/stats", tokenAlice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestReindex_SameKeyReplaces(t *testing.T) {
	// Given: the same entity indexed twice
	srv := newTestServer(t)
	indexEntity(t, srv, tokenAlice, "task", "t1", "Plan", "first draft")
	indexEntity(t, srv, tokenAlice, "task", "t1", "Plan", "final version")

	// Then: only the second content matches, and the count stays at one
	rec := doJSON(t, srv, http.MethodPost, "/search", tokenAlice, `{"query":"draft"}`)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/search/stats", tokenAlice, "")
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}
