package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aleksaelezovic/n3logic/internal/storage"
	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/aleksaelezovic/n3logic/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .
{ ?x ex:knows ?y . } => { ?y ex:knows ?x . } .
ex:alice ex:age ?a . ?a math:greaterThan 18 .`

type errorResponse struct {
	Error errorBody `json:"error"`
}

func newTestServer(t *testing.T, cache *store.ParseCache) *httptest.Server {
	t.Helper()
	s := NewServer(Config{Cache: cache, Logger: slog.New(slog.DiscardHandler)})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/parse", contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandleParse(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts, "text/n3", document)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("X-Cache"))

	var result n3.ParseResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Len(t, result.Triples, 3)
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "{ ?x ex:knows ?y . } => { ?y ex:knows ?x . } .", result.Rules[0].String())
	assert.Equal(t, "http://example.org/", result.Prefixes["ex"])
	require.Len(t, result.Builtins, 1)
	assert.Equal(t, "math:greaterThan", result.Builtins[0].Prefixed)
}

func TestHandleParseErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("malformed term", func(t *testing.T) {
		resp := post(t, ts, "text/plain; charset=utf-8", "ex:a ex:b ex:c .\nex:d ex:e \"broken .")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusUnprocessableEntity, body.Error.Code)
		assert.Equal(t, 2, body.Error.Line)
		assert.Contains(t, body.Error.Message, "malformed term")
	})

	t.Run("unsupported media type", func(t *testing.T) {
		resp := post(t, ts, "application/ld+json", "{}")
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		resp := post(t, ts, "text/n3", string([]byte{0xff, 0xfe}))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.Error.Line)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/parse")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("body too large", func(t *testing.T) {
		s := NewServer(Config{MaxBodyBytes: 8, Logger: slog.New(slog.DiscardHandler)})
		small := httptest.NewServer(s.Handler())
		defer small.Close()

		resp, err := http.Post(small.URL+"/parse", "text/n3", strings.NewReader(document))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}

func TestHandleParseOptions(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/parse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandleParseCached(t *testing.T) {
	backend, err := storage.NewBadgerStorage("")
	require.NoError(t, err)
	defer backend.Close()
	ts := newTestServer(t, store.NewParseCache(backend, slog.New(slog.DiscardHandler)))

	first := post(t, ts, "text/n3", document)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "miss", first.Header.Get("X-Cache"))
	firstBody, err := io.ReadAll(first.Body)
	require.NoError(t, err)

	second := post(t, ts, "text/n3", document)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))
	secondBody, err := io.ReadAll(second.Body)
	require.NoError(t, err)

	assert.JSONEq(t, string(firstBody), string(secondBody))
}

func TestHandleBuiltins(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/builtins")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all []n3.Builtin
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, len(n3.DefaultCatalog()))

	resp, err = http.Get(ts.URL + "/builtins?namespace=list")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lists []n3.Builtin
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	require.NotEmpty(t, lists)
	for _, b := range lists {
		assert.Equal(t, "list", b.Namespace)
		assert.True(t, strings.HasPrefix(b.URI, n3.ListNamespace))
	}

	resp, err = http.Get(ts.URL + "/builtins?namespace=owl")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
