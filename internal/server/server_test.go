// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/require"

	"codeberg.org/wikiread/wikiread/internal/saved"
	"codeberg.org/wikiread/wikiread/internal/server"
	"codeberg.org/wikiread/wikiread/internal/wiki"
	"codeberg.org/wikiread/wikiread/pkg/assetcache"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

func newServer(t *testing.T, options ...server.Option) (*server.Server, *assetcache.MemStore, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	client := &http.Client{Transport: mt}

	wc, err := wiki.NewClient("https://wiki.example", wiki.WithHTTPClient(client))
	require.NoError(t, err)

	cache := assetcache.NewMemStore(0)
	return server.New(wc, fetch.New(client, cache), options...), cache, mt
}

func registerParse(t *testing.T, mt *httpmock.MockTransport, body string) {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"parse": map[string]interface{}{
			"title":        "Dragon dagger",
			"pageid":       42,
			"revid":        1234567,
			"displaytitle": "Dragon dagger",
			"text":         map[string]string{"*": body},
		},
	})
	require.NoError(t, err)
	mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
		httpmock.NewStringResponder(200, string(data)))
}

func TestReadPage(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert := require.New(t)
		s, _, mt := newServer(t)
		registerParse(t, mt, "<p>article text</p>")

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET", "/read/42?theme=dark", nil))

		assert.Equal(200, w.Code)
		assert.Contains(w.Header().Get("Content-Type"), "text/html")
		assert.Contains(w.Body.String(), "Dragon dagger")
		assert.Contains(w.Body.String(), "article text")
		assert.Contains(w.Body.String(), "theme-dark")
	})

	t.Run("upstream failure", func(t *testing.T) {
		assert := require.New(t)
		s, _, mt := newServer(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewStringResponder(500, "boom"))

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET", "/read/42", nil))

		assert.Equal(http.StatusBadGateway, w.Code)
		jsonassert.New(t).Assertf(w.Body.String(),
			`{"status": 502, "message": "<<PRESENCE>>"}`)
	})
}

func TestServeAsset(t *testing.T) {
	t.Run("from cache", func(t *testing.T) {
		assert := require.New(t)
		s, cache, mt := newServer(t)
		cache.Set("https://wiki.example/images/a.png", []byte("<svg></svg>"))

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET",
			"/assets?url=https%3A%2F%2Fwiki.example%2Fimages%2Fa.png", nil))

		assert.Equal(200, w.Code)
		assert.Equal("<svg></svg>", w.Body.String())
		assert.Equal(0, mt.GetTotalCallCount())
	})

	t.Run("fetch on miss", func(t *testing.T) {
		assert := require.New(t)
		s, _, mt := newServer(t)
		mt.RegisterResponder("GET", "https://wiki.example/images/a.png",
			httpmock.NewStringResponder(200, "binary-image-data"))

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET",
			"/assets?url=https%3A%2F%2Fwiki.example%2Fimages%2Fa.png", nil))

		assert.Equal(200, w.Code)
		assert.Equal("binary-image-data", w.Body.String())
	})

	t.Run("not available", func(t *testing.T) {
		assert := require.New(t)
		s, _, mt := newServer(t)
		mt.RegisterResponder("GET", "https://wiki.example/images/a.png",
			httpmock.NewStringResponder(404, "nope"))

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET",
			"/assets?url=https%3A%2F%2Fwiki.example%2Fimages%2Fa.png", nil))

		assert.Equal(http.StatusNotFound, w.Code)
	})

	t.Run("missing parameter", func(t *testing.T) {
		assert := require.New(t)
		s, _, _ := newServer(t)

		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET", "/assets", nil))
		assert.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestServiceInfo(t *testing.T) {
	s, _, _ := newServer(t)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/info", nil))

	require.Equal(t, 200, w.Code)
	jsonassert.New(t).Assertf(w.Body.String(), `{
		"name": "wikiread",
		"version": "<<PRESENCE>>",
		"wiki": "https://wiki.example"
	}`)
}

func TestSavedRoutes(t *testing.T) {
	assert := require.New(t)

	store, err := saved.Open(filepath.Join(t.TempDir(), "saved.db"))
	assert.NoError(err)
	t.Cleanup(func() {
		assert.NoError(store.Close())
	})

	s, _, mt := newServer(t, server.WithStore(store))
	registerParse(t, mt, "<p>article text</p>")

	// Save page 42.
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("POST", "/api/saved/42", nil))
	assert.Equal(http.StatusCreated, w.Code)
	jsonassert.New(t).Assertf(w.Body.String(),
		`{"page_id": 42, "title": "Dragon dagger", "revision": 1234567}`)

	// It shows up in the list.
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/saved", nil))
	assert.Equal(200, w.Code)
	jsonassert.New(t).Assertf(w.Body.String(),
		`[{"page_id": 42, "title": "Dragon dagger", "revision": 1234567}]`)

	// Reading it goes through storage, not the network.
	calls := mt.GetTotalCallCount()
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/read/42", nil))
	assert.Equal(200, w.Code)
	assert.Equal(calls, mt.GetTotalCallCount())

	// Reading recorded a history entry.
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/history", nil))
	assert.Equal(200, w.Code)
	jsonassert.New(t).Assertf(w.Body.String(),
		`[{"page_id": 42, "title": "Dragon dagger", "seen": "<<PRESENCE>>"}]`)

	// Delete it.
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/saved/42", nil))
	assert.Equal(http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/saved/42", nil))
	assert.Equal(http.StatusNotFound, w.Code)
}
