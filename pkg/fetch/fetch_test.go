// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package fetch_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"codeberg.org/wikiread/wikiread/pkg/assetcache"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

func newMockClient() (*http.Client, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	return &http.Client{Transport: mt}, mt
}

func TestFetch(t *testing.T) {
	t.Run("stores on success", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("GET", "https://wiki.example/images/a.png",
			httpmock.NewBytesResponder(200, []byte("png-bytes")))

		cache := assetcache.NewMemStore(0)
		d := fetch.New(client, cache)

		outcome := d.Fetch(context.Background(), "https://wiki.example/images/a.png")
		assert.Equal(fetch.OutcomeStored, outcome)

		data, ok := cache.Get("https://wiki.example/images/a.png")
		assert.True(ok)
		assert.Equal([]byte("png-bytes"), data)
	})

	t.Run("cache short-circuits the network", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()

		cache := assetcache.NewMemStore(0)
		cache.Set("https://wiki.example/images/a.png", []byte("cached"))
		d := fetch.New(client, cache)

		outcome := d.Fetch(context.Background(), "https://wiki.example/images/a.png")
		assert.Equal(fetch.OutcomeCached, outcome)
		assert.Equal(0, mt.GetTotalCallCount())
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("GET", "https://wiki.example/images/gone.png",
			httpmock.NewStringResponder(404, "not here"))

		cache := assetcache.NewMemStore(0)
		d := fetch.New(client, cache)

		outcome := d.Fetch(context.Background(), "https://wiki.example/images/gone.png")
		assert.Equal(fetch.OutcomeSkipped, outcome)

		_, ok := cache.Get("https://wiki.example/images/gone.png")
		assert.False(ok)
	})

	t.Run("transport error is swallowed", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("GET", "https://wiki.example/images/err.png",
			httpmock.NewErrorResponder(context.DeadlineExceeded))

		d := fetch.New(client, assetcache.NewMemStore(0))
		outcome := d.Fetch(context.Background(), "https://wiki.example/images/err.png")
		assert.Equal(fetch.OutcomeSkipped, outcome)
	})

	t.Run("bounded concurrent burst", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("GET", `=~^https://wiki\.example/images/`,
			httpmock.NewBytesResponder(200, []byte("x")))

		cache := assetcache.NewMemStore(0)
		d := fetch.New(client, cache, fetch.WithConcurrency(2))

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.Fetch(context.Background(), "https://wiki.example/images/"+string(rune('a'+i))+".png")
			}()
		}
		wg.Wait()

		assert.Equal(20, cache.Len())
	})
}

func TestFetchProgress(t *testing.T) {
	t.Run("reports chunk sizes", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		body := make([]byte, 20000)
		mt.RegisterResponder("GET", "https://wiki.example/images/big.png",
			httpmock.NewBytesResponder(200, body))

		cache := assetcache.NewMemStore(0)
		d := fetch.New(client, cache)

		read := 0
		outcome := d.FetchProgress(context.Background(), "https://wiki.example/images/big.png", func(n int) {
			assert.Positive(n)
			read += n
		})
		assert.Equal(fetch.OutcomeStored, outcome)
		assert.Equal(len(body), read)

		data, ok := cache.Get("https://wiki.example/images/big.png")
		assert.True(ok)
		assert.Len(data, len(body))
	})

	t.Run("cache hit skips progress", func(t *testing.T) {
		assert := require.New(t)
		client, _ := newMockClient()
		cache := assetcache.NewMemStore(0)
		cache.Set("https://wiki.example/images/a.png", []byte("cached"))
		d := fetch.New(client, cache)

		called := false
		outcome := d.FetchProgress(context.Background(), "https://wiki.example/images/a.png", func(int) {
			called = true
		})
		assert.Equal(fetch.OutcomeCached, outcome)
		assert.False(called)
	})
}

func TestSize(t *testing.T) {
	t.Run("content length", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("HEAD", "https://wiki.example/images/a.png",
			func(*http.Request) (*http.Response, error) {
				rsp := httpmock.NewStringResponse(200, "")
				rsp.ContentLength = 512
				return rsp, nil
			})

		d := fetch.New(client, assetcache.NewMemStore(0))
		assert.Equal(int64(512), d.Size(context.Background(), "https://wiki.example/images/a.png"))
	})

	t.Run("failures count as zero", func(t *testing.T) {
		assert := require.New(t)
		client, mt := newMockClient()
		mt.RegisterResponder("HEAD", "https://wiki.example/images/a.png",
			httpmock.NewStringResponder(500, ""))

		d := fetch.New(client, assetcache.NewMemStore(0))
		assert.Equal(int64(0), d.Size(context.Background(), "https://wiki.example/images/a.png"))
	})

	t.Run("cached entries count as zero", func(t *testing.T) {
		assert := require.New(t)
		client, _ := newMockClient()
		cache := assetcache.NewMemStore(0)
		cache.Set("https://wiki.example/images/a.png", []byte("cached"))

		d := fetch.New(client, cache)
		assert.Equal(int64(0), d.Size(context.Background(), "https://wiki.example/images/a.png"))
	})
}
